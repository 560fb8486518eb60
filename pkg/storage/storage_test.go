package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	size, err := store.Put("documents/bookings/test.pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	assert.True(t, store.Exists("documents/bookings/test.pdf"))

	reader, err := store.Open("documents/bookings/test.pdf")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	assert.Equal(t, "http://localhost:8080/storage/documents/bookings/test.pdf", store.URL("documents/bookings/test.pdf"))

	require.NoError(t, store.Delete("documents/bookings/test.pdf"))
	assert.False(t, store.Exists("documents/bookings/test.pdf"))
}

func TestLocalStorageDeleteMissingFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	// Deleting a file that is already gone is not an error
	assert.NoError(t, store.Delete("documents/missing.pdf"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	_, err = store.Put("../outside.pdf", strings.NewReader("x"))
	assert.Error(t, err)
}
