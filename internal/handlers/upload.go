package handlers

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/pkg/storage"
)

const (
	maxUploadBytes = 10 << 20
	maxAttachments = 5
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// saveUpload stores one multipart file under dir with a random name and
// returns its storage path and public URL
func saveUpload(store storage.Storage, fh *multipart.FileHeader, dir string) (string, string, error) {
	if fh.Size > maxUploadBytes {
		return "", "", fmt.Errorf("file %s exceeds the 10MB limit", fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := fmt.Sprintf("%s/%s%s", strings.Trim(dir, "/"), uuid.New().String(), ext)
	if _, err := store.Put(path, src); err != nil {
		return "", "", fmt.Errorf("failed to store upload: %w", err)
	}

	return path, store.URL(path), nil
}

// saveImageUpload stores an image file, rejecting non-image extensions
func saveImageUpload(store storage.Storage, fh *multipart.FileHeader, dir string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return "", "", fmt.Errorf("file %s is not a supported image", fh.Filename)
	}

	return saveUpload(store, fh, dir)
}

// deleteStoredURL removes a previously uploaded file when its URL points into
// the given store. Foreign URLs are left alone.
func deleteStoredURL(store storage.Storage, url string) error {
	base := store.URL("")
	if base == "" || !strings.HasPrefix(url, base) {
		return nil
	}

	path := strings.TrimPrefix(url, base)
	return store.Delete(strings.TrimPrefix(path, "/"))
}
