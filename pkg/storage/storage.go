package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage stores and retrieves file blobs. Handlers depend on this
// interface so the backing disk can be swapped without touching call sites.
type Storage interface {
	// Put writes the content under the given relative path and returns its size
	Put(path string, content io.Reader) (int64, error)
	// Open returns a reader for the file at the given relative path
	Open(path string) (io.ReadCloser, error)
	// Delete removes the file at the given relative path
	Delete(path string) error
	// Exists reports whether a file is present at the given relative path
	Exists(path string) bool
	// URL returns the public URL for the given relative path
	URL(path string) string
}

// LocalStorage implements Storage on the local filesystem
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates a local disk storage rooted at the given directory
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// resolve joins the relative path with the root and rejects path traversal
func (s *LocalStorage) resolve(path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}

	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}
	return full, nil
}

// Put writes the content under the given relative path
func (s *LocalStorage) Put(path string, content io.Reader) (int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, content)
	if err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return size, nil
}

// Open returns a reader for the stored file
func (s *LocalStorage) Open(path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

// Delete removes the stored file
func (s *LocalStorage) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Exists reports whether the file is present
func (s *LocalStorage) Exists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}

	_, err = os.Stat(full)
	return err == nil
}

// URL returns the public URL for the stored file
func (s *LocalStorage) URL(path string) string {
	return s.baseURL + "/storage/" + strings.TrimLeft(path, "/")
}
