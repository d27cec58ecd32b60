package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage persists blobs on disk under a base directory. It backs
// development setups where no object store is configured.
type LocalStorage struct {
	baseDir   string
	urlPrefix string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
// Stored files are addressed as urlPrefix + "/" + name.
func NewLocalStorage(baseDir, urlPrefix string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, urlPrefix: urlPrefix}, nil
}

// Dir returns the directory served as static content.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Upload copies from reader into the target file.
func (s *LocalStorage) Upload(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	p := s.resolve(name)
	file, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return s.urlPrefix + "/" + filepath.Base(p), nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(_ context.Context, fileURL string) error {
	name := BlobName(fileURL)
	if name == "" {
		return nil
	}
	if err := os.Remove(s.resolve(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}
