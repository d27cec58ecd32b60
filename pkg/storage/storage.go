package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
)

// BlobStore persists public blobs such as profile images.
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// BlobName extracts the object name from a URL produced by Upload.
func BlobName(fileURL string) string {
	if fileURL == "" {
		return ""
	}
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(strings.TrimRight(fileURL, "/"))
}
