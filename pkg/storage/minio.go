package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
)

// minioAPI is the subset of *minio.Client used here, kept narrow for tests.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// ObjectStorage stores blobs in an S3 compatible bucket.
type ObjectStorage struct {
	api     minioAPI
	bucket  string
	baseURL string
}

var _ BlobStore = (*ObjectStorage)(nil)

// NewObjectStorage connects to the configured endpoint and ensures the bucket exists.
func NewObjectStorage(ctx context.Context, cfg config.BlobConfig) (*ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	baseURL := cfg.PublicURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return newObjectStorage(ctx, client, cfg.Bucket, baseURL)
}

func newObjectStorage(ctx context.Context, api minioAPI, bucket, baseURL string) (*ObjectStorage, error) {
	s := &ObjectStorage{api: api, bucket: bucket, baseURL: baseURL}
	if err := s.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	return s, nil
}

func (s *ObjectStorage) ensureBucketExists(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload stores the object and returns its public URL.
func (s *ObjectStorage) Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	_, err := s.api.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Delete removes the object referenced by fileURL. Empty URLs and missing objects are not errors.
func (s *ObjectStorage) Delete(ctx context.Context, fileURL string) error {
	name := BlobName(fileURL)
	if name == "" {
		return nil
	}
	err := s.api.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
