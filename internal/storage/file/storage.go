package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Storage provides an S3-compatible storage backend using MinIO.
// Queued renders download their source from it and upload the result back.
type Storage struct {
	client     *minio.Client
	bucketName string
}

// NewStorage creates a new Storage instance connected to the specified MinIO server.
// If the bucket does not exist, it will be created automatically.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Download writes the object to path, creating parent directories.
func (s *Storage) Download(ctx context.Context, object, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}

	err := s.client.FGetObject(ctx, s.bucketName, object, path, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, object)
		}
		return fmt.Errorf("failed to download %s: %w", object, err)
	}

	return nil
}

// Upload stores the file at path under object. The content type is sniffed
// from the file itself.
func (s *Storage) Upload(ctx context.Context, path, object string) error {
	_, err := s.client.FPutObject(ctx, s.bucketName, object, path, minio.PutObjectOptions{
		ContentType: ContentType(path),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", object, err)
	}

	return nil
}

// Delete removes the specified file from the bucket.
func (s *Storage) Delete(ctx context.Context, object string) error {
	return s.client.RemoveObject(ctx, s.bucketName, object, minio.RemoveObjectOptions{})
}

// ContentType sniffs the MIME type of the file at path, falling back to
// application/octet-stream.
func ContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
