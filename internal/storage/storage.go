// Package storage reads and writes the curated workbook in S3-compatible
// object storage, for deployments where the spreadsheet does not live on the
// web server's disk.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resourcemap/internal/config"
	"resourcemap/internal/logger"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service is a client for one bucket of S3-compatible storage.
type Service struct {
	client *minio.Client
	bucket string
}

// New connects to the configured MinIO endpoint.
func New(cfg config.StorageConfig) (*Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("storage: endpoint and bucket must be configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	logger.Get("storage").Infof("connected to object storage at %s", cfg.Endpoint)
	return &Service{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: check bucket: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

// FetchFile downloads the named object to dest.
func (s *Service) FetchFile(ctx context.Context, object, dest string) error {
	if err := s.client.FGetObject(ctx, s.bucket, object, dest, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("storage: fetch %s: %w", object, err)
	}
	return nil
}

// UploadFile stores the file at path under its base name.
func (s *Service) UploadFile(ctx context.Context, path string) error {
	object := filepath.Base(path)
	_, err := s.client.FPutObject(ctx, s.bucket, object, path, minio.PutObjectOptions{
		ContentType: workbookContentType,
	})
	if err != nil {
		return fmt.Errorf("storage: upload %s: %w", object, err)
	}
	logger.Get("storage").Infof("uploaded %s to bucket %s", object, s.bucket)
	return nil
}
