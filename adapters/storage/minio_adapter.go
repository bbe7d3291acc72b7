package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type minioAdapter struct {
	client *minio.Client
	bucket string
	log    logger.Logger
}

func NewMinIOAdapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.ResumeStorage, error) {
	if cfg.MinIO.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is not configured")
	}

	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKeyID, cfg.MinIO.SecretAccessKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	a := &minioAdapter{client: client, bucket: cfg.MinIO.ResumeBucket, log: log}
	if err := a.ensureBucketExists(ctx, cfg.MinIO.Location); err != nil {
		return nil, err
	}

	log.Info("MinIO resume storage initialized", zap.String("endpoint", cfg.MinIO.Endpoint), zap.String("bucket", a.bucket))
	return a, nil
}

func (a *minioAdapter) ensureBucketExists(ctx context.Context, location string) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	a.log.Info("Bucket created", zap.String("bucket", a.bucket))
	return nil
}

func (a *minioAdapter) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, path, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

func (a *minioAdapter) Download(ctx context.Context, path string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, a.mapError(path, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, a.mapError(path, err)
	}
	return buf.Bytes(), nil
}

func (a *minioAdapter) Delete(ctx context.Context, path string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (a *minioAdapter) mapError(path string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return apperror.NewNotFound("resume", path)
	}
	return fmt.Errorf("failed to download %s: %w", path, err)
}
