package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/grcworks/requirement-gathering-backend/config"
	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

// MinioStorage keeps attachment blobs in an object-store bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(cfg *config.Config) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, apperrors.Upstreamf("minio client: %v", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, apperrors.Upstreamf("minio bucket check: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperrors.Upstreamf("minio bucket create: %v", err)
		}
	}

	return &MinioStorage{client: client, bucket: cfg.MinioBucket}, nil
}

func (s *MinioStorage) Save(ctx context.Context, data []byte, originalName, contentType string) (string, error) {
	key := uuid.NewString() + "_" + sanitizeName(originalName)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", apperrors.Upstreamf("minio put: %v", err)
	}
	return key, nil
}

func (s *MinioStorage) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Upstreamf("minio get: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, apperrors.NotFoundf("stored file %s", key)
		}
		return nil, apperrors.Upstreamf("minio read: %v", err)
	}
	return data, nil
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.Upstreamf("minio delete: %v", err)
	}
	return nil
}
