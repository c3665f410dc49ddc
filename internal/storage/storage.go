package storage

import (
	"context"
	"log"

	"github.com/grcworks/requirement-gathering-backend/config"
)

// Storage persists attachment blobs under opaque keys. The database row
// owns the metadata; implementations only move bytes.
type Storage interface {
	Save(ctx context.Context, data []byte, originalName, contentType string) (key string, err error)
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// New selects the backend from STORAGE_BACKEND: "minio" or local disk.
func New(cfg *config.Config) (Storage, error) {
	if cfg.StorageBackend == "minio" {
		store, err := NewMinioStorage(cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Using MinIO storage (bucket %s)", cfg.MinioBucket)
		return store, nil
	}

	store, err := NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Using local storage at %s", cfg.UploadDir)
	return store, nil
}
