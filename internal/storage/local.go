package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

// LocalStorage writes blobs to a flat directory on disk. Keys are
// uuid-prefixed so original names never collide or escape the directory.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Upstreamf("create upload dir: %v", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(_ context.Context, data []byte, originalName, _ string) (string, error) {
	key := uuid.NewString() + "_" + sanitizeName(originalName)
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return "", apperrors.Upstreamf("write file: %v", err)
	}
	return key, nil
}

func (s *LocalStorage) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sanitizeName(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NotFoundf("stored file %s", key)
	}
	if err != nil {
		return nil, apperrors.Upstreamf("read file: %v", err)
	}
	return data, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, sanitizeName(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Upstreamf("delete file: %v", err)
	}
	return nil
}

// sanitizeName strips any path components from a client-supplied name.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "file"
	}
	return name
}
