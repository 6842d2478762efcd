package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/noah-isme/meatsafe-api/pkg/config"
)

// ErrNotExist is returned by Open when no blob is stored under the key.
var ErrNotExist = errors.New("blob does not exist")

// ErrInvalidKey is returned when a key would escape the store namespace.
var ErrInvalidKey = errors.New("invalid blob key")

// BlobStore persists opaque upload bytes under flat keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New picks the backend named by cfg.Driver.
func New(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case "", config.StorageDriverLocal:
		return NewLocalStorage(cfg.LocalDir)
	case config.StorageDriverMinio:
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}

func fullPath(basePath, key string) string {
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return key
	}
	return path.Join(basePath, key)
}
