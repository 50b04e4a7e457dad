// Package storage keeps uploaded files (company logos) on the local
// filesystem or in S3, selected by STORAGE_TYPE.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/corequote/corequote/internal/config"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("storage: object not found")

// Storage interface for file storage operations. Keys are slash separated
// paths such as user-assets/7/logo.png.
type Storage interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key, contentType string, data io.Reader) error

	// Get opens the object stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case config.StorageTypeS3:
		return NewS3Storage(ctx, cfg)
	case config.StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// ReadAll fetches the whole object under key.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ContentType determines content type from the key extension.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + key)[1:]
	if k == "" || k == "." || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return k, nil
}
