// Package blob keeps uploaded files behind domain.BlobStore.
//
// Three drivers exist: fs (default), s3 for S3-compatible object stores and
// memory for tests.
package blob

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

const (
	DriverFilesystem = "fs"
	DriverS3         = "s3"
	DriverMemory     = "memory"
)

type Config struct {
	Driver string
	Root   string
	S3     S3Config
}

// Open builds the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (domain.BlobStore, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// sanitizeKey rejects keys that could escape the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", domain.Validation("empty blob key")
	}
	if strings.Contains(key, "..") {
		return "", domain.Validation("invalid blob key %q", key)
	}
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, `\`) {
		return "", domain.Validation("invalid absolute blob key %q", key)
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func notFound(key string) error {
	return domain.NotFound("blob %s not found", key)
}
