// Package storage persists uploaded images. Two drivers are available:
// "local" writes under a directory served by the HTTP server and "s3" writes
// to any S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/freshproduce/marketplace/internal/core/ports"
)

// Config selects and configures a driver.
type Config struct {
	Driver string

	// local
	Dir     string
	BaseURL string

	S3 S3Config
}

// New returns the FileStore for cfg.Driver.
func New(ctx context.Context, cfg Config) (ports.FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.Dir, cfg.BaseURL)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// cleanKey normalises key into a relative slash path and rejects attempts to
// escape the storage root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("storage: empty key")
	}
	return k, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
