package ports

import (
	"context"
	"io"
)

// FileStore persists uploaded files and returns the public URL they are served from.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}
