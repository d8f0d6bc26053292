package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores files on the local filesystem.
type Local struct {
	root    string
	baseURL string
}

// NewLocal returns a Local store rooted at dir. Files are reported under baseURL.
func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		return nil, errors.New("storage/local: directory is required")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage/local: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir: %w", err)
	}
	return &Local{root: root, baseURL: baseURL}, nil
}

// Root is the absolute directory files are written to.
func (l *Local) Root() string { return l.root }

func (l *Local) Save(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(l.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("storage/local: create %s: %w", k, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("storage/local: write %s: %w", k, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage/local: close %s: %w", k, err)
	}
	return joinURL(l.baseURL, k), nil
}

// Delete removes key. A missing file is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(k)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", k, err)
	}
	return nil
}
