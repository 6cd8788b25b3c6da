package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalBackend writes objects below a directory on disk, the layout a CDN
// or static file server can serve directly.
type LocalBackend struct {
	Root string
}

func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{Root: root}
}

func (b *LocalBackend) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	dst := filepath.Join(b.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), dst)
}
