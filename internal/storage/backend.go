package storage

import (
	"context"
	"fmt"

	"github.com/frahmantamala/mastersight/internal"
)

// NewBackend builds the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg internal.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalBackend(cfg.LocalPath), nil
	case "minio":
		return NewMinioBackend(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
