// internal/common/storage/storage.go
package storage

import (
	"context"
	"fmt"

	"tenderec/internal/common/config"
	"tenderec/internal/common/logger"

	"github.com/spf13/afero"
)

// Backend is durable byte storage addressed by key. Load returns (nil, nil)
// when nothing has been stored under key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New opens the backend selected by cfg.Driver.
func New(cfg config.StorageConfig, log logger.Logger) (Backend, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileBackend(afero.NewOsFs(), cfg.Dir, log)
	case "redis":
		return NewRedis(cfg.Redis, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
