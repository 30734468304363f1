// internal/common/storage/file.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tenderec/internal/common/logger"

	"github.com/spf13/afero"
)

// FileBackend keeps one JSON file per key under a directory.
type FileBackend struct {
	fs     afero.Fs
	dir    string
	logger logger.Logger
}

func NewFileBackend(fs afero.Fs, dir string, log logger.Logger) (*FileBackend, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &FileBackend{fs: fs, dir: dir, logger: log.Named("storage")}, nil
}

func (b *FileBackend) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(b.dir, safe+".json")
}

func (b *FileBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Save writes through a temp file and rename so a crash never leaves a torn payload.
func (b *FileBackend) Save(ctx context.Context, key string, data []byte) error {
	target := b.path(key)
	tmp := target + ".tmp"
	if err := afero.WriteFile(b.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := b.fs.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	b.logger.Debug("Stored payload", map[string]interface{}{
		"key":   key,
		"bytes": len(data),
	})
	return nil
}

func (b *FileBackend) Delete(ctx context.Context, key string) error {
	if err := b.fs.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
