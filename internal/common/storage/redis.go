// internal/common/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tenderec/internal/common/config"
	"tenderec/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores payloads as plain string values without expiry.
type RedisBackend struct {
	Client *redis.Client
	logger logger.Logger
}

// NewRedis creates a Redis backend and checks the connection.
func NewRedis(cfg config.RedisConfig, log logger.Logger) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	b := NewRedisWithClient(rdb, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Ping(ctx); err != nil {
		rdb.Close()
		return nil, err
	}
	return b, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, log logger.Logger) *RedisBackend {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &RedisBackend{Client: client, logger: log.Named("storage")}
}

// Ping tests the Redis connection
func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (b *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := b.Client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	b.logger.Debug("Stored payload", map[string]interface{}{
		"key":   key,
		"bytes": len(data),
	})
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection
func (b *RedisBackend) Close() error {
	if b.Client != nil {
		return b.Client.Close()
	}
	return nil
}
