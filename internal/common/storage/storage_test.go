// internal/common/storage/storage_test.go
package storage

import (
	"context"
	"errors"
	"testing"

	"tenderec/internal/common/config"
	"tenderec/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createFileBackend(t *testing.T) (*FileBackend, afero.Fs) {
	fs := afero.NewMemMapFs()
	b, err := NewFileBackend(fs, "/data/tenderec", logger.NewTestLogger(t))
	require.NoError(t, err)
	return b, fs
}

func createRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWithClient(client, logger.NewTestLogger(t)), mr
}

// ==========================
// Backend Contract Tests
// ==========================

func TestBackends_RoundTrip(t *testing.T) {
	fileBackend, _ := createFileBackend(t)
	redisBackend, _ := createRedisBackend(t)

	backends := map[string]Backend{
		"file":  fileBackend,
		"redis": redisBackend,
	}

	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			data, err := b.Load(ctx, "tenderec-feedback")
			require.NoError(t, err)
			assert.Nil(t, data, "missing key loads as nil")

			require.NoError(t, b.Save(ctx, "tenderec-feedback", []byte(`{"version":0}`)))
			data, err = b.Load(ctx, "tenderec-feedback")
			require.NoError(t, err)
			assert.JSONEq(t, `{"version":0}`, string(data))

			require.NoError(t, b.Save(ctx, "tenderec-feedback", []byte(`{"version":1}`)))
			data, err = b.Load(ctx, "tenderec-feedback")
			require.NoError(t, err)
			assert.JSONEq(t, `{"version":1}`, string(data))

			require.NoError(t, b.Delete(ctx, "tenderec-feedback"))
			data, err = b.Load(ctx, "tenderec-feedback")
			require.NoError(t, err)
			assert.Nil(t, data)

			assert.NoError(t, b.Delete(ctx, "never-written"))
		})
	}
}

func TestFileBackend_LeavesNoTempFile(t *testing.T) {
	b, fs := createFileBackend(t)
	require.NoError(t, b.Save(context.Background(), "tenderec-swipes", []byte(`{}`)))

	exists, err := afero.Exists(fs, "/data/tenderec/tenderec-swipes.json")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, "/data/tenderec/tenderec-swipes.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileBackend_SanitizesKeys(t *testing.T) {
	b, _ := createFileBackend(t)
	assert.Equal(t, "/data/tenderec/__etc_passwd.json", b.path("../etc/passwd"))
}

func TestRedisBackend_StoresWithoutExpiry(t *testing.T) {
	b, mr := createRedisBackend(t)
	require.NoError(t, b.Save(context.Background(), "tenderec-swipes", []byte(`{}`)))

	assert.True(t, mr.Exists("tenderec-swipes"))
	assert.Zero(t, mr.TTL("tenderec-swipes"))
}

// ==========================
// Failure Path Tests
// ==========================

func TestRedisBackend_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	b := NewRedisWithClient(client, logger.NewNoOpLogger())
	ctx := context.Background()

	mock.ExpectGet("tenderec-feedback").SetErr(errors.New("connection refused"))
	_, err := b.Load(ctx, "tenderec-feedback")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	mock.ExpectSet("tenderec-feedback", []byte(`{}`), 0).SetErr(errors.New("read only replica"))
	err = b.Save(ctx, "tenderec-feedback", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read only replica")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(config.StorageConfig{Driver: "sqlite"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

func TestNew_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := New(config.StorageConfig{
		Driver: "redis",
		Redis:  config.RedisConfig{Address: mr.Addr()},
	}, nil)
	require.NoError(t, err)
	defer b.Close()

	_, ok := b.(*RedisBackend)
	assert.True(t, ok)
}
