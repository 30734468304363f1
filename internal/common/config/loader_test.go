package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	path := writeConfig(t, "app:\n  name: tenderec\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.Backend.APIBase())
	assert.Equal(t, "greenworks", cfg.Company.DefaultName)
	assert.Equal(t, 5*time.Minute, GetDuration(cfg.Query.StaleTime))
	assert.Equal(t, 2, cfg.Query.Retry)
	assert.Equal(t, 100.0, cfg.Swipe.CommitThreshold)
	assert.Equal(t, 30.0, cfg.Swipe.RevealThreshold)
	assert.Equal(t, 300*time.Millisecond, GetDuration(cfg.Swipe.ExitDelay))
	assert.InDelta(t, 0.1, cfg.Ranking.RelevantBoost, 1e-9)
	assert.InDelta(t, -0.3, cfg.Ranking.NotRelevantPenalty, 1e-9)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "tenderec-feedback", cfg.Storage.Key("feedback"))
	assert.NotEmpty(t, cfg.Storage.Dir)
}

func TestLoadFromFile_Overrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	path := writeConfig(t, `
backend:
  base_url: https://api.example.com/
  api_prefix: api/v1
company:
  default_name: acme
swipe:
  commit_threshold: 120
  exit_delay: 0
storage:
  driver: redis
  dir: /tmp/tenderec
  redis:
    address: redis:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api/v1", cfg.Backend.APIBase())
	assert.Equal(t, "acme", cfg.Company.DefaultName)
	assert.Equal(t, 120.0, cfg.Swipe.CommitThreshold)
	assert.Equal(t, 0, cfg.Swipe.ExitDelay)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Address)
	assert.Equal(t, "/tmp/tenderec", cfg.Storage.Dir)
}

func TestLoadFromFile_BackendURLEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend:9000")
	path := writeConfig(t, "backend:\n  base_url: http://ignored:1\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000/api/v1", cfg.Backend.APIBase())
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("TEST_TENDEREC_COMPANY", "placeholder-co")
	path := writeConfig(t, "company:\n  default_name: ${TEST_TENDEREC_COMPANY}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "placeholder-co", cfg.Company.DefaultName)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	tests := []struct {
		name string
		body string
	}{
		{name: "bad scheme", body: "backend:\n  base_url: ftp://x\n"},
		{name: "bad driver", body: "storage:\n  driver: s3\n"},
		{name: "zero threshold", body: "swipe:\n  commit_threshold: 0\n"},
		{name: "negative retry", body: "query:\n  retry: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
