// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Backend BackendConfig `mapstructure:"backend"`
	Company CompanyConfig `mapstructure:"company"`
	Query   QueryConfig   `mapstructure:"query"`
	Storage StorageConfig `mapstructure:"storage"`
	Swipe   SwipeConfig   `mapstructure:"swipe"`
	Ranking RankingConfig `mapstructure:"ranking"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points at the recommendation backend.
type BackendConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIPrefix         string `mapstructure:"api_prefix"`
	Timeout           int    `mapstructure:"timeout"` // milliseconds
	ValidateResponses bool   `mapstructure:"validate_responses"`
}

// APIBase returns the base URL joined with the API prefix.
func (b BackendConfig) APIBase() string {
	return strings.TrimRight(b.BaseURL, "/") + "/" + strings.Trim(b.APIPrefix, "/")
}

type CompanyConfig struct {
	DefaultName string `mapstructure:"default_name"`
}

// QueryConfig drives the server-state cache.
type QueryConfig struct {
	StaleTime  int `mapstructure:"stale_time"`  // milliseconds
	Retry      int `mapstructure:"retry"`       // retries after the first attempt
	RetryDelay int `mapstructure:"retry_delay"` // milliseconds, doubled per attempt
	MaxDelay   int `mapstructure:"max_delay"`   // milliseconds
}

type StorageConfig struct {
	Driver    string      `mapstructure:"driver"` // "file" or "redis"
	Dir       string      `mapstructure:"dir"`
	Namespace string      `mapstructure:"namespace"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// Key returns the namespaced storage key for a store.
func (s StorageConfig) Key(store string) string {
	return fmt.Sprintf("%s-%s", s.Namespace, store)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SwipeConfig holds the gesture decision thresholds, in display units.
type SwipeConfig struct {
	CommitThreshold float64 `mapstructure:"commit_threshold"`
	RevealThreshold float64 `mapstructure:"reveal_threshold"`
	ExitDistance    float64 `mapstructure:"exit_distance"`
	ExitDelay       int     `mapstructure:"exit_delay"` // milliseconds
}

type RankingConfig struct {
	RelevantBoost      float64 `mapstructure:"relevant_boost"`
	NotRelevantPenalty float64 `mapstructure:"not_relevant_penalty"`
}

// ServerConfig configures the same-origin proxy.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
