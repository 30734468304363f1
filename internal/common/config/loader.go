// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (plus config.<env>.yaml) and the environment.
// Missing config files are fine; every field has a default.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".tenderec"))
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("TENDEREC")
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up to the module root.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tenderec")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.api_prefix", "/api/v1")
	v.SetDefault("backend.timeout", 30000)
	v.SetDefault("backend.validate_responses", true)

	v.SetDefault("company.default_name", "greenworks")

	v.SetDefault("query.stale_time", 5*60*1000)
	v.SetDefault("query.retry", 2)
	v.SetDefault("query.retry_delay", 1000)
	v.SetDefault("query.max_delay", 30000)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.namespace", "tenderec")
	v.SetDefault("storage.redis.address", "localhost:6379")

	v.SetDefault("swipe.commit_threshold", 100)
	v.SetDefault("swipe.reveal_threshold", 30)
	v.SetDefault("swipe.exit_distance", 600)
	v.SetDefault("swipe.exit_delay", 300)

	v.SetDefault("ranking.relevant_boost", 0.1)
	v.SetDefault("ranking.not_relevant_penalty", -0.3)

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideFromEnv applies the unprefixed variables the browser build used.
func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("BACKEND_URL"); val != "" {
		cfg.Backend.BaseURL = val
	}
	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Storage.Redis.Address = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Storage.Redis.Password = val
	}
}

// applyDefaults fills values that depend on the runtime environment.
func applyDefaults(cfg *Config) {
	if cfg.Storage.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Storage.Dir = filepath.Join(home, ".tenderec")
		} else {
			cfg.Storage.Dir = ".tenderec"
		}
	}
	if strings.HasPrefix(cfg.Storage.Dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Storage.Dir = filepath.Join(home, cfg.Storage.Dir[2:])
		}
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if !strings.HasPrefix(cfg.Backend.BaseURL, "http://") && !strings.HasPrefix(cfg.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", cfg.Backend.BaseURL)
	}

	switch cfg.Storage.Driver {
	case "file":
	case "redis":
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver must be file or redis, got %q", cfg.Storage.Driver)
	}

	if cfg.Query.Retry < 0 {
		return fmt.Errorf("query.retry must not be negative")
	}
	if cfg.Swipe.CommitThreshold <= 0 {
		return fmt.Errorf("swipe.commit_threshold must be positive")
	}
	if cfg.Swipe.ExitDelay < 0 {
		return fmt.Errorf("swipe.exit_delay must not be negative")
	}

	return nil
}
