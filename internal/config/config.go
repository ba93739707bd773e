package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Index    IndexConfig
	Fetch    FetchConfig
	Cleanup  CleanupConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"DB_DSN" envDefault:"data/maintenance-windows.db"`
}

// IndexConfig holds entity index API configuration.
type IndexConfig struct {
	URL        string        `env:"INDEX_URL"`
	APIToken   string        `env:"INDEX_API_TOKEN"`
	FileShim   string        `env:"INDEX_FILE_SHIM"` // fixture file, disables the real API
	Timeout    time.Duration `env:"INDEX_TIMEOUT" envDefault:"30s"`
	RetryCount int           `env:"INDEX_RETRY_COUNT" envDefault:"2"`
}

// FetchConfig tunes entity paging.
type FetchConfig struct {
	PageSize    int    `env:"FETCH_PAGE_SIZE" envDefault:"500"`
	From        string `env:"FETCH_FROM" envDefault:"now-30d"`
	Concurrency int    `env:"FETCH_CONCURRENCY" envDefault:"8"`
}

// CleanupConfig schedules the expired auto-tag cleanup.
type CleanupConfig struct {
	Enabled  bool   `env:"CLEANUP_ENABLED" envDefault:"true"`
	Schedule string `env:"CLEANUP_SCHEDULE" envDefault:"@every 1h"`
}

// AuthConfig holds API authentication configuration.
type AuthConfig struct {
	BootstrapAPIKey string `env:"BOOTSTRAP_API_KEY"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"auto"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		name string
		v    any
	}{
		{"server", &cfg.Server},
		{"database", &cfg.Database},
		{"index", &cfg.Index},
		{"fetch", &cfg.Fetch},
		{"cleanup", &cfg.Cleanup},
		{"auth", &cfg.Auth},
		{"log", &cfg.Log},
	}
	for _, s := range sections {
		if err := env.Parse(s.v); err != nil {
			return nil, fmt.Errorf("parsing %s config: %w", s.name, err)
		}
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// With a file shim the index credentials are not required.
	if c.Index.FileShim == "" {
		if c.Index.URL == "" {
			return fmt.Errorf("INDEX_URL is required (or set INDEX_FILE_SHIM for testing)")
		}
		if c.Index.APIToken == "" {
			return fmt.Errorf("INDEX_API_TOKEN is required (or set INDEX_FILE_SHIM for testing)")
		}
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.Database.Driver)
	}

	if c.Fetch.PageSize < 1 || c.Fetch.PageSize > 500 {
		return fmt.Errorf("FETCH_PAGE_SIZE must be between 1 and 500")
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1")
	}

	if c.Cleanup.Enabled {
		if _, err := cron.ParseStandard(c.Cleanup.Schedule); err != nil {
			return fmt.Errorf("CLEANUP_SCHEDULE is invalid: %w", err)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "auto", "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be auto, json or console")
	}

	return nil
}

// UseFileShim returns true if the file shim should be used instead of the real API.
func (c *Config) UseFileShim() bool {
	return c.Index.FileShim != ""
}
