// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// AccessCode is the shared secret exchanged for a bearer token.
	AccessCode string `koanf:"access_code"`

	// TokenSecret signs bearer tokens.
	TokenSecret string `koanf:"token_secret"`

	// TokenTTL is the lifetime of an issued token.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// StorageBackend selects where snapshots live: file or sqlite.
	StorageBackend string `koanf:"storage_backend"`

	// DataFile is the JSON snapshot path for the file backend.
	DataFile string `koanf:"data_file"`

	// SQLitePath is the database path for the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// MutationQueueSize bounds pending ledger writes.
	MutationQueueSize int `koanf:"mutation_queue_size"`

	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string `koanf:"cors_origin"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MetricsInterval is how often runtime and queue gauges are sampled.
	MetricsInterval time.Duration `koanf:"metrics_interval"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":3000",
		AccessCode:        "1911",
		TokenSecret:       "festival-secret-2025",
		TokenTTL:          24 * time.Hour,
		StorageBackend:    BackendFile,
		DataFile:          "./data.json",
		SQLitePath:        "./podium.db",
		MutationQueueSize: 1024,
		CORSOrigin:        "*",
		MaxBodyBytes:      1 << 20,
		MetricsInterval:   10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.AccessCode == "":
		return fmt.Errorf("%w: access_code must not be empty", ErrInvalidConfig)
	case c.TokenSecret == "":
		return fmt.Errorf("%w: token_secret must not be empty", ErrInvalidConfig)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	case c.MutationQueueSize < 1:
		return fmt.Errorf("%w: mutation_queue_size must be positive", ErrInvalidConfig)
	case c.MaxBodyBytes < 1:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.MetricsInterval <= 0:
		return fmt.Errorf("%w: metrics_interval must be positive", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.DataFile == "" {
			return fmt.Errorf("%w: data_file must not be empty", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage_backend %q", ErrInvalidConfig, c.StorageBackend)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
