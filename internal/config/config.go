// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Metrics backends.
const (
	MetricsPrometheus = "prometheus"
	MetricsInMemory   = "inmemory"
	MetricsNone       = "none"
)

// Config errors.
var (
	ErrUnknownBackend     = errors.New("unknown storage backend")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres backend")
	ErrInvalidPoolSize    = errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	ErrUnknownMetrics     = errors.New("unknown metrics backend")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// User store
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns     int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	AutoMigrate    bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// Redis is optional; when set it backs the user cache and event stream.
	RedisURL      string        `env:"REDIS_URL"`
	UserCacheTTL  time.Duration `env:"USER_CACHE_TTL" envDefault:"1h"`
	EventsEnabled bool          `env:"EVENTS_ENABLED" envDefault:"true"`

	// Metrics: prometheus, inmemory or none
	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"prometheus"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Comma-separated list of allowed origins, e.g. "https://example.com,*.example.org"
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesPostgres reports whether the user store is backed by PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.StorageBackend == BackendPostgres
}

// UsesRedis reports whether the Redis user cache and event stream are on.
// They key on store-assigned ids, which only the postgres backend keeps
// across restarts, so the memory backend never uses them.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != "" && c.UsesPostgres()
}

// GetCORSAllowedOrigins returns the configured origins without blanks.
func (c *Config) GetCORSAllowedOrigins() []string {
	result := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, origin := range c.CORSAllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StorageBackend)
	}

	if c.DBMinConns > c.DBMaxConns {
		return ErrInvalidPoolSize
	}

	switch c.MetricsBackend {
	case MetricsPrometheus, MetricsInMemory, MetricsNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetrics, c.MetricsBackend)
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.MetricsBackend = strings.ToLower(strings.TrimSpace(cfg.MetricsBackend))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
