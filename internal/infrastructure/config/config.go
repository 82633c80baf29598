// Package config loads process-level settings for the httpbinder binary.
//
// Per-client settings live with the client module and are read under the
// client's own prefix; this package only covers what is shared.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Admin    AdminConfig
	Logging  LogConfig
	IOPool   IOPoolConfig
	Bindings BindingsConfig
}

// AdminConfig holds admin HTTP server configuration.
type AdminConfig struct {
	Host      string `envconfig:"ADMIN_HOST" default:"127.0.0.1"`
	Port      string `envconfig:"ADMIN_PORT" default:"8081"`
	ReuseAddr bool   `envconfig:"ADMIN_REUSE_ADDR" default:"true"`
	ReusePort bool   `envconfig:"ADMIN_REUSE_PORT" default:"false"`

	CORSOrigins     []string      `envconfig:"ADMIN_CORS_ORIGINS"`
	RateLimitRPS    int           `envconfig:"ADMIN_RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `envconfig:"ADMIN_RATE_LIMIT_BURST" default:"100"`
	ShutdownTimeout time.Duration `envconfig:"ADMIN_SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// IOPoolConfig sizes the I/O pool shared by clients without a private one.
type IOPoolConfig struct {
	SharedSize int `envconfig:"SHARED_IO_POOL_SIZE" default:"200"`
}

// BindingsConfig points at the declarative client bindings file.
type BindingsConfig struct {
	File string `envconfig:"BINDINGS_FILE"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Admin: AdminConfig{
			Host:            "127.0.0.1",
			Port:            "8081",
			ReuseAddr:       true,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
		IOPool: IOPoolConfig{
			SharedSize: 200,
		},
	}
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	if c.IOPool.SharedSize <= 0 {
		return fmt.Errorf("SHARED_IO_POOL_SIZE must be positive, got %d", c.IOPool.SharedSize)
	}
	if c.Admin.Port == "" {
		return fmt.Errorf("ADMIN_PORT must not be empty")
	}
	if c.Admin.RateLimitRPS < 0 || c.Admin.RateLimitBurst < 0 {
		return fmt.Errorf("admin rate limit must not be negative")
	}
	if c.Admin.RateLimitRPS > 0 && c.Admin.RateLimitBurst == 0 {
		return fmt.Errorf("ADMIN_RATE_LIMIT_BURST must be positive when ADMIN_RATE_LIMIT_RPS is set")
	}
	if c.Admin.ShutdownTimeout <= 0 {
		return fmt.Errorf("ADMIN_SHUTDOWN_TIMEOUT must be positive, got %s", c.Admin.ShutdownTimeout)
	}
	return nil
}

// AdminAddr returns host:port for the admin listener.
func (c *Config) AdminAddr() string {
	return c.Admin.Host + ":" + c.Admin.Port
}
