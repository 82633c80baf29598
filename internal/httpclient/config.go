package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings of one client. Environment variables are read
// under the module prefix, e.g. BILLING_HTTP_CLIENT_CONNECT_TIMEOUT.
type Config struct {
	ConnectTimeout          time.Duration `split_words:"true"`
	RequestTimeout          time.Duration `split_words:"true"`
	IdleTimeout             time.Duration `split_words:"true"`
	KeepAliveInterval       time.Duration `split_words:"true"`
	MaxConnectionsPerServer int           `split_words:"true"`
	MaxIdleConnections      int           `split_words:"true"`

	MaxRetries   int           `split_words:"true"`
	RetryWaitMin time.Duration `split_words:"true"`
	RetryWaitMax time.Duration `split_words:"true"`

	RequestsPerSecond float64 `split_words:"true"`

	BreakerFailures uint32        `split_words:"true"`
	BreakerTimeout  time.Duration `split_words:"true"`

	FollowRedirects bool   `split_words:"true"`
	MaxRedirects    int    `split_words:"true"`
	UserAgent       string `split_words:"true"`
	ProxyURL        string `split_words:"true"`

	// PoolSize bounds in-flight requests when the client has a private I/O
	// pool. Clients on the shared pool ignore it.
	PoolSize int `split_words:"true"`
}

// ConfigDefaults overrides configuration defaults before environment values
// are applied.
type ConfigDefaults func(cfg *Config)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:          5 * time.Second,
		RequestTimeout:          30 * time.Second,
		IdleTimeout:             time.Minute,
		KeepAliveInterval:       30 * time.Second,
		MaxConnectionsPerServer: 20,
		MaxIdleConnections:      100,
		MaxRetries:              3,
		RetryWaitMin:            time.Second,
		RetryWaitMax:            30 * time.Second,
		BreakerFailures:         10,
		BreakerTimeout:          30 * time.Second,
		FollowRedirects:         true,
		MaxRedirects:            10,
		UserAgent:               "httpbinder/1.0",
		PoolSize:                200,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.ConnectTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("connect timeout must be positive, got %s", c.ConnectTimeout))
	}
	if c.RequestTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.IdleTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("idle timeout must not be negative, got %s", c.IdleTimeout))
	}
	if c.MaxConnectionsPerServer < 0 {
		result = multierror.Append(result, fmt.Errorf("max connections per server must not be negative, got %d", c.MaxConnectionsPerServer))
	}
	if c.MaxIdleConnections < 0 {
		result = multierror.Append(result, fmt.Errorf("max idle connections must not be negative, got %d", c.MaxIdleConnections))
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		result = multierror.Append(result, fmt.Errorf("max retries must be between 0 and 10, got %d", c.MaxRetries))
	}
	if c.MaxRetries > 0 && (c.RetryWaitMin <= 0 || c.RetryWaitMax <= 0) {
		result = multierror.Append(result, fmt.Errorf("retry waits must be positive when retries are enabled"))
	}
	if c.RetryWaitMin > c.RetryWaitMax {
		result = multierror.Append(result, fmt.Errorf("retry wait min %s exceeds max %s", c.RetryWaitMin, c.RetryWaitMax))
	}
	if c.RequestsPerSecond < 0 {
		result = multierror.Append(result, fmt.Errorf("requests per second must not be negative, got %g", c.RequestsPerSecond))
	}
	if c.BreakerFailures == 0 {
		result = multierror.Append(result, fmt.Errorf("breaker failures must be positive"))
	}
	if c.BreakerTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("breaker timeout must be positive, got %s", c.BreakerTimeout))
	}
	if c.MaxRedirects < 0 {
		result = multierror.Append(result, fmt.Errorf("max redirects must not be negative, got %d", c.MaxRedirects))
	}
	if c.PoolSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("pool size must be positive, got %d", c.PoolSize))
	}
	if c.ProxyURL != "" {
		if _, err := c.proxy(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func (c Config) proxy() (*url.URL, error) {
	u, err := url.Parse(c.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u, nil
	default:
		return nil, fmt.Errorf("proxy URL must use http, https or socks5 scheme, got %q", u.Scheme)
	}
}

// LoadConfig starts from DefaultConfig, applies defaults in order, then
// overlays environment variables under prefix and validates the result.
func LoadConfig(prefix string, defaults ...ConfigDefaults) (Config, error) {
	cfg := DefaultConfig()
	for _, apply := range defaults {
		apply(&cfg)
	}

	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load %s config: %w", prefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid %s config: %w", prefix, err)
	}
	return cfg, nil
}
