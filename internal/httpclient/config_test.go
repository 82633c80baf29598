package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.FollowRedirects)
	assert.Equal(t, 200, cfg.PoolSize)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero connect timeout", func(c *Config) { c.ConnectTimeout = 0 }, "connect timeout"},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }, "max retries"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max retries"},
		{"inverted retry waits", func(c *Config) { c.RetryWaitMin = time.Minute }, "retry wait min"},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, "requests per second"},
		{"zero breaker failures", func(c *Config) { c.BreakerFailures = 0 }, "breaker failures"},
		{"zero pool", func(c *Config) { c.PoolSize = 0 }, "pool size"},
		{"bad proxy scheme", func(c *Config) { c.ProxyURL = "ftp://proxy:21" }, "proxy URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConnectTimeout = 0
	cfg.PoolSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect timeout")
	assert.Contains(t, err.Error(), "pool size")
}

func TestLoadConfigOrder(t *testing.T) {
	t.Setenv("TEST_HTTP_CLIENT_MAX_RETRIES", "9")
	t.Setenv("TEST_HTTP_CLIENT_PROXY_URL", "http://proxy:3128")

	cfg, err := LoadConfig("TEST_HTTP_CLIENT",
		func(c *Config) { c.MaxRetries = 5; c.UserAgent = "first" },
		func(c *Config) { c.UserAgent = "second" },
	)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.MaxRetries)
	assert.Equal(t, "second", cfg.UserAgent)
	assert.Equal(t, "http://proxy:3128", cfg.ProxyURL)
}

func TestLoadConfigIgnoresUnprefixedVariables(t *testing.T) {
	t.Setenv("MAX_RETRIES", "1")

	cfg, err := LoadConfig("OTHER_HTTP_CLIENT")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("unparsable", func(t *testing.T) {
		t.Setenv("BAD_HTTP_CLIENT_CONNECT_TIMEOUT", "soon")
		_, err := LoadConfig("BAD_HTTP_CLIENT")
		assert.ErrorContains(t, err, "load BAD_HTTP_CLIENT config")
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("BAD_HTTP_CLIENT_POOL_SIZE", "0")
		_, err := LoadConfig("BAD_HTTP_CLIENT")
		assert.ErrorContains(t, err, "invalid BAD_HTTP_CLIENT config")
	})
}
