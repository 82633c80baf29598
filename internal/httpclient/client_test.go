package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/httpbinder/internal/socket"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	if opts.Name == "" {
		opts.Name = "test"
	}
	if opts.Config == (Config{}) {
		opts.Config = testConfig()
	}
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Config: testConfig()})
	assert.ErrorContains(t, err, "name is empty")

	cfg := testConfig()
	cfg.PoolSize = 0
	_, err = New(Options{Name: "test", Config: cfg})
	assert.ErrorContains(t, err, "pool size")
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "httpbinder/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{})
	resp, err := c.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "pong", resp.String())
	assert.True(t, c.HasPrivatePool())
	assert.Equal(t, "client:test", c.Pool().Name())
	assert.Equal(t, 0, c.Pool().InFlight())
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, Options{})
	resp, err := c.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientReturnsLastResponseAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	c := newTestClient(t, Options{Config: cfg})

	resp, err := c.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientBreakerOpensOnServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 0
	cfg.BreakerFailures = 2
	cfg.BreakerTimeout = time.Hour
	c := newTestClient(t, Options{Config: cfg})

	for i := 0; i < 2; i++ {
		resp, err := c.Get(t.Context(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err := c.Get(t.Context(), srv.URL)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestClientRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("done"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("followed", func(t *testing.T) {
		c := newTestClient(t, Options{})
		resp, err := c.Get(t.Context(), srv.URL+"/start")
		require.NoError(t, err)
		assert.Equal(t, "done", resp.String())
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.FollowRedirects = false
		c := newTestClient(t, Options{Config: cfg})
		resp, err := c.Get(t.Context(), srv.URL+"/start")
		require.Error(t, err)
		if resp != nil {
			assert.Equal(t, http.StatusFound, resp.StatusCode())
		}
	})
}

func TestClientAppliesSocketConfigurators(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	var applied atomic.Int32
	c := newTestClient(t, Options{
		SocketConfigurators: []socket.Configurator{
			socket.Func(func(syscall.RawConn) error {
				applied.Add(1)
				return nil
			}),
		},
	})

	_, err := c.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), applied.Load())
}

func TestClientSharedPool(t *testing.T) {
	shared := NewIOPool(SharedPoolName, 4, nil)
	c := newTestClient(t, Options{Pool: shared})

	assert.Same(t, shared, c.Pool())
	assert.False(t, c.HasPrivatePool())

	require.NoError(t, c.Close())
	require.NoError(t, shared.Acquire(t.Context()))
	shared.Release()
}

func TestClientRateLimit(t *testing.T) {
	c := newTestClient(t, Options{})
	c.SetRateLimit(1)

	_, err := c.R(t.Context())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	_, err = c.R(ctx)
	assert.ErrorContains(t, err, "rate limit")
}

func TestClientMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	c := newTestClient(t, Options{Name: "billing", Metrics: metrics})

	_, err := c.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClientRequests.WithLabelValues("billing", "GET", "202")))
	assert.Equal(t, float64(resilience.StateClosed), testutil.ToFloat64(metrics.BreakerState.WithLabelValues("billing")))
}
