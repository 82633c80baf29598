package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/logging"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/httpbinder/internal/socket"
)

var errServerStatus = errors.New("server error status")

// Options carries everything needed to construct a Client.
type Options struct {
	Name                string
	Config              Config
	Filters             []Filter
	SocketConfigurators []socket.Configurator
	// Pool is the shared I/O pool. Nil gives the client a private pool of
	// Config.PoolSize slots.
	Pool    *IOPool
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Client wraps resty with rate limiting, circuit breaking and the bound
// filter and socket configuration.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker

	name        string
	config      Config
	pool        *IOPool
	privatePool bool
	transport   *http.Transport
	logger      *logging.Logger

	mu sync.RWMutex
}

// New builds a client. It performs no network I/O.
func New(opts Options) (*Client, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("client name is empty")
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client %s: %w", opts.Name, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.Named(opts.Name)

	pool := opts.Pool
	private := pool == nil
	if private {
		pool = NewIOPool("client:"+opts.Name, cfg.PoolSize, opts.Metrics)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: cfg.KeepAliveInterval,
	}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           socket.DialContext(dialer, opts.SocketConfigurators),
		MaxConnsPerHost:       cfg.MaxConnectionsPerServer,
		MaxIdleConns:          cfg.MaxIdleConnections,
		MaxIdleConnsPerHost:   cfg.MaxConnectionsPerServer,
		IdleConnTimeout:       cfg.IdleTimeout,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
	if cfg.ProxyURL != "" {
		proxy, err := cfg.proxy()
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", opts.Name, err)
		}
		base.Proxy = http.ProxyURL(proxy)
	}

	var rt http.RoundTripper = &poolTransport{pool: pool, next: base}
	if opts.Metrics != nil {
		rt = opts.Metrics.InstrumentTransport(opts.Name, rt)
	}
	rt = newFilterTransport(opts.Filters, rt)

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Transport: rt,
		// Redirects are followed by the outer client so the policy below
		// applies once per hop.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = logger.Leveled()
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Backoff = retryBackoff

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetLogger(logger.Sugar())
	if cfg.FollowRedirects {
		restyClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.MaxRedirects))
	} else {
		restyClient.SetRedirectPolicy(resty.NoRedirectPolicy())
	}

	c := &Client{
		Resty:       restyClient,
		Limiter:     newLimiter(cfg.RequestsPerSecond),
		name:        opts.Name,
		config:      cfg,
		pool:        pool,
		privatePool: private,
		transport:   base,
		logger:      logger,
	}
	c.Breaker = resilience.New("http-client:"+opts.Name, resilience.Settings{
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: resilience.ConsecutiveFailures(cfg.BreakerFailures),
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			if opts.Metrics != nil {
				opts.Metrics.SetBreakerState(opts.Name, int(to))
			}
		},
	})
	if opts.Metrics != nil {
		opts.Metrics.SetBreakerState(opts.Name, int(resilience.StateClosed))
	}

	logger.Debug("client constructed",
		zap.String("pool", pool.Name()),
		zap.Bool("private_pool", private),
		zap.Int("filters", len(opts.Filters)),
		zap.Int("socket_configurators", len(opts.SocketConfigurators)),
	)

	return c, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Name returns the client name.
func (c *Client) Name() string { return c.name }

// Config returns the resolved configuration.
func (c *Client) Config() Config { return c.config }

// Pool returns the I/O pool the client draws from.
func (c *Client) Pool() *IOPool { return c.pool }

// HasPrivatePool reports whether the pool belongs to this client alone.
func (c *Client) HasPrivatePool() bool { return c.privatePool }

// HTTP returns the underlying *http.Client for callers that need plain
// net/http. Requests made through it bypass the rate limiter and breaker
// but still pass through filters, retries and the I/O pool.
func (c *Client) HTTP() *http.Client {
	return c.Resty.GetClient()
}

// SetRateLimit changes the requests-per-second limit. Zero means unlimited.
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Limiter = newLimiter(rps)
}

// R creates a request after checking the breaker and waiting on the rate
// limiter.
func (c *Client) R(ctx context.Context) (*resty.Request, error) {
	if c.Breaker.State() == resilience.StateOpen {
		return nil, fmt.Errorf("client %s: %w", c.name, resilience.ErrCircuitOpen)
	}

	c.mu.RLock()
	limiter := c.Limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("client %s: rate limit: %w", c.name, err)
	}
	return c.Resty.R().SetContext(ctx), nil
}

// Execute runs fn under the circuit breaker. Transport errors and 5xx
// responses count as failures; 5xx responses are still returned.
func (c *Client) Execute(fn func() (*resty.Response, error)) (*resty.Response, error) {
	result, err := c.Breaker.Execute(func() (interface{}, error) {
		resp, err := fn()
		if err == nil && resp != nil && resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, err
	})

	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, fmt.Errorf("client %s: %w", c.name, err)
	}

	resp, _ := result.(*resty.Response)
	if errors.Is(err, errServerStatus) {
		return resp, nil
	}
	return resp, err
}

// Get issues a GET through the rate limiter and breaker.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	req, err := c.R(ctx)
	if err != nil {
		return nil, err
	}
	return c.Execute(func() (*resty.Response, error) {
		return req.Get(url)
	})
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}

// Close drops idle connections and closes a private pool. The shared pool
// is owned by the registry.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	if c.privatePool {
		c.pool.Close()
	}
	return nil
}
