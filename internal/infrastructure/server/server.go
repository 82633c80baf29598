package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handlers "github.com/GriffinCanCode/httpbinder/internal/api/http"
	"github.com/GriffinCanCode/httpbinder/internal/api/middleware"
	"github.com/GriffinCanCode/httpbinder/internal/binder"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/config"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/logging"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/httpbinder/internal/socket"
)

const readHeaderTimeout = 10 * time.Second

// Options carries the server dependencies.
type Options struct {
	Config   *config.Config
	Registry *binder.Registry
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Server is the admin HTTP server.
type Server struct {
	handler  http.Handler
	http     *http.Server
	config   *config.Config
	logger   *logging.Logger
	sockets  []socket.Configurator
	listener net.Listener

	mu sync.Mutex
}

// New wires the admin router. It does not listen yet.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server config is nil")
	}
	if opts.Registry == nil {
		return nil, errors.New("server registry is nil")
	}
	cfg := opts.Config

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.Named("admin")

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(logger.Logger))
	if opts.Metrics != nil {
		router.Use(monitoring.Middleware(opts.Metrics))
	}
	if len(cfg.Admin.CORSOrigins) > 0 {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Admin.CORSOrigins)))
	}
	if cfg.Admin.RateLimitRPS > 0 {
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.Admin.RateLimitRPS
		limits.Burst = cfg.Admin.RateLimitBurst
		router.Use(middleware.RateLimit(limits))
	}

	h := handlers.NewHandlers(opts.Registry)
	router.GET("/health", h.Health)
	router.GET("/clients", h.ListClients)
	router.GET("/clients/:qualifier", h.GetClient)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{DisableCompression: true})))

	settings := socket.Settings{
		ReuseAddr: &cfg.Admin.ReuseAddr,
		ReusePort: &cfg.Admin.ReusePort,
	}

	// Compression is applied once here for every route, /metrics included.
	handler := gzhttp.GzipHandler(router)

	return &Server{
		handler: handler,
		http:    &http.Server{Handler: handler, ReadHeaderTimeout: readHeaderTimeout},
		config:  cfg,
		logger:  logger,
		sockets: settings.Configurators(),
	}, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Listen binds the admin address, applying the listener socket options.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("server is already listening")
	}
	ln, err := socket.Listen(ctx, "tcp", s.config.AdminAddr(), s.sockets)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.AdminAddr(), err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens if needed and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.Addr() == nil {
		if err := s.Listen(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.logger.Info("starting admin server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("admin server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return s.Shutdown()
}

// Shutdown stops accepting connections and waits for in-flight requests up
// to the configured timeout.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down admin server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Admin.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("admin server shutdown: %w", err)
	}
	return nil
}
