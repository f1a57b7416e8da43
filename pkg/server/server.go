package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server hosts the registration API backed by an in-memory store. It
// is the reference host implementation the CLI and the HTTP client are
// developed against.
type Server struct {
	name    string
	version string
	cfg     *Config
	store   *Store
	limiter *rate.Limiter

	mu    sync.RWMutex
	ready bool

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the server name reported on the default route.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithVersion sets the version reported on the default route.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithStore replaces the backing store.
func WithStore(store *Store) Option {
	return func(s *Server) { s.store = store }
}

// New creates a Server with defaults overridden by opts.
func New(opts ...Option) *Server {
	s := &Server{
		name:    "helmwire-host",
		version: "dev",
		cfg:     DefaultConfig(),
		store:   NewStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = rate.NewLimiter(s.cfg.RateLimit, s.cfg.RateLimitBurst)
	return s
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the fully routed handler. Tests and in-process
// embedders serve it directly instead of calling Run.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Run starts the server and blocks until ctx is canceled or the
// listener fails. On cancellation in-flight requests drain for up to
// cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.setReady(true)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", addr, "name", s.name, "version", s.version)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.setReady(false)
		slog.Info("shutting down server", "timeout", s.cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}
