// Package server owns both compilation backends, the bundle cache and the
// public listener, and drives them through a single start/stop lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/rnws/internal/engine/backend"
	"go.trai.ch/rnws/internal/engine/cache"
	"go.trai.ch/rnws/internal/engine/router"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const readHeaderTimeout = 10 * time.Second

// Server is the development server. Its zero value is not usable; use New.
type Server struct {
	cfg      domain.Config
	logger   ports.Logger
	tracer   ports.Tracer
	metrics  ports.Metrics
	watcher  ports.Watcher
	cache    *cache.Cache
	backends map[domain.BackendID]*backend.Handle
	router   *router.Router

	mu        sync.Mutex
	state     domain.ServerState
	startDone chan struct{}
	startErr  error
	stopDone  chan struct{}
	httpSrv   *http.Server
	ln        net.Listener
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithTracer records a span per compilation.
func WithTracer(t ports.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithMetrics records statistics and serves them under /metrics.
func WithMetrics(m ports.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithWatcher clears the bundle cache whenever a source file changes.
// It only takes effect when the configuration enables watching.
func WithWatcher(w ports.Watcher) Option {
	return func(s *Server) { s.watcher = w }
}

// New constructs a stopped Server. Both engines are created through factory
// but not started.
func New(cfg domain.Config, factory ports.EngineFactory, logger ports.Logger, opts ...Option) (*Server, error) {
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = domain.DefaultShutdownGrace
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		cache:    cache.New(),
		backends: make(map[domain.BackendID]*backend.Handle, len(domain.Backends)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.ResetCache {
		s.cache.Clear()
	}

	compilers := make(map[domain.BackendID]router.Compiler, len(domain.Backends))
	for _, id := range domain.Backends {
		engine, err := factory.NewEngine(id, cfg)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create engine"), "backend", string(id))
		}
		addr := net.JoinHostPort(cfg.Hostname, strconv.Itoa(cfg.BackendPort(id)))
		h := backend.New(id, addr, cfg.Entry, engine, logger)
		s.backends[id] = h
		compilers[id] = h
	}

	s.router = router.New(cfg.Entry, cfg.Bundler.Platforms, compilers, s.cache, logger,
		router.WithTracer(s.tracer),
		router.WithMetrics(s.metrics),
	)
	return s, nil
}

// Start brings both backends up concurrently and then binds the public
// listener. A Start issued while another is in flight waits for and returns
// that result; a Start on a listening server is a no-op; a Start on a
// stopping server waits for the stop to finish first. On failure every
// started backend is stopped again and the returned error matches
// domain.ErrStartupFailure.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	for s.state == domain.ServerStopping {
		done := s.stopDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return errors.Join(domain.ErrStartupFailure, domain.ErrServerStopping, ctx.Err())
		}
		s.mu.Lock()
	}

	switch s.state {
	case domain.ServerListening:
		s.mu.Unlock()
		return nil
	case domain.ServerStarting:
		done := s.startDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.startErr
	}

	done := make(chan struct{})
	s.state = domain.ServerStarting
	s.startDone = done
	s.startErr = nil
	s.mu.Unlock()

	err := s.start(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = domain.ServerStopped
	} else {
		s.state = domain.ServerListening
	}
	s.startErr = err
	close(done)
	s.mu.Unlock()

	return err
}

func (s *Server) start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range domain.Backends {
		h := s.backends[id]
		g.Go(func() error {
			return h.Start(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		if stopErr := s.stopBackends(context.WithoutCancel(ctx)); stopErr != nil {
			s.logger.Error(stopErr)
		}
		return errors.Join(domain.ErrStartupFailure, err)
	}

	addr := net.JoinHostPort(s.cfg.Hostname, strconv.Itoa(s.cfg.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		if stopErr := s.stopBackends(context.WithoutCancel(ctx)); stopErr != nil {
			s.logger.Error(stopErr)
		}
		err = zerr.With(zerr.Wrap(err, domain.ErrListenFailed.Error()), "addr", addr)
		return errors.Join(domain.ErrStartupFailure, err)
	}

	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.Handle("/", s.router)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.mu.Lock()
	s.ln = ln
	s.httpSrv = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(zerr.Wrap(err, "public listener failed"))
		}
	}()

	s.startWatcher(ctx)
	return nil
}

// Stop releases the public listener and both backends. It waits for an
// in-flight Start to settle first and is a no-op on a stopped server.
// A Stop overlapping another Stop returns once the server is stopped.
// In-flight requests get the configured grace period before their
// connections are closed.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state == domain.ServerStarting {
		done := s.startDone
		s.mu.Unlock()
		<-done
		s.mu.Lock()
	}
	switch s.state {
	case domain.ServerStopped:
		s.mu.Unlock()
		return nil
	case domain.ServerStopping:
		done := s.stopDone
		s.mu.Unlock()
		<-done
		return nil
	}

	stopDone := make(chan struct{})
	s.state = domain.ServerStopping
	s.stopDone = stopDone
	srv := s.httpSrv
	stopWatch, watchDone := s.stopWatch, s.watchDone
	s.httpSrv, s.stopWatch, s.watchDone = nil, nil, nil
	s.mu.Unlock()

	var errs error
	if stopWatch != nil {
		stopWatch()
		if err := s.watcher.Stop(); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to stop watcher"))
		}
		<-watchDone
	}

	if srv != nil {
		sctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownGrace)
		if err := srv.Shutdown(sctx); err != nil {
			_ = srv.Close()
			s.logger.Warn("closed open connections after " + s.cfg.ShutdownGrace.String())
		}
		cancel()
	}

	errs = errors.Join(errs, s.stopBackends(ctx))

	s.mu.Lock()
	s.state = domain.ServerStopped
	s.ln = nil
	close(stopDone)
	s.mu.Unlock()

	return errs
}

func (s *Server) stopBackends(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownGrace)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, h := range s.backends {
		wg.Go(func() {
			if err := h.Stop(ctx); err != nil {
				mu.Lock()
				errs = errors.Join(errs, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return errs
}

func (s *Server) startWatcher(ctx context.Context) {
	if s.watcher == nil || !s.cfg.Watch {
		return
	}

	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := s.watcher.Start(wctx, s.cfg.Bundler.Root); err != nil {
		cancel()
		s.logger.Warn("file watching disabled: " + err.Error())
		return
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.stopWatch = cancel
	s.watchDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		for event := range s.watcher.Events() {
			s.invalidate(event.Path)
		}
	}()
}

// invalidate drops every cached artifact. Invalidation is never partial.
func (s *Server) invalidate(path string) {
	n := s.cache.Len()
	s.cache.Clear()
	if s.metrics != nil {
		s.metrics.CacheCleared()
	}
	if n > 0 {
		s.logger.Info(fmt.Sprintf("%s changed, cleared %d cached artifacts", path, n))
	}
}

// State returns the current lifecycle state.
func (s *Server) State() domain.ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound public address, or the configured one when not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return net.JoinHostPort(s.cfg.Hostname, strconv.Itoa(s.cfg.Port))
}

// Backend returns the handle of the given backend.
func (s *Server) Backend(id domain.BackendID) *backend.Handle {
	return s.backends[id]
}

// Cache returns the bundle cache.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.router
}
