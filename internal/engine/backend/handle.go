// Package backend wraps a compilation engine with a start/stop lifecycle.
package backend

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/zerr"
)

const readHeaderTimeout = 10 * time.Second

// Handle owns one compilation engine and the listener it is reachable on.
type Handle struct {
	id     domain.BackendID
	addr   string
	entry  string
	engine ports.Engine
	logger ports.Logger

	// lifeMu serializes Start and Stop.
	lifeMu sync.Mutex

	mu     sync.RWMutex
	state  domain.BackendState
	ln     net.Listener
	server *http.Server
}

// New creates a stopped Handle for engine, listening on addr once started.
func New(id domain.BackendID, addr, entry string, engine ports.Engine, logger ports.Logger) *Handle {
	return &Handle{
		id:     id,
		addr:   addr,
		entry:  entry,
		engine: engine,
		logger: logger,
	}
}

// ID returns the backend this handle serves.
func (h *Handle) ID() domain.BackendID {
	return h.id
}

// State returns the current lifecycle state.
func (h *Handle) State() domain.BackendState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Addr returns the bound listener address, or the configured one when stopped.
func (h *Handle) Addr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.ln != nil {
		return h.ln.Addr().String()
	}
	return h.addr
}

func (h *Handle) setState(s domain.BackendState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// Start binds the backend listener and starts the engine. It returns nil
// without side effects when the handle is already ready. On failure every
// acquired resource is released and the handle is stopped again.
func (h *Handle) Start(ctx context.Context) error {
	h.lifeMu.Lock()
	defer h.lifeMu.Unlock()

	if h.State() == domain.BackendReady {
		return nil
	}
	h.setState(domain.BackendStarting)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		h.setState(domain.BackendStopped)
		err = zerr.With(zerr.Wrap(err, domain.ErrListenFailed.Error()), "addr", h.addr)
		return errors.Join(domain.ErrBackendStartFailed, zerr.With(err, "backend", string(h.id)))
	}

	if err := h.engine.Start(ctx); err != nil {
		_ = ln.Close()
		_ = h.engine.Stop(context.WithoutCancel(ctx))
		h.setState(domain.BackendStopped)
		return errors.Join(domain.ErrBackendStartFailed, zerr.With(err, "backend", string(h.id)))
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	h.mu.Lock()
	h.ln = ln
	h.server = srv
	h.state = domain.BackendReady
	h.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error(zerr.With(zerr.Wrap(err, "backend listener failed"), "backend", string(h.id)))
		}
	}()

	return nil
}

// Stop shuts down the listener and the engine. Stopping a stopped handle is a no-op.
func (h *Handle) Stop(ctx context.Context) error {
	h.lifeMu.Lock()
	defer h.lifeMu.Unlock()

	if h.State() == domain.BackendStopped {
		return nil
	}
	h.setState(domain.BackendStopping)

	h.mu.Lock()
	srv := h.server
	h.server = nil
	h.ln = nil
	h.mu.Unlock()

	var errs error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to shut down backend listener"), "backend", string(h.id)))
		}
	}
	if err := h.engine.Stop(ctx); err != nil {
		errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to stop engine"), "backend", string(h.id)))
	}

	h.setState(domain.BackendStopped)
	return errs
}

// Compile asks the engine for the artifacts named by fp.
func (h *Handle) Compile(ctx context.Context, fp domain.Fingerprint) (*domain.BuildOutput, error) {
	if h.State() != domain.BackendReady {
		err := zerr.Wrap(domain.ErrBackendUnavailable, "cannot compile "+fp.Path())
		return nil, zerr.With(err, "backend", string(h.id))
	}
	return h.engine.Compile(ctx, fp)
}

// ServeHTTP serves the engine directly, without caching, on the backend's own port.
func (h *Handle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/status" {
		_, _ = io.WriteString(w, domain.PackagerStatus)
		return
	}

	req, err := domain.ParseArtifactRequest(r.URL.Path, r.URL.Query())
	if err != nil {
		http.NotFound(w, r)
		return
	}
	fp, err := req.Fingerprint(h.entry)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	out, err := h.Compile(r.Context(), fp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a, ok := out.Artifact(fp.Kind)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", a.ContentType())
	_, _ = w.Write(a.Bytes)
}
