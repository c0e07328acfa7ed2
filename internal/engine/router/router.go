// Package router serves compiled artifacts over HTTP with lazy, coalesced compilation.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/rnws/internal/engine/cache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Compiler produces build output for a fingerprint.
type Compiler interface {
	Compile(ctx context.Context, fp domain.Fingerprint) (*domain.BuildOutput, error)
}

// Router resolves artifact requests from the cache, compiling on a miss.
//
// Concurrent misses for the same fingerprint share one compilation through
// the in-flight group. The group and the cache are separate: the group only
// ever holds pending work, the cache only completed artifacts.
type Router struct {
	entry     string
	platforms map[string]domain.BackendID
	backends  map[domain.BackendID]Compiler
	cache     *cache.Cache
	inflight  singleflight.Group
	logger    ports.Logger
	tracer    ports.Tracer
	metrics   ports.Metrics
}

// Option configures a Router.
type Option func(*Router)

// WithTracer records a span per compilation.
func WithTracer(t ports.Tracer) Option {
	return func(r *Router) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics records cache and compilation statistics.
func WithMetrics(m ports.Metrics) Option {
	return func(r *Router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New creates a Router for entry. A nil platforms map selects domain.DefaultPlatforms.
func New(
	entry string,
	platforms map[string]domain.BackendID,
	backends map[domain.BackendID]Compiler,
	c *cache.Cache,
	logger ports.Logger,
	opts ...Option,
) *Router {
	if platforms == nil {
		platforms = domain.DefaultPlatforms()
	}
	r := &Router{
		entry:     entry,
		platforms: platforms,
		backends:  backends,
		cache:     c,
		logger:    logger,
		tracer:    nopTracer{},
		metrics:   nopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == "/status" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, domain.PackagerStatus)
		return
	}

	fp, backend, err := rt.route(r)
	if err != nil {
		code := http.StatusNotFound
		if errors.Is(err, domain.ErrInvalidQuery) {
			code = http.StatusBadRequest
		}
		http.Error(w, err.Error(), code)
		return
	}

	if a, ok := rt.cache.Get(fp); ok {
		rt.metrics.CacheLookup(fp.Kind, true)
		writeArtifact(w, r, a)
		return
	}
	rt.metrics.CacheLookup(fp.Kind, false)

	a, err := rt.resolve(r.Context(), fp, backend)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; the shared compilation carries on without it.
			return
		}
		writeError(w, r, err)
		return
	}
	writeArtifact(w, r, a)
}

func (rt *Router) route(r *http.Request) (domain.Fingerprint, domain.BackendID, error) {
	req, err := domain.ParseArtifactRequest(r.URL.Path, r.URL.Query())
	if err != nil {
		return domain.Fingerprint{}, "", err
	}
	fp, err := req.Fingerprint(rt.entry)
	if err != nil {
		return domain.Fingerprint{}, "", err
	}
	id, ok := rt.platforms[fp.Platform]
	if _, served := rt.backends[id]; !ok || !served {
		err := zerr.Wrap(domain.ErrUnknownPlatform, "cannot route request")
		return domain.Fingerprint{}, "", zerr.With(err, "platform", fp.Platform)
	}
	return fp, id, nil
}

// resolve waits for the in-flight compilation of fp, starting one if none is pending.
func (rt *Router) resolve(ctx context.Context, fp domain.Fingerprint, id domain.BackendID) (domain.Artifact, error) {
	ch := rt.inflight.DoChan(fp.ID(), func() (any, error) {
		return rt.compile(context.WithoutCancel(ctx), fp, id)
	})

	select {
	case res := <-ch:
		if res.Shared {
			rt.metrics.Coalesced(fp.Kind)
		}
		if res.Err != nil {
			return domain.Artifact{}, res.Err
		}
		a, _ := res.Val.(domain.Artifact)
		return a, nil
	case <-ctx.Done():
		return domain.Artifact{}, ctx.Err()
	}
}

func (rt *Router) compile(ctx context.Context, fp domain.Fingerprint, id domain.BackendID) (domain.Artifact, error) {
	// A previous flight may have completed between the miss and this call.
	if a, ok := rt.cache.Get(fp); ok {
		return a, nil
	}
	gen := rt.cache.Generation()

	ctx, span := rt.tracer.Start(ctx, "compile "+fp.Path())
	defer span.End()
	span.SetAttribute("backend", string(id))
	span.SetAttribute("platform", fp.Platform)
	span.SetAttribute("dev", fp.Dev)
	span.SetAttribute("minify", fp.Minify)
	span.SetAttribute("kind", fp.Kind.String())

	start := time.Now()
	out, err := rt.backends[id].Compile(ctx, fp)
	rt.metrics.Compilation(id, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		rt.logger.Error(err)
		return domain.Artifact{}, err
	}

	a, ok := out.Artifact(fp.Kind)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "cannot serve "+fp.Path()), "backend", string(id))
		span.RecordError(err)
		return domain.Artifact{}, err
	}

	if rt.cache.PutIfCurrent(gen, fp, a) {
		if sibling, ok := out.Artifact(fp.Sibling().Kind); ok {
			rt.cache.PutIfCurrent(gen, fp.Sibling(), sibling)
		}
	}
	return a, nil
}

func writeArtifact(w http.ResponseWriter, r *http.Request, a domain.Artifact) {
	etag := a.ETag()
	h := w.Header()
	h.Set("Content-Type", a.ContentType())
	h.Set("Cache-Control", "no-cache")
	h.Set("ETag", etag)

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Length", strconv.Itoa(len(a.Bytes)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(a.Bytes)
}

type diagnosticsBody struct {
	Error       string              `json:"error"`
	Backend     domain.BackendID    `json:"backend,omitempty"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrArtifactMissing) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var ce *domain.CompilationError
	if errors.As(err, &ce) && acceptsJSON(r) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(diagnosticsBody{
			Error:       domain.ErrCompilation.Error(),
			Backend:     ce.Backend,
			Diagnostics: ce.Diagnostics,
		})
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// etagMatches reports whether an If-None-Match header names etag. The
// comparison is weak: a W/ prefix on either side is ignored.
func etagMatches(header, etag string) bool {
	etag = strings.TrimPrefix(etag, "W/")
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" || strings.TrimPrefix(part, "W/") == etag {
			return true
		}
	}
	return false
}

func acceptsJSON(r *http.Request) bool {
	for part := range strings.SplitSeq(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "application/json" {
			return true
		}
	}
	return false
}
