// Package metrics exposes server statistics in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/rnws/internal/core/domain"
)

const namespace = "rnws"

// Prometheus implements ports.Metrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	cacheLookups  *prometheus.CounterVec
	compilations  *prometheus.CounterVec
	compileTime   *prometheus.HistogramVec
	coalesced     *prometheus.CounterVec
	cacheClearing prometheus.Counter
}

// New creates a Prometheus recorder with its own registry.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Bundle cache lookups by artifact kind and result",
			},
			[]string{"kind", "hit"},
		),
		compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Finished compilations by backend and status",
			},
			[]string{"backend", "status"},
		),
		compileTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compilation_duration_seconds",
				Help:      "Compilation latency by backend",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"backend"},
		),
		coalesced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "coalesced_requests_total",
				Help:      "Requests that joined an in-flight compilation",
			},
			[]string{"kind"},
		),
		cacheClearing: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_clears_total",
			Help:      "Bulk bundle cache invalidations",
		}),
	}
}

// CacheLookup records a bundle cache lookup.
func (p *Prometheus) CacheLookup(kind domain.ArtifactKind, hit bool) {
	p.cacheLookups.WithLabelValues(kind.String(), strconv.FormatBool(hit)).Inc()
}

// Compilation records a finished compilation.
func (p *Prometheus) Compilation(backend domain.BackendID, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.compilations.WithLabelValues(string(backend), status).Inc()
	p.compileTime.WithLabelValues(string(backend)).Observe(elapsed.Seconds())
}

// Coalesced records a request that joined an in-flight compilation.
func (p *Prometheus) Coalesced(kind domain.ArtifactKind) {
	p.coalesced.WithLabelValues(kind.String()).Inc()
}

// CacheCleared records a bulk cache invalidation.
func (p *Prometheus) CacheCleared() {
	p.cacheClearing.Inc()
}

// Registry returns the registry the recorder writes to.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
