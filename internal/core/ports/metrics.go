package ports

import (
	"net/http"
	"time"

	"go.trai.ch/rnws/internal/core/domain"
)

// Metrics records request and compilation statistics.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// CacheLookup records a bundle cache lookup.
	CacheLookup(kind domain.ArtifactKind, hit bool)
	// Compilation records a finished compilation.
	Compilation(backend domain.BackendID, elapsed time.Duration, err error)
	// Coalesced records a request that joined an in-flight compilation.
	Coalesced(kind domain.ArtifactKind)
	// CacheCleared records a bulk cache invalidation.
	CacheCleared()
	// Handler serves the metrics exposition.
	Handler() http.Handler
}
