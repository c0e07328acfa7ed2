package router

import (
	"context"
	"net/http"
	"time"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
)

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End() {}
func (nopSpan) RecordError(error) {}
func (nopSpan) SetAttribute(string, any) {}

type nopMetrics struct{}

func (nopMetrics) CacheLookup(domain.ArtifactKind, bool) {}
func (nopMetrics) Compilation(domain.BackendID, time.Duration, error) {}
func (nopMetrics) Coalesced(domain.ArtifactKind) {}
func (nopMetrics) CacheCleared() {}
func (nopMetrics) Handler() http.Handler { return http.NotFoundHandler() }
