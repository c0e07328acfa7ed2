package ports

import (
	"context"

	"go.trai.ch/rnws/internal/core/domain"
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// Engine is a compilation engine sitting behind a backend handle.
type Engine interface {
	// Start prepares the engine to accept compilations.
	Start(ctx context.Context) error
	// Stop releases the engine's resources. It must be safe to call after a failed Start.
	Stop(ctx context.Context) error
	// Compile builds the artifact named by the fingerprint. Build failures are
	// reported as *domain.CompilationError.
	Compile(ctx context.Context, fp domain.Fingerprint) (*domain.BuildOutput, error)
}

// EngineFactory constructs the engine for a backend from the server configuration.
type EngineFactory interface {
	NewEngine(id domain.BackendID, cfg domain.Config) (Engine, error)
}
