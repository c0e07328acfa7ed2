// Package engines selects the compilation engine behind each backend.
package engines

import (
	"go.trai.ch/rnws/internal/adapters/esbuild"
	"go.trai.ch/rnws/internal/adapters/packager"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory implements ports.EngineFactory.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory whose engines log through logger.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewEngine returns esbuild for the web backend and the configured native engine
// for the native backend.
func (f *Factory) NewEngine(id domain.BackendID, cfg domain.Config) (ports.Engine, error) {
	switch id {
	case domain.BackendWeb:
		return esbuild.New(id, cfg, f.logger)
	case domain.BackendNative:
		switch cfg.Bundler.Native.Engine {
		case domain.NativeEnginePackager, "":
			return packager.New(id, cfg, f.logger), nil
		case domain.NativeEngineEsbuild:
			return esbuild.New(id, cfg, f.logger)
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownNativeEngine, "cannot create engine"), "engine", string(cfg.Bundler.Native.Engine))
		}
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownBackend, "cannot create engine"), "backend", string(id))
	}
}
