package ports

import "go.trai.ch/rnws/internal/core/domain"

// ConfigLoader defines the interface for loading the bundler configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the bundler configuration file at path.
	Load(path string) (*domain.BundlerConfig, error)
}
