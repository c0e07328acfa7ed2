// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/rnws/internal/adapters/config"
	_ "go.trai.ch/rnws/internal/adapters/engines"
	_ "go.trai.ch/rnws/internal/adapters/fetch"
	_ "go.trai.ch/rnws/internal/adapters/fs"
	_ "go.trai.ch/rnws/internal/adapters/logger"
	_ "go.trai.ch/rnws/internal/adapters/metrics"
	_ "go.trai.ch/rnws/internal/adapters/telemetry"
	_ "go.trai.ch/rnws/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/rnws/internal/app"
)
