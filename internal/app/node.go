package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rnws/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/adapters/engines"   //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/adapters/fetch"     //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/rnws/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			engines.NodeID,
			logger.NodeID,
			telemetry.NodeID,
			metrics.NodeID,
			watcher.NodeID,
			fetch.NodeID,
			fs.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	factory, err := graft.Dep[ports.EngineFactory](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	recorder, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	fetcher, err := graft.Dep[ports.ArtifactFetcher](ctx)
	if err != nil {
		return nil, err
	}
	writer, err := graft.Dep[ports.ArtifactWriter](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, factory, log, tracer, recorder, w, fetcher, writer), nil
}
