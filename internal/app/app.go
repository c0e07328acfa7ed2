// Package app implements the application layer for rnws.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/rnws/internal/engine/server"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	factory      ports.EngineFactory
	logger       ports.Logger
	tracer       ports.Tracer
	metrics      ports.Metrics
	watcher      ports.Watcher
	fetcher      ports.ArtifactFetcher
	writer       ports.ArtifactWriter
	onListening  func(addr string)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	factory ports.EngineFactory,
	log ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
	watcher ports.Watcher,
	fetcher ports.ArtifactFetcher,
	writer ports.ArtifactWriter,
) *App {
	return &App{
		configLoader: loader,
		factory:      factory,
		logger:       log,
		tracer:       tracer,
		metrics:      metrics,
		watcher:      watcher,
		fetcher:      fetcher,
		writer:       writer,
	}
}

// WithListeningHook registers fn to be called with the public address once
// Start is serving. This is primarily used for testing.
func (a *App) WithListeningHook(fn func(addr string)) *App {
	a.onListening = fn
	return a
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// Start runs the development server until ctx is cancelled.
func (a *App) Start(ctx context.Context, opts StartOptions) error {
	cfg, err := a.config(opts.CommonOptions)
	if err != nil {
		return err
	}
	cfg.Hot = opts.Hot
	cfg.Watch = opts.Watch

	srv, err := server.New(cfg, a.factory, a.logger, a.serverOptions(cfg.Watch)...)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("listening on http://%s", srv.Addr()))
	for _, id := range domain.Backends {
		if h := srv.Backend(id); h != nil {
			a.logger.Info(fmt.Sprintf("%s backend on http://%s", id, h.Addr()))
		}
	}
	if a.onListening != nil {
		a.onListening(srv.Addr())
	}

	<-ctx.Done()
	a.logger.Info("shutting down")
	if err := srv.Stop(context.WithoutCancel(ctx)); err != nil {
		return zerr.Wrap(err, "failed to stop server")
	}
	return nil
}

// Bundle starts a server, extracts the bundle (and optionally its source map)
// to disk and stops the server again. Written files are not rolled back when
// a later step fails.
func (a *App) Bundle(ctx context.Context, opts BundleOptions) (err error) {
	cfg, err := a.config(opts.CommonOptions)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, a.factory, a.logger, a.serverOptions(false)...)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := srv.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			err = errors.Join(err, zerr.Wrap(stopErr, "failed to stop server"))
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	bundle := opts.Fingerprint(cfg.Entry, domain.KindBundle)
	if err := a.extract(ctx, srv.Addr(), bundle, opts.BundlePath); err != nil {
		return err
	}
	if opts.SourceMap {
		sourceMap := opts.Fingerprint(cfg.Entry, domain.KindSourceMap)
		if err := a.extract(ctx, srv.Addr(), sourceMap, domain.SourceMapPath(opts.BundlePath)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) extract(ctx context.Context, addr string, fp domain.Fingerprint, path string) error {
	data, err := a.fetcher.Fetch(ctx, artifactURL(addr, fp))
	if err != nil {
		return err
	}
	if err := a.writer.Write(path, data); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("wrote %s (%d bytes)", path, len(data)))
	return nil
}

// config loads the bundler configuration and assembles the server configuration.
func (a *App) config(opts CommonOptions) (domain.Config, error) {
	bundler, err := a.configLoader.Load(opts.configPath())
	if err != nil {
		return domain.Config{}, zerr.Wrap(err, "failed to load configuration")
	}

	return domain.Config{
		Hostname:          opts.Hostname,
		Port:              opts.Port,
		PackagerPort:      opts.PackagerPort,
		WebpackPort:       opts.WebpackPort,
		WebpackConfigPath: bundler.Path,
		Bundler:           *bundler,
		Entry:             opts.entry(),
		ResetCache:        opts.ResetCache,
		ShutdownGrace:     domain.DefaultShutdownGrace,
	}, nil
}

func (a *App) serverOptions(watch bool) []server.Option {
	opts := []server.Option{
		server.WithTracer(a.tracer),
		server.WithMetrics(a.metrics),
	}
	if watch && a.watcher != nil {
		opts = append(opts, server.WithWatcher(a.watcher))
	}
	return opts
}

// artifactURL builds the URL of fp on the server bound at addr. Wildcard
// hosts are reached through localhost.
func artifactURL(addr string, fp domain.Fingerprint) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, ""
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	}
	u := url.URL{
		Scheme:   "http",
		Host:     host,
		Path:     fp.Path(),
		RawQuery: fp.Query().Encode(),
	}
	return u.String()
}
