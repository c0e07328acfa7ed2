// Package esbuild compiles bundles in-process with esbuild.
package esbuild

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine implements ports.Engine on top of the esbuild Go API.
type Engine struct {
	id      domain.BackendID
	bundler domain.BundlerConfig
	hot     bool
	opts    compiledOptions
	logger  ports.Logger
	now     func() time.Time
}

// New creates an esbuild engine for the given backend.
func New(id domain.BackendID, cfg domain.Config, logger ports.Logger) (*Engine, error) {
	opts, err := compileOptions(cfg.Bundler.Web)
	if err != nil {
		return nil, zerr.With(err, "backend", string(id))
	}
	return &Engine{
		id:      id,
		bundler: cfg.Bundler,
		hot:     cfg.Hot,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Start verifies the project root exists.
func (e *Engine) Start(_ context.Context) error {
	info, err := os.Stat(e.bundler.Root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "project root is not accessible"), "root", e.bundler.Root)
	}
	if !info.IsDir() {
		return zerr.With(zerr.New("project root is not a directory"), "root", e.bundler.Root)
	}
	return nil
}

// Stop is a no-op; every compilation is self-contained.
func (e *Engine) Stop(_ context.Context) error {
	return nil
}

// Compile bundles the entry named by fp together with its source map.
func (e *Engine) Compile(ctx context.Context, fp domain.Fingerprint) (*domain.BuildOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, err := e.resolveEntry(fp)
	if err != nil {
		return nil, err
	}

	outfile := filepath.Join(domain.DefaultStatePath(e.bundler.Root), "out", fp.Entry+"."+fp.Platform+".js")
	result := api.Build(api.BuildOptions{
		AbsWorkingDir:     e.bundler.Root,
		EntryPoints:       []string{entry},
		Outfile:           outfile,
		Bundle:            true,
		Write:             false,
		LogLevel:          api.LogLevelSilent,
		Platform:          api.PlatformBrowser,
		Format:            api.FormatIIFE,
		Sourcemap:         api.SourceMapExternal,
		MinifyWhitespace:  fp.Minify,
		MinifyIdentifiers: fp.Minify,
		MinifySyntax:      fp.Minify,
		Target:            e.opts.target,
		JSX:               e.opts.jsx,
		Loader:            e.opts.loader,
		External:          e.bundler.Web.External,
		ResolveExtensions: resolveExtensions(e.id, fp.Platform, e.bundler.Web.ResolveExtensions),
		Define:            e.defines(fp),
	})

	for _, w := range result.Warnings {
		e.logger.Warn(fmt.Sprintf("%s: %s", e.id, diagnostic(w)))
	}
	if len(result.Errors) > 0 {
		cerr := &domain.CompilationError{Backend: e.id}
		for _, m := range result.Errors {
			cerr.Diagnostics = append(cerr.Diagnostics, diagnostic(m))
		}
		return nil, cerr
	}

	out := &domain.BuildOutput{CreatedAt: e.now()}
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, domain.SourceMapSuffix) {
			out.SourceMap = f.Contents
		} else {
			out.Bundle = f.Contents
		}
	}
	if out.Bundle == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "esbuild produced no bundle"), "entry", entry)
	}
	return out, nil
}

func (e *Engine) defines(fp domain.Fingerprint) map[string]string {
	env := "production"
	if fp.Dev {
		env = "development"
	}
	defs := map[string]string{
		"__DEV__":              strconv.FormatBool(fp.Dev),
		"__HOT__":              strconv.FormatBool(e.hot),
		"process.env.NODE_ENV": strconv.Quote(env),
	}
	maps.Copy(defs, e.bundler.Web.Define)
	return defs
}

// resolveEntry maps an entry name to a source file under the project root.
func (e *Engine) resolveEntry(fp domain.Fingerprint) (string, error) {
	if file, ok := e.bundler.Entries[fp.Entry]; ok {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.bundler.Root, path)
		}
		if fileExists(path) {
			return path, nil
		}
		return "", zerr.With(zerr.Wrap(domain.ErrEntryNotFound, "configured entry is missing"), "file", path)
	}

	base := filepath.Join(e.bundler.Root, filepath.FromSlash(fp.Entry))
	candidates := []string{base}
	for _, ext := range sourceExtensions {
		candidates = append(candidates, base+"."+fp.Platform+ext)
	}
	for _, ext := range sourceExtensions {
		candidates = append(candidates, base+ext)
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}
	err := zerr.With(zerr.Wrap(domain.ErrEntryNotFound, "no source file for entry"), "entry", fp.Entry)
	return "", zerr.With(err, "root", e.bundler.Root)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func diagnostic(m api.Message) domain.Diagnostic {
	d := domain.Diagnostic{Text: m.Text}
	if m.Location != nil {
		d.File = m.Location.File
		d.Line = m.Location.Line
		d.Column = m.Location.Column
	}
	return d
}

var _ ports.Engine = (*Engine)(nil)
