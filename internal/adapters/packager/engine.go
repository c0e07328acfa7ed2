// Package packager drives the React Native packager CLI as a compilation engine.
package packager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxDiagnostics bounds how many output lines a failed compilation reports.
const maxDiagnostics = 50

var entryExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Engine implements ports.Engine by running one packager bundle command per compilation.
type Engine struct {
	id      domain.BackendID
	root    string
	entries map[string]string
	command []string
	env     map[string]string
	scratch string
	logger  ports.Logger
	now     func() time.Time

	// mu serializes packager runs; the CLI keeps its own cache under the project root.
	mu         sync.Mutex
	resetCache bool
}

// New creates a packager engine for the given backend.
func New(id domain.BackendID, cfg domain.Config, logger ports.Logger) *Engine {
	command := cfg.Bundler.Native.Command
	if len(command) == 0 {
		command = domain.DefaultNativeCommand()
	}
	return &Engine{
		id:         id,
		root:       cfg.Bundler.Root,
		entries:    cfg.Bundler.Entries,
		command:    command,
		env:        cfg.Bundler.Native.Env,
		scratch:    domain.DefaultPackagerPath(cfg.Bundler.Root),
		logger:     logger,
		now:        time.Now,
		resetCache: cfg.ResetCache,
	}
}

// Start checks the packager command is runnable and prepares the scratch directory.
func (e *Engine) Start(_ context.Context) error {
	name := e.command[0]
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.root, path)
		}
		if err := findExecutable(path); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrEngineNotFound, "packager command is not executable"), "command", name)
		}
	} else if _, err := lookPath(name, e.environment(true)); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrEngineNotFound, "packager command not found"), "command", name)
	}

	e.mu.Lock()
	reset := e.resetCache
	e.mu.Unlock()
	if reset {
		if err := os.RemoveAll(e.scratch); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to reset packager cache"), "dir", e.scratch)
		}
	}
	if err := os.MkdirAll(e.scratch, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create packager directory"), "dir", e.scratch)
	}
	return nil
}

// Stop is a no-op; packager runs are bound to their compilation context.
func (e *Engine) Stop(_ context.Context) error {
	return nil
}

// Compile runs the packager for fp and reads back the bundle and its source map.
func (e *Engine) Compile(ctx context.Context, fp domain.Fingerprint) (*domain.BuildOutput, error) {
	entry, err := e.resolveEntry(fp)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	bundlePath := filepath.Join(e.scratch, fp.Key()+".bundle")
	mapPath := domain.SourceMapPath(bundlePath)
	_ = os.Remove(bundlePath)
	_ = os.Remove(mapPath)

	argv := append([]string{}, e.command...)
	argv = append(argv,
		"--entry-file", entry,
		"--platform", fp.Platform,
		"--dev", strconv.FormatBool(fp.Dev),
		"--minify", strconv.FormatBool(fp.Minify),
		"--bundle-output", bundlePath,
		"--sourcemap-output", mapPath,
	)
	if e.resetCache {
		argv = append(argv, "--reset-cache")
	}

	output, err := run(ctx, e.logger, e.root, argv, e.environment(fp.Dev))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, e.compilationError(err, output)
	}
	e.resetCache = false

	bundle, err := os.ReadFile(bundlePath) //nolint:gosec // path is built from the scratch dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "packager wrote no bundle"), "path", bundlePath)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read bundle"), "path", bundlePath)
	}
	out := &domain.BuildOutput{Bundle: bundle, CreatedAt: e.now()}
	if sourceMap, err := os.ReadFile(mapPath); err == nil { //nolint:gosec // path is built from the scratch dir
		out.SourceMap = sourceMap
	}
	return out, nil
}

func (e *Engine) environment(dev bool) []string {
	overrides := map[string]string{"NODE_ENV": "production"}
	if dev {
		overrides["NODE_ENV"] = "development"
	}
	maps.Copy(overrides, e.env)
	return resolveEnvironment(os.Environ(), overrides)
}

func (e *Engine) compilationError(err error, output []byte) error {
	cerr := &domain.CompilationError{Backend: e.id}
	summary := fmt.Sprintf("%s failed", strings.Join(e.command, " "))
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		summary = fmt.Sprintf("%s exited with code %d", strings.Join(e.command, " "), exitErr.ExitCode())
	}
	cerr.Diagnostics = append(cerr.Diagnostics, domain.Diagnostic{Text: summary})

	lines := strings.Split(strings.ReplaceAll(string(output), "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > maxDiagnostics {
		kept = kept[len(kept)-maxDiagnostics:]
	}
	for _, line := range kept {
		cerr.Diagnostics = append(cerr.Diagnostics, domain.Diagnostic{Text: line})
	}
	return cerr
}

// resolveEntry maps an entry name to a source file path relative to the project root.
func (e *Engine) resolveEntry(fp domain.Fingerprint) (string, error) {
	if file, ok := e.entries[fp.Entry]; ok {
		return file, nil
	}

	candidates := []string{fp.Entry}
	for _, ext := range entryExtensions {
		candidates = append(candidates, fp.Entry+"."+fp.Platform+ext)
	}
	for _, ext := range entryExtensions {
		candidates = append(candidates, fp.Entry+ext)
	}
	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(e.root, c))
		if err == nil && !info.IsDir() {
			return c, nil
		}
	}
	err := zerr.With(zerr.Wrap(domain.ErrEntryNotFound, "no source file for entry"), "entry", fp.Entry)
	return "", zerr.With(err, "root", e.root)
}

var _ ports.Engine = (*Engine)(nil)
