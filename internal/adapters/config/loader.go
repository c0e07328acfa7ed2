// Package config loads the bundler configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for YAML and JSON-with-comments files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads and validates the bundler configuration at path.
func (l *Loader) Load(path string) (*domain.BundlerConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Join(domain.ErrConfigReadFailed, zerr.With(err, "path", path))
	}

	//nolint:gosec // path is supplied by the user on the command line
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(domain.ErrConfigNotFound, zerr.With(err, "path", path))
		}
		return nil, errors.Join(domain.ErrConfigReadFailed, zerr.With(err, "path", path))
	}

	var doc Document
	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".json", ".jsonc":
		err = decodeJSON(data, &doc)
	case ".js", ".cjs", ".mjs":
		l.Logger.Warn(fmt.Sprintf("%s is a JavaScript module and is not evaluated; using default bundler settings", path))
	default:
		err = decodeYAML(data, &doc)
	}
	if err != nil {
		return nil, errors.Join(domain.ErrConfigParseFailed, zerr.With(err, "path", path))
	}

	cfg, err := build(abs, &doc)
	if err != nil {
		return nil, errors.Join(domain.ErrConfigInvalid, zerr.With(err, "path", path))
	}
	return cfg, nil
}

func decodeYAML(data []byte, doc *Document) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSON(data []byte, doc *Document) error {
	stripped := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(stripped)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.DisallowUnknownFields()
	return dec.Decode(doc)
}

func build(path string, doc *Document) (*domain.BundlerConfig, error) {
	root := doc.Root
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(path), root)
	}
	root = filepath.Clean(root)

	cfg := &domain.BundlerConfig{
		Path:    path,
		Root:    root,
		Entries: doc.Entries,
		Web: domain.WebOptions{
			Define:            doc.Web.Define,
			External:          doc.Web.External,
			Loader:            doc.Web.Loader,
			ResolveExtensions: doc.Web.ResolveExtensions,
			Target:            doc.Web.Target,
			JSX:               doc.Web.JSX,
		},
		Native: domain.NativeOptions{
			Engine:  domain.NativeEngineKind(doc.Native.Engine),
			Command: doc.Native.Command,
			Env:     doc.Native.Env,
		},
	}

	for name, file := range doc.Entries {
		if strings.TrimSpace(file) == "" {
			return nil, zerr.With(zerr.New("entry has no source file"), "entry", name)
		}
	}

	if len(doc.Platforms) == 0 {
		cfg.Platforms = domain.DefaultPlatforms()
	} else {
		cfg.Platforms = make(map[string]domain.BackendID, len(doc.Platforms))
		for platform, backend := range doc.Platforms {
			id := domain.BackendID(backend)
			if !id.Valid() {
				err := zerr.Wrap(domain.ErrUnknownBackend, "invalid platform mapping")
				return nil, zerr.With(zerr.With(err, "platform", platform), "backend", backend)
			}
			cfg.Platforms[platform] = id
		}
	}

	switch cfg.Native.Engine {
	case "":
		cfg.Native.Engine = domain.NativeEnginePackager
	case domain.NativeEnginePackager, domain.NativeEngineEsbuild:
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownNativeEngine, "invalid native engine"), "engine", doc.Native.Engine)
	}
	if len(cfg.Native.Command) == 0 {
		cfg.Native.Command = domain.DefaultNativeCommand()
	}

	return cfg, nil
}
