package app_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rnws/internal/adapters/fetch"
	"go.trai.ch/rnws/internal/adapters/fs"
	"go.trai.ch/rnws/internal/app"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/rnws/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fakeEngine struct {
	mu       sync.Mutex
	seen     []domain.Fingerprint
	fail     bool
	startErr error
	stops    atomic.Int32
}

func (e *fakeEngine) Start(context.Context) error { return e.startErr }

func (e *fakeEngine) Stop(context.Context) error {
	e.stops.Add(1)
	return nil
}

func (e *fakeEngine) Compile(_ context.Context, fp domain.Fingerprint) (*domain.BuildOutput, error) {
	e.mu.Lock()
	e.seen = append(e.seen, fp)
	e.mu.Unlock()
	if e.fail {
		return nil, &domain.CompilationError{
			Backend:     domain.BackendNative,
			Diagnostics: []domain.Diagnostic{{Text: "Unexpected token", File: "index.ios.js", Line: 1, Column: 6}},
		}
	}
	return &domain.BuildOutput{
		Bundle:    bundleFor(fp),
		SourceMap: []byte(`{"version":3,"file":"` + fp.Entry + `"}`),
	}, nil
}

func (e *fakeEngine) fingerprints() []domain.Fingerprint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Fingerprint(nil), e.seen...)
}

func bundleFor(fp domain.Fingerprint) []byte {
	return []byte("// " + fp.Entry + " " + fp.Platform +
		" dev=" + strconv.FormatBool(fp.Dev) + " minify=" + strconv.FormatBool(fp.Minify))
}

type engineFactory map[domain.BackendID]ports.Engine

func (f engineFactory) NewEngine(id domain.BackendID, _ domain.Config) (ports.Engine, error) {
	return f[id], nil
}

type harness struct {
	app    *app.App
	loader *mocks.MockConfigLoader
	web    *fakeEngine
	native *fakeEngine
}

func newHarness(t *testing.T, writer ports.ArtifactWriter) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	if writer == nil {
		writer = fs.NewWriter()
	}
	h := &harness{
		loader: mocks.NewMockConfigLoader(ctrl),
		web:    &fakeEngine{},
		native: &fakeEngine{},
	}
	factory := engineFactory{domain.BackendWeb: h.web, domain.BackendNative: h.native}
	h.app = app.New(h.loader, factory, log, nil, nil, nil, fetch.NewFetcher(nil), writer)
	return h
}

func (h *harness) expectConfig(path string) {
	h.loader.EXPECT().Load(path).Return(&domain.BundlerConfig{
		Path:      path,
		Root:      ".",
		Platforms: domain.DefaultPlatforms(),
	}, nil)
}

func common() app.CommonOptions {
	return app.CommonOptions{
		Hostname:          "127.0.0.1",
		WebpackConfigPath: "rnws.config.yaml",
		Entry:             "index.ios",
	}
}

func TestBundle_WritesBundleAndSourceMap(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.expectConfig("rnws.config.yaml")

	bundlePath := filepath.Join(t.TempDir(), "ios", "main.jsbundle")
	err := h.app.Bundle(t.Context(), app.BundleOptions{
		CommonOptions: common(),
		BundleOptions: domain.BundleOptions{
			BundlePath: bundlePath,
			Optimize:   true,
			Platform:   "ios",
			SourceMap:  true,
		},
	})
	require.NoError(t, err)

	want := domain.Fingerprint{Entry: "index.ios", Platform: "ios", Dev: false, Minify: true}
	got, err := os.ReadFile(bundlePath)
	require.NoError(t, err)
	assert.Equal(t, bundleFor(want), got)

	sourceMap, err := os.ReadFile(bundlePath + ".map")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3,"file":"index.ios"}`, string(sourceMap))

	assert.Len(t, h.native.fingerprints(), 1, "the map must come from the cached sibling")
	assert.Empty(t, h.web.fingerprints())
	assert.Equal(t, int32(1), h.native.stops.Load())
	assert.Equal(t, int32(1), h.web.stops.Load())
}

func TestBundle_WithoutSourceMap(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.expectConfig("rnws.config.yaml")

	bundlePath := filepath.Join(t.TempDir(), "main.jsbundle")
	err := h.app.Bundle(t.Context(), app.BundleOptions{
		CommonOptions: common(),
		BundleOptions: domain.BundleOptions{BundlePath: bundlePath, Platform: "ios"},
	})
	require.NoError(t, err)

	got, err := os.ReadFile(bundlePath)
	require.NoError(t, err)
	assert.Equal(t, bundleFor(domain.Fingerprint{Entry: "index.ios", Platform: "ios", Dev: true}), got)
	assert.NoFileExists(t, bundlePath+".map")
}

func TestBundle_RoundTripMatchesServedBytes(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.expectConfig("rnws.config.yaml")
	h.expectConfig("rnws.config.yaml")

	bundlePath := filepath.Join(t.TempDir(), "main.jsbundle")
	require.NoError(t, h.app.Bundle(t.Context(), app.BundleOptions{
		CommonOptions: common(),
		BundleOptions: domain.BundleOptions{BundlePath: bundlePath, Platform: "ios", Optimize: true},
	}))
	written, err := os.ReadFile(bundlePath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	served := make(chan []byte, 1)
	h.app.WithListeningHook(func(addr string) {
		defer cancel()
		resp, err := http.Get("http://" + addr + "/index.ios.bundle?platform=ios&dev=false&minify=true") //nolint:noctx // test
		if err != nil {
			served <- nil
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		served <- body
	})
	require.NoError(t, h.app.Start(ctx, app.StartOptions{CommonOptions: common()}))
	assert.Equal(t, written, <-served)
}

func TestBundle_ConfigErrorBeforeServer(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.loader.EXPECT().Load(domain.DefaultConfigFileName).Return(nil, domain.ErrConfigNotFound)

	opts := app.BundleOptions{BundleOptions: domain.BundleOptions{BundlePath: filepath.Join(t.TempDir(), "b")}}
	err := h.app.Bundle(t.Context(), opts)
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
	assert.Zero(t, h.native.stops.Load())
}

func TestBundle_CompileErrorStopsServer(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.expectConfig("rnws.config.yaml")
	h.native.fail = true

	bundlePath := filepath.Join(t.TempDir(), "main.jsbundle")
	err := h.app.Bundle(t.Context(), app.BundleOptions{
		CommonOptions: common(),
		BundleOptions: domain.BundleOptions{BundlePath: bundlePath, Platform: "ios"},
	})
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "Unexpected token")
	assert.NoFileExists(t, bundlePath)
	assert.Equal(t, int32(1), h.native.stops.Load())
	assert.Equal(t, int32(1), h.web.stops.Load())
}

func TestBundle_UnmappedPlatform(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.expectConfig("rnws.config.yaml")

	err := h.app.Bundle(t.Context(), app.BundleOptions{
		CommonOptions: common(),
		BundleOptions: domain.BundleOptions{BundlePath: filepath.Join(t.TempDir(), "b"), Platform: "tvos"},
	})
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "404")
}

func TestBundle_WriteErrorStopsServer(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArtifactWriter(ctrl)
	writer.EXPECT().Write("out/main.jsbundle", gomock.Any()).Return(domain.ErrWriteFailed)

	h := newHarness(t, writer)
	h.expectConfig("rnws.config.yaml")

	err := h.app.Bundle(t.Context(), app.BundleOptions{
		CommonOptions: common(),
		BundleOptions: domain.BundleOptions{BundlePath: "out/main.jsbundle", Platform: "ios", SourceMap: true},
	})
	require.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Equal(t, int32(1), h.native.stops.Load())
}

func TestBundle_StartupFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.expectConfig("rnws.config.yaml")
	h.native.startErr = errors.New("packager not installed")

	err := h.app.Bundle(t.Context(), app.BundleOptions{
		CommonOptions: common(),
		BundleOptions: domain.BundleOptions{BundlePath: filepath.Join(t.TempDir(), "b"), Platform: "ios"},
	})
	require.ErrorIs(t, err, domain.ErrStartupFailure)
	assert.Equal(t, int32(1), h.web.stops.Load(), "the web backend must be cleaned up")
}

func TestStart_ServesUntilCancelled(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.expectConfig("rnws.config.yaml")

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var status string
	h.app.WithListeningHook(func(addr string) {
		defer cancel()
		resp, err := http.Get("http://" + addr + "/status") //nolint:noctx // test
		if err != nil {
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		status = string(body)
	})

	done := make(chan error, 1)
	go func() { done <- h.app.Start(ctx, app.StartOptions{CommonOptions: common(), Hot: true}) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
	assert.Equal(t, domain.PackagerStatus, status)
	assert.Equal(t, int32(1), h.native.stops.Load())
	assert.Equal(t, int32(1), h.web.stops.Load())
}

func TestStart_ConfigError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.loader.EXPECT().Load("missing.yaml").Return(nil, errors.Join(domain.ErrConfigParseFailed, errors.New("bad yaml")))

	err := h.app.Start(t.Context(), app.StartOptions{CommonOptions: app.CommonOptions{WebpackConfigPath: "missing.yaml"}})
	require.ErrorIs(t, err, domain.ErrConfigParseFailed)
}

func TestSetJSONLogs_IgnoresPlainLoggers(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.app.SetJSONLogs(true)
}
