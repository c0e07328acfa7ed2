package esbuild_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rnws/internal/adapters/esbuild"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func testConfig(t *testing.T, root string) domain.Config {
	t.Helper()
	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	return domain.Config{
		Bundler: domain.BundlerConfig{
			Root:      abs,
			Platforms: domain.DefaultPlatforms(),
			Web: domain.WebOptions{
				Define: map[string]string{"API_URL": `"https://example.test"`},
			},
		},
	}
}

func newEngine(t *testing.T, id domain.BackendID, cfg domain.Config) *esbuild.Engine {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	e, err := esbuild.New(id, cfg, log)
	require.NoError(t, err)
	require.NoError(t, e.Start(t.Context()))
	return e
}

func TestCompile_DevBundle(t *testing.T) {
	t.Parallel()
	e := newEngine(t, domain.BackendWeb, testConfig(t, "testdata/app"))

	out, err := e.Compile(t.Context(), domain.Fingerprint{Entry: "index", Platform: "web", Dev: true})
	require.NoError(t, err)

	assert.Contains(t, string(out.Bundle), "hello web")
	assert.Contains(t, string(out.Bundle), "dev mode")
	assert.Contains(t, string(out.Bundle), "https://example.test")
	assert.NotContains(t, string(out.Bundle), "hello native")
	require.NotNil(t, out.SourceMap)
	assert.Contains(t, string(out.SourceMap), `"sources"`)
	assert.False(t, out.CreatedAt.IsZero())
}

func TestCompile_ProductionStripsDevBranches(t *testing.T) {
	t.Parallel()
	e := newEngine(t, domain.BackendWeb, testConfig(t, "testdata/app"))

	dev, err := e.Compile(t.Context(), domain.Fingerprint{Entry: "index", Platform: "web", Dev: true})
	require.NoError(t, err)
	prod, err := e.Compile(t.Context(), domain.Fingerprint{Entry: "index", Platform: "web", Minify: true})
	require.NoError(t, err)

	assert.NotContains(t, string(prod.Bundle), "dev mode")
	assert.Less(t, len(prod.Bundle), len(dev.Bundle))
}

func TestCompile_NativePlatformResolution(t *testing.T) {
	t.Parallel()
	e := newEngine(t, domain.BackendNative, testConfig(t, "testdata/app"))

	out, err := e.Compile(t.Context(), domain.Fingerprint{Entry: "index", Platform: "ios", Dev: true})
	require.NoError(t, err)
	assert.Contains(t, string(out.Bundle), "hello native")
	assert.NotContains(t, string(out.Bundle), "hello web")
}

func TestCompile_ConfiguredEntry(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, "testdata/app")
	cfg.Bundler.Entries = map[string]string{"index.ios": "src/greet.js"}
	e := newEngine(t, domain.BackendNative, cfg)

	out, err := e.Compile(t.Context(), domain.Fingerprint{Entry: "index.ios", Platform: "ios"})
	require.NoError(t, err)
	assert.Contains(t, string(out.Bundle), "hello native")
}

func TestCompile_MissingEntry(t *testing.T) {
	t.Parallel()
	e := newEngine(t, domain.BackendWeb, testConfig(t, "testdata/app"))

	_, err := e.Compile(t.Context(), domain.Fingerprint{Entry: "nope", Platform: "web"})
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestCompile_SyntaxErrorReportsDiagnostics(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.js"), []byte("const = ;\n"), domain.FilePerm))
	e := newEngine(t, domain.BackendWeb, testConfig(t, root))

	_, err := e.Compile(t.Context(), domain.Fingerprint{Entry: "index", Platform: "web", Dev: true})
	require.ErrorIs(t, err, domain.ErrCompilation)

	var cerr *domain.CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.BackendWeb, cerr.Backend)
	require.NotEmpty(t, cerr.Diagnostics)
	assert.Equal(t, "index.js", cerr.Diagnostics[0].File)
	assert.Equal(t, 1, cerr.Diagnostics[0].Line)
}

func TestCompile_CanceledContext(t *testing.T) {
	t.Parallel()
	e := newEngine(t, domain.BackendWeb, testConfig(t, "testdata/app"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := e.Compile(ctx, domain.Fingerprint{Entry: "index", Platform: "web"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_RejectsUnsupportedOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		web  domain.WebOptions
	}{
		{name: "target", web: domain.WebOptions{Target: "es1999"}},
		{name: "jsx", web: domain.WebOptions{JSX: "classic-ish"}},
		{name: "loader", web: domain.WebOptions{Loader: map[string]string{".png": "image"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := domain.Config{Bundler: domain.BundlerConfig{Web: tt.web}}
			_, err := esbuild.New(domain.BackendWeb, cfg, mocks.NewMockLogger(gomock.NewController(t)))
			require.ErrorIs(t, err, domain.ErrConfigInvalid)
		})
	}
}

func TestStart_MissingRoot(t *testing.T) {
	t.Parallel()
	cfg := domain.Config{Bundler: domain.BundlerConfig{Root: filepath.Join(t.TempDir(), "missing")}}
	e, err := esbuild.New(domain.BackendWeb, cfg, mocks.NewMockLogger(gomock.NewController(t)))
	require.NoError(t, err)

	require.Error(t, e.Start(t.Context()))
	require.NoError(t, e.Stop(t.Context()))
}
