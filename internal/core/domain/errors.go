package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrConfigNotFound is returned when the bundler configuration file does not exist.
	ErrConfigNotFound = zerr.New("Must specify webpackConfigPath or create ./" + DefaultConfigFileName)

	// ErrConfigReadFailed is returned when the bundler configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read bundler configuration")

	// ErrConfigParseFailed is returned when the bundler configuration file is malformed.
	ErrConfigParseFailed = zerr.New("failed to parse bundler configuration")

	// ErrConfigInvalid is returned when the bundler configuration is well-formed but not usable.
	ErrConfigInvalid = zerr.New("invalid bundler configuration")

	// ErrUnknownBackend is returned when a platform is mapped to a backend that does not exist.
	ErrUnknownBackend = zerr.New("unknown backend, expected 'web' or 'native'")

	// ErrUnknownNativeEngine is returned when the native engine kind is not supported.
	ErrUnknownNativeEngine = zerr.New("unknown native engine, expected 'packager' or 'esbuild'")

	// ErrStartupFailure is returned when a backend or the public listener fails to start.
	ErrStartupFailure = zerr.New("server failed to start")

	// ErrServerStopping is returned when Start is called while the server is shutting down.
	ErrServerStopping = zerr.New("server is stopping")

	// ErrBackendStartFailed is returned when a backend handle cannot reach the ready state.
	ErrBackendStartFailed = zerr.New("backend failed to start")

	// ErrListenFailed is returned when a listener cannot be bound.
	ErrListenFailed = zerr.New("failed to bind listener")

	// ErrBackendUnavailable is returned when a compilation is requested from a backend that is not ready.
	ErrBackendUnavailable = zerr.New("backend unavailable")

	// ErrCompilation is matched by every CompilationError.
	ErrCompilation = zerr.New("compilation failed")

	// ErrArtifactMissing is returned when a compilation succeeded without producing the requested artifact.
	ErrArtifactMissing = zerr.New("compilation produced no such artifact")

	// ErrEntryNotFound is returned when the entry module cannot be resolved to a source file.
	ErrEntryNotFound = zerr.New("entry module not found")

	// ErrEngineNotFound is returned when the native packager command cannot be located.
	ErrEngineNotFound = zerr.New("packager command not found")

	// ErrUnknownArtifactPath is returned when a request path does not name a bundle or source map.
	ErrUnknownArtifactPath = zerr.New("unknown artifact path")

	// ErrUnknownEntry is returned when a request names an entry other than the configured one.
	ErrUnknownEntry = zerr.New("unknown entry")

	// ErrUnknownPlatform is returned when a request names a platform no backend serves.
	ErrUnknownPlatform = zerr.New("unknown platform")

	// ErrInvalidQuery is returned when a query parameter cannot be parsed.
	ErrInvalidQuery = zerr.New("invalid query parameter")

	// ErrFetchFailed is returned when an artifact cannot be retrieved from the running server.
	ErrFetchFailed = zerr.New("failed to fetch artifact")

	// ErrWriteFailed is returned when an artifact cannot be written to disk.
	ErrWriteFailed = zerr.New("failed to write artifact")
)

// Diagnostic is a single message reported by a compilation engine.
type Diagnostic struct {
	Text   string `json:"text"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// String formats the diagnostic as file:line:column: text.
func (d Diagnostic) String() string {
	if d.File == "" {
		return d.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Text)
}

// CompilationError carries the diagnostics of a failed compilation.
type CompilationError struct {
	Backend     BackendID
	Diagnostics []Diagnostic
}

func (e *CompilationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCompilation.Error())
	if e.Backend != "" {
		b.WriteString(" (" + string(e.Backend) + ")")
	}
	for _, d := range e.Diagnostics {
		b.WriteString("\n")
		b.WriteString(d.String())
	}
	return b.String()
}

// Is reports whether target is ErrCompilation.
func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilation
}
