package domain

import "time"

const (
	// DefaultHostname is the hostname the public listener binds to.
	DefaultHostname = "localhost"
	// DefaultPort is the public listener port.
	DefaultPort = 8080
	// DefaultPackagerPort is the native backend port.
	DefaultPackagerPort = 8081
	// DefaultWebpackPort is the web backend port.
	DefaultWebpackPort = 8082
	// DefaultEntry is the entry module compiled when none is given.
	DefaultEntry = "index.ios"
	// DefaultPlatform is the platform the bundle command extracts.
	DefaultPlatform = "ios"
	// DefaultBundlePath is where the bundle command writes the bundle.
	DefaultBundlePath = "./ios/main.jsbundle"
	// DefaultShutdownGrace bounds how long Stop waits for in-flight requests.
	DefaultShutdownGrace = 5 * time.Second
)

// NativeEngineKind selects the engine behind the native backend.
type NativeEngineKind string

const (
	// NativeEnginePackager shells out to the React Native packager CLI.
	NativeEnginePackager NativeEngineKind = "packager"
	// NativeEngineEsbuild compiles native bundles in-process.
	NativeEngineEsbuild NativeEngineKind = "esbuild"
)

// WebOptions configures the in-process module bundler.
type WebOptions struct {
	Define            map[string]string
	External          []string
	Loader            map[string]string
	ResolveExtensions []string
	Target            string
	JSX               string
}

// NativeOptions configures the native packager backend.
type NativeOptions struct {
	Engine  NativeEngineKind
	Command []string
	Env     map[string]string
}

// BundlerConfig is the loaded bundler configuration file.
type BundlerConfig struct {
	// Path is the file the configuration was loaded from.
	Path string
	// Root is the absolute project root.
	Root string
	// Entries maps entry module names to source files relative to Root.
	Entries map[string]string
	// Platforms maps request platforms to the backend serving them.
	Platforms map[string]BackendID
	Web       WebOptions
	Native    NativeOptions
}

// DefaultPlatforms returns the platform routing used when the configuration names none.
func DefaultPlatforms() map[string]BackendID {
	return map[string]BackendID{
		"ios":     BackendNative,
		"android": BackendNative,
		"web":     BackendWeb,
	}
}

// DefaultNativeCommand returns the packager invocation used when the configuration names none.
func DefaultNativeCommand() []string {
	return []string{"npx", "react-native", "bundle"}
}

// Config is the immutable server configuration.
type Config struct {
	Hostname          string
	Port              int
	PackagerPort      int
	WebpackPort       int
	WebpackConfigPath string
	Bundler           BundlerConfig
	Entry             string
	ResetCache        bool
	Hot               bool
	Watch             bool
	ShutdownGrace     time.Duration
}

// BackendPort returns the port the given backend listens on.
func (c Config) BackendPort(id BackendID) int {
	if id == BackendNative {
		return c.PackagerPort
	}
	return c.WebpackPort
}

// BundleOptions configures a one-shot artifact extraction.
type BundleOptions struct {
	BundlePath string
	Optimize   bool
	Platform   string
	SourceMap  bool
}

// Fingerprint returns the fingerprint the extraction requests for the given kind.
func (o BundleOptions) Fingerprint(entry string, kind ArtifactKind) Fingerprint {
	return Fingerprint{
		Entry:    entry,
		Platform: o.Platform,
		Dev:      !o.Optimize,
		Minify:   o.Optimize,
		Kind:     kind,
	}
}

// PackagerStatus is the body of the liveness probe React Native clients poll.
const PackagerStatus = "packager-status:running"
