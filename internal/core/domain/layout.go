package domain

import "path/filepath"

const (
	// StateDirName is the name of the per-project working directory.
	StateDirName = ".rnws"

	// PackagerDirName is the name of the native packager scratch directory.
	PackagerDirName = "packager"

	// DefaultConfigFileName is the name of the bundler configuration file looked up by default.
	DefaultConfigFileName = "rnws.config.yaml"

	// SourceMapSuffix is appended to a bundle path to name its source map.
	SourceMapSuffix = ".map"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStatePath returns the per-project working directory under root.
func DefaultStatePath(root string) string {
	return filepath.Join(root, StateDirName)
}

// DefaultPackagerPath returns the native packager scratch directory under root.
// It joins .rnws and packager.
func DefaultPackagerPath(root string) string {
	return filepath.Join(root, StateDirName, PackagerDirName)
}

// SourceMapPath returns the path the source map of bundlePath is written to.
func SourceMapPath(bundlePath string) string {
	return bundlePath + SourceMapSuffix
}
