// Package fs writes extracted artifacts to disk.
package fs

import (
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/zerr"
)

// Writer implements ports.ArtifactWriter. Files are replaced atomically so a
// failed write never leaves a truncated bundle behind.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write stores data at path, creating parent directories as needed.
func (w *Writer) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return writeFailed(err, path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return writeFailed(err, path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return writeFailed(err, path)
	}
	if err := tmp.Close(); err != nil {
		return writeFailed(err, path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return writeFailed(err, path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return writeFailed(err, path)
	}
	return nil
}

func writeFailed(err error, path string) error {
	return errors.Join(domain.ErrWriteFailed, zerr.With(err, "path", path))
}
