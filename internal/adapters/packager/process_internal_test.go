package packager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rnws/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestResolveEnvironment(t *testing.T) {
	t.Parallel()

	sys := []string{"PATH=/usr/bin", "HOME=/home/dev", "SECRET_TOKEN=abc", "NODE_OPTIONS=--inspect", "malformed"}
	env := resolveEnvironment(sys, map[string]string{"NODE_ENV": "development", "HOME": "/override"})

	assert.ElementsMatch(t, []string{
		"PATH=/usr/bin",
		"HOME=/override",
		"NODE_OPTIONS=--inspect",
		"NODE_ENV=development",
	}, env)
}

func TestLookPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "tool")
	//nolint:gosec // test binary must be executable
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain"), []byte("x"), 0o600))

	got, err := lookPath("tool", []string{"PATH=/nonexistent" + string(os.PathListSeparator) + dir})
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = lookPath("plain", []string{"PATH=" + dir})
	require.Error(t, err)

	_, err = lookPath("tool", nil)
	require.Error(t, err)
}

func TestLogWriter_SplitsLines(t *testing.T) {
	t.Parallel()

	log := mocks.NewMockLogger(gomock.NewController(t))
	gomock.InOrder(
		log.EXPECT().Info("packager: first"),
		log.EXPECT().Info("packager: second"),
		log.EXPECT().Info("packager: partial"),
	)

	w := &logWriter{logger: log}
	_, err := w.Write([]byte("first\r\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\n\npartial"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}
