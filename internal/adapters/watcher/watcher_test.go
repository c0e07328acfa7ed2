package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rnws/internal/adapters/watcher"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/rnws/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const testWindow = 20 * time.Millisecond

func startWatcher(t *testing.T, root string) (*watcher.Watcher, <-chan ports.WatchEvent) {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w := watcher.NewWatcher(log, testWindow)
	require.NoError(t, w.Start(t.Context(), root))

	out := make(chan ports.WatchEvent, 64)
	go func() {
		defer close(out)
		for ev := range w.Events() {
			out <- ev
		}
	}()
	t.Cleanup(func() { _ = w.Stop() })
	return w, out
}

func waitFor(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed before %s was reported", path)
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), domain.DirPerm))
	_, events := startWatcher(t, root)

	file := filepath.Join(root, "src", "app.js")
	require.NoError(t, os.WriteFile(file, []byte("export {};"), domain.FilePerm))

	ev := waitFor(t, events, file)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	_, events := startWatcher(t, root)

	dir := filepath.Join(root, "screens")
	require.NoError(t, os.Mkdir(dir, domain.DirPerm))
	waitFor(t, events, dir)

	file := filepath.Join(dir, "home.js")
	require.NoError(t, os.WriteFile(file, []byte("export {};"), domain.FilePerm))
	waitFor(t, events, file)
}

func TestWatcher_IgnoresSkippedDirectories(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for _, dir := range []string{"node_modules", domain.StateDirName} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), domain.DirPerm))
	}
	_, events := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep.js"), nil, domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.StateDirName, "out.js"), nil, domain.FilePerm))
	marker := filepath.Join(root, "marker.js")
	require.NoError(t, os.WriteFile(marker, nil, domain.FilePerm))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Path == marker {
				return
			}
			t.Fatalf("unexpected event for %s", ev.Path)
		case <-timeout:
			t.Fatal("marker event not reported")
		}
	}
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	w, events := startWatcher(t, root)

	require.NoError(t, w.Stop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range events {
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event stream did not end after Stop")
	}
}

func TestWatcher_ContextCancelEndsEvents(t *testing.T) {
	t.Parallel()
	log := mocks.NewMockLogger(gomock.NewController(t))
	w := watcher.NewWatcher(log, testWindow)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, w.Start(ctx, t.TempDir()))
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range w.Events() {
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event stream did not end after cancel")
	}
}

func TestWatcher_Restart(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	w := watcher.NewWatcher(log, testWindow)

	require.NoError(t, w.Stop(), "stopping a never started watcher is a no-op")

	require.NoError(t, w.Start(t.Context(), root))
	require.NoError(t, w.Stop())
	for range w.Events() {
	}

	require.NoError(t, w.Start(t.Context(), root))
	t.Cleanup(func() { _ = w.Stop() })

	file := filepath.Join(root, "again.js")
	received := make(chan struct{})
	go func() {
		for ev := range w.Events() {
			if ev.Path == file {
				close(received)
				return
			}
		}
	}()
	require.NoError(t, os.WriteFile(file, nil, domain.FilePerm))

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("restarted watcher did not report events")
	}
}

func TestWatcher_StartMissingRoot(t *testing.T) {
	t.Parallel()
	w := watcher.NewWatcher(mocks.NewMockLogger(gomock.NewController(t)), testWindow)
	err := w.Start(t.Context(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
