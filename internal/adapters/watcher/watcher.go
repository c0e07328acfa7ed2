// Package watcher reports source changes below the project root.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultWindow is the debounce window used by the Graft node.
const DefaultWindow = 50 * time.Millisecond

// skippedDirectories are never watched and never reported.
var skippedDirectories = map[string]bool{
	".git":              true,
	".jj":               true,
	"node_modules":      true,
	domain.StateDirName: true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify. Events are debounced
// before they are yielded.
type Watcher struct {
	logger ports.Logger
	window time.Duration

	mu      sync.Mutex
	current *session
}

// session is one Start/Stop cycle of a Watcher.
type session struct {
	logger    ports.Logger
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	root      string
	events    chan ports.WatchEvent
	done      chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewWatcher creates a watcher that coalesces events arriving within window.
func NewWatcher(logger ports.Logger, window time.Duration) *Watcher {
	return &Watcher{logger: logger, window: window}
}

// Start begins watching root recursively. A stopped watcher may be started again.
func (w *Watcher) Start(ctx context.Context, root string) error {
	if _, err := os.Stat(root); err != nil {
		return zerr.With(zerr.Wrap(err, "cannot watch root"), "root", root)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}

	for dir := range watchRecursively(root) {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
		}
	}

	s := &session{
		logger:    w.logger,
		fsWatcher: fsWatcher,
		root:      root,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		done:      make(chan struct{}),
	}
	s.debouncer = NewDebouncer(w.window, s.emit)

	w.mu.Lock()
	w.current = s
	w.mu.Unlock()

	go s.processEvents(ctx)
	return nil
}

// Stop closes the underlying watcher. Events stops yielding once pending sends unwind.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	s := w.current
	w.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.fsWatcher.Close()
}

// Events returns an iterator over debounced file system events of the current session.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	w.mu.Lock()
	s := w.current
	w.mu.Unlock()
	return func(yield func(ports.WatchEvent) bool) {
		if s == nil {
			return
		}
		for event := range s.events {
			if !yield(event) {
				return
			}
		}
	}
}

// emit delivers a debounced batch unless the session has shut down.
func (s *session) emit(batch []ports.WatchEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	for _, event := range batch {
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}

func (s *session) shutdown() {
	s.debouncer.Stop()
	close(s.done)

	s.mu.Lock()
	s.closed = true
	close(s.events)
	s.mu.Unlock()
}

// processEvents converts raw fsnotify events and feeds them to the debouncer.
func (s *session) processEvents(ctx context.Context) {
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			_ = s.fsWatcher.Close()
			return
		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := s.convertEvent(event)
			if !ok {
				continue
			}
			s.debouncer.Add(watchEvent)

			if watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					for dir := range watchRecursively(event.Name) {
						_ = s.fsWatcher.Add(dir)
					}
				}
			}

		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
		}
	}
}

// convertEvent maps an fsnotify event to a ports.WatchEvent. Events below
// skipped directories and chmod-only events are dropped.
func (s *session) convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	if s.skipped(event.Name) {
		return ports.WatchEvent{}, false
	}

	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}

func (s *session) skipped(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	for part := range strings.SplitSeq(filepath.ToSlash(rel), "/") {
		if skippedDirectories[part] {
			return true
		}
	}
	return false
}

// watchRecursively walks the directory tree and yields every directory to watch.
func watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skippedDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
