package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change reported by a Watcher.
type WatchOp uint8

const (
	// OpCreate reports a new file or directory.
	OpCreate WatchOp = iota
	// OpWrite reports modified file contents.
	OpWrite
	// OpRemove reports a deleted file or directory.
	OpRemove
	// OpRename reports a moved file or directory.
	OpRename
)

// WatchEvent is a single change below the watched root.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher reports source changes below a project root.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively until ctx is done or Stop is called.
	Start(ctx context.Context, root string) error
	// Stop releases the watcher. Events stops yielding afterwards.
	Stop() error
	// Events yields changes in arrival order.
	Events() iter.Seq[WatchEvent]
}
