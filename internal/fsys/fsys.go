// Package fsys defines the filesystem capability consumed by the palette:
// one-shot reads with a distinguished not-found error, plus directory and
// text-file subscriptions that each return a Disposer.
//
// The OS implementation is backed by fsnotify. Tests use the in-memory
// implementation in fsystest, which queues notifications until flushed so
// that interleavings can be driven deterministically.
package fsys

import (
	"context"
	"errors"
)

// ErrNotFound is returned (wrapped) when a read or watch targets a path that
// does not exist. It is an expected condition, not a failure.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err signals a missing path.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// EntryType classifies a directory entry.
type EntryType int

const (
	EntryFile EntryType = iota
	EntryDir
	EntryOther
)

// String returns the lower-case name of the entry type.
func (t EntryType) String() string {
	switch t {
	case EntryFile:
		return "file"
	case EntryDir:
		return "dir"
	default:
		return "other"
	}
}

// DirEntry is one direct child of a watched directory.
type DirEntry struct {
	Name string
	Type EntryType
}

// Disposer cancels a subscription. Dispose is idempotent and must not be
// called from the subscription's own callbacks.
type Disposer interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposer.
type DisposeFunc func()

// Dispose calls f.
func (f DisposeFunc) Dispose() { f() }

// TextHandlers receives the lifecycle of a watched text file. Nil handlers
// are skipped.
type TextHandlers struct {
	OnReady  func(content string) // initial content
	OnChange func(content string) // every later content change
	OnError  func(err error)      // ErrNotFound when the file disappears
}

// Ready calls OnReady if set.
func (h TextHandlers) Ready(content string) {
	if h.OnReady != nil {
		h.OnReady(content)
	}
}

// Change calls OnChange if set.
func (h TextHandlers) Change(content string) {
	if h.OnChange != nil {
		h.OnChange(content)
	}
}

// Fail calls OnError if set.
func (h TextHandlers) Fail(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

// Reader performs one-shot reads relative to the capability's root.
type Reader interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Watcher provides change subscriptions relative to the capability's root.
type Watcher interface {
	// WatchDir reports the full listing of dir's direct children, once on
	// subscription and again after every change.
	WatchDir(dir string, onChange func([]DirEntry)) (Disposer, error)

	// WatchTextFile reports the file's initial content through OnReady (or
	// ErrNotFound through OnError), then every content change.
	WatchTextFile(name string, h TextHandlers) (Disposer, error)
}

// FS is the full capability.
type FS interface {
	Reader
	Watcher
}
