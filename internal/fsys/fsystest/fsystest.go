// Package fsystest provides an in-memory fsys.FS for tests.
//
// Notifications are queued rather than delivered inline. Tests mutate the
// filesystem, then call Flush to deliver everything queued so far in order,
// which makes races between subscriptions reproducible.
package fsystest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jpl-au/pkgpal/internal/fsys"
)

// FS is an in-memory filesystem rooted at ".".
type FS struct {
	// DeliverDisposed delivers events queued before a subscription was
	// disposed, mimicking OS callbacks that race with Dispose.
	DeliverDisposed bool

	mu     sync.Mutex
	files  map[string]string
	dirs   map[string]bool
	reads  map[string]int
	held   map[string]bool
	subs   []*sub
	queue  []event
	nextID int
}

type sub struct {
	id       int
	path     string
	onDir    func([]fsys.DirEntry)
	text     fsys.TextHandlers
	disposed bool
}

type event struct {
	sub  *sub
	fire func()
}

// Compile-time interface compliance.
var _ fsys.FS = (*FS)(nil)

// New returns an empty filesystem.
func New() *FS {
	return &FS{
		files: make(map[string]string),
		dirs:  make(map[string]bool),
		reads: make(map[string]int),
		held:  make(map[string]bool),
	}
}

// WriteFile creates or replaces a file and queues notifications.
func (f *FS) WriteFile(name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.files[name] = content
	for _, s := range f.subs {
		if s.onDir == nil && s.path == name && !s.disposed {
			f.enqueue(s, func() { s.text.Change(content) })
		}
	}
	f.queueListings()
}

// Mkdir creates a directory entry.
func (f *FS) Mkdir(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dirs[name] = true
	f.queueListings()
}

// Remove deletes a file or directory and queues notifications.
func (f *FS) Remove(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, isFile := f.files[name]
	delete(f.files, name)
	delete(f.dirs, name)
	if isFile {
		for _, s := range f.subs {
			if s.onDir == nil && s.path == name && !s.disposed {
				f.enqueue(s, func() { s.text.Fail(notFound(name)) })
			}
		}
	}
	f.queueListings()
}

// Flush delivers queued notifications, including any queued while
// flushing, and returns how many were delivered. Notifications for held
// files stay queued.
func (f *FS) Flush() int {
	n := 0
	for {
		f.mu.Lock()
		i := slices.IndexFunc(f.queue, func(ev event) bool { return !f.isHeld(ev.sub) })
		if i < 0 {
			f.mu.Unlock()
			return n
		}
		ev := f.queue[i]
		f.queue = slices.Delete(f.queue, i, i+1)
		skip := ev.sub.disposed && !f.DeliverDisposed
		f.mu.Unlock()

		if skip {
			continue
		}
		ev.fire()
		n++
	}
}

// Hold keeps text notifications for name queued until Release, modelling a
// slow read that completes after later directory changes.
func (f *FS) Hold(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held[name] = true
}

// Release lets held notifications for name be flushed.
func (f *FS) Release(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, name)
}

func (f *FS) isHeld(s *sub) bool {
	return s.onDir == nil && f.held[s.path]
}

// Pending returns the number of queued notifications.
func (f *FS) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Reads returns how many times name was read through ReadFile.
func (f *FS) Reads(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[name]
}

// Active returns the number of live subscriptions.
func (f *FS) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subs {
		if !s.disposed {
			n++
		}
	}
	return n
}

// ReadFile returns the file content or fsys.ErrNotFound.
func (f *FS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads[name]++
	content, ok := f.files[name]
	if !ok {
		return nil, notFound(name)
	}
	return []byte(content), nil
}

// WatchDir subscribes to the root listing. Only "." is supported.
func (f *FS) WatchDir(dir string, onChange func([]fsys.DirEntry)) (fsys.Disposer, error) {
	if dir != "." && dir != "" {
		return nil, fmt.Errorf("fsystest: only the root directory can be watched, got %q", dir)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.add(&sub{path: ".", onDir: onChange})
	entries := f.listing()
	f.enqueue(s, func() { onChange(entries) })
	return f.disposer(s), nil
}

// WatchTextFile subscribes to a file and queues its initial state.
func (f *FS) WatchTextFile(name string, h fsys.TextHandlers) (fsys.Disposer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.add(&sub{path: name, text: h})
	if content, ok := f.files[name]; ok {
		f.enqueue(s, func() { h.Ready(content) })
	} else {
		f.enqueue(s, func() { h.Fail(notFound(name)) })
	}
	return f.disposer(s), nil
}

func (f *FS) add(s *sub) *sub {
	f.nextID++
	s.id = f.nextID
	f.subs = append(f.subs, s)
	return s
}

func (f *FS) disposer(s *sub) fsys.Disposer {
	return fsys.DisposeFunc(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		s.disposed = true
	})
}

func (f *FS) enqueue(s *sub, fire func()) {
	f.queue = append(f.queue, event{sub: s, fire: fire})
}

// queueListings snapshots the listing now, so each notification carries
// the state at the time of the mutation.
func (f *FS) queueListings() {
	entries := f.listing()
	for _, s := range f.subs {
		if s.onDir != nil && !s.disposed {
			onDir := s.onDir
			f.enqueue(s, func() { onDir(entries) })
		}
	}
}

func (f *FS) listing() []fsys.DirEntry {
	seen := make(map[string]fsys.EntryType)
	for name := range f.files {
		top, rest, nested := strings.Cut(name, "/")
		if nested && rest != "" {
			seen[top] = fsys.EntryDir
			continue
		}
		seen[top] = fsys.EntryFile
	}
	for name := range f.dirs {
		top, _, _ := strings.Cut(name, "/")
		seen[top] = fsys.EntryDir
	}

	entries := make([]fsys.DirEntry, 0, len(seen))
	for name, typ := range seen {
		entries = append(entries, fsys.DirEntry{Name: name, Type: typ})
	}
	slices.SortFunc(entries, func(a, b fsys.DirEntry) int { return strings.Compare(a.Name, b.Name) })
	return entries
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", fsys.ErrNotFound, name)
}
