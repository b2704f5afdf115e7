// watcher.go keeps a Snapshot of the manifest current using two nested
// subscriptions: the project directory listing decides whether the manifest
// exists, and a text subscription on the manifest itself tracks its content.
//
// Writers (watch callbacks) serialise on mu and publish a fresh Snapshot
// value through an atomic pointer; readers never lock and never see a
// partially updated snapshot. Each inner subscription is tagged with a
// generation so callbacks from a disposed subscription are ignored.

package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/jpl-au/pkgpal/internal/fsys"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("manifest watcher closed")

// Snapshot is an immutable view of the manifest at one point in time.
//
// Manifest is only meaningful while Exists is true. When the file
// disappears, Exists goes false and the last parsed Manifest is left in
// place. Err holds the most recent parse failure and is cleared by the next
// successful parse.
type Snapshot struct {
	Exists   bool
	Manifest *Manifest
	Err      error
}

// Live returns the manifest while the file exists and nil otherwise; a
// removed file keeps its last Manifest in the snapshot.
func (s Snapshot) Live() *Manifest {
	if !s.Exists {
		return nil
	}
	return s.Manifest
}

// Source provides the current snapshot.
type Source interface {
	Snapshot() Snapshot
}

// Observer is notified after each snapshot change.
type Observer func(prev, next Snapshot)

// Watcher maintains the live Snapshot for one manifest file.
type Watcher struct {
	fs   fsys.Watcher
	dir  string
	name string

	snap atomic.Pointer[Snapshot]

	mu       sync.Mutex
	outer    fsys.Disposer
	inner    fsys.Disposer
	tracking bool
	gen      uint64
	closed   bool

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// Compile-time interface compliance.
var _ Source = (*Watcher)(nil)

// NewWatcher returns a watcher for dir/name. Call Start to subscribe.
func NewWatcher(fs fsys.Watcher, dir, name string) *Watcher {
	if name == "" {
		name = DefaultName
	}
	if dir == "" {
		dir = "."
	}
	w := &Watcher{
		fs:        fs,
		dir:       dir,
		name:      name,
		observers: make(map[int]Observer),
	}
	w.snap.Store(&Snapshot{})
	return w
}

// Name returns the manifest file name.
func (w *Watcher) Name() string { return w.name }

// Snapshot returns the current snapshot without locking.
func (w *Watcher) Snapshot() Snapshot {
	return *w.snap.Load()
}

// Start subscribes to the directory listing.
func (w *Watcher) Start() error {
	d, err := w.fs.WatchDir(w.dir, w.onListing)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		d.Dispose()
		return ErrClosed
	}
	w.outer = d
	w.mu.Unlock()
	return nil
}

// Close disposes the inner and outer subscriptions together. Safe to call
// more than once.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.gen++
	inner, outer := w.inner, w.outer
	w.inner, w.outer, w.tracking = nil, nil, false
	w.mu.Unlock()

	if inner != nil {
		inner.Dispose()
	}
	if outer != nil {
		outer.Dispose()
	}
}

// Subscribe registers fn for snapshot changes and returns a function that
// removes it. fn runs on the goroutine that delivered the change.
func (w *Watcher) Subscribe(fn Observer) (cancel func()) {
	w.obsMu.Lock()
	defer w.obsMu.Unlock()

	id := w.nextObs
	w.nextObs++
	w.observers[id] = fn
	return func() {
		w.obsMu.Lock()
		defer w.obsMu.Unlock()
		delete(w.observers, id)
	}
}

func (w *Watcher) path() string {
	return filepath.Join(w.dir, w.name)
}

func (w *Watcher) onListing(entries []fsys.DirEntry) {
	present := slices.ContainsFunc(entries, func(e fsys.DirEntry) bool {
		return e.Name == w.name && e.Type == fsys.EntryFile
	})
	if present {
		w.track()
		return
	}
	w.untrack()
}

// track begins the inner subscription unless one is already active. The
// subscription is created outside mu because implementations may deliver
// the initial read synchronously.
func (w *Watcher) track() {
	w.mu.Lock()
	if w.tracking || w.closed {
		w.mu.Unlock()
		return
	}
	w.tracking = true
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	d, err := w.fs.WatchTextFile(w.path(), fsys.TextHandlers{
		OnReady:  func(content string) { w.load(gen, content) },
		OnChange: func(content string) { w.load(gen, content) },
		OnError:  func(err error) { w.fail(gen, err) },
	})

	w.mu.Lock()
	if err != nil {
		// Leave untracked so the next listing retries.
		if w.gen == gen {
			w.tracking = false
		}
		w.mu.Unlock()
		return
	}
	if w.gen != gen || w.closed {
		w.mu.Unlock()
		d.Dispose()
		return
	}
	w.inner = d
	w.mu.Unlock()
}

// untrack disposes the inner subscription and clears Exists.
func (w *Watcher) untrack() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	d := w.inner
	if w.tracking {
		w.gen++
	}
	w.inner, w.tracking = nil, false
	prev, next := w.swap(func(s Snapshot) Snapshot {
		s.Exists = false
		return s
	})
	w.mu.Unlock()

	if d != nil {
		d.Dispose()
	}
	w.notify(prev, next)
}

// load parses content and replaces the stored manifest. A parse failure
// keeps the previous manifest and records the error.
func (w *Watcher) load(gen uint64, content string) {
	m, err := Parse(w.name, []byte(content))

	w.mu.Lock()
	if gen != w.gen || w.closed {
		w.mu.Unlock()
		return
	}
	prev, next := w.swap(func(s Snapshot) Snapshot {
		if err != nil {
			s.Exists = true
			s.Err = err
			return s
		}
		return Snapshot{Exists: true, Manifest: m}
	})
	w.mu.Unlock()

	w.notify(prev, next)
}

// fail handles inner subscription errors. Only not-found changes state;
// the stale manifest is kept.
func (w *Watcher) fail(gen uint64, err error) {
	if !fsys.IsNotFound(err) {
		return
	}

	w.mu.Lock()
	if gen != w.gen || w.closed {
		w.mu.Unlock()
		return
	}
	prev, next := w.swap(func(s Snapshot) Snapshot {
		s.Exists = false
		return s
	})
	w.mu.Unlock()

	w.notify(prev, next)
}

// swap publishes fn(current). Caller holds mu.
func (w *Watcher) swap(fn func(Snapshot) Snapshot) (prev, next Snapshot) {
	prev = *w.snap.Load()
	next = fn(prev)
	w.snap.Store(&next)
	return prev, next
}

func (w *Watcher) notify(prev, next Snapshot) {
	if prev.Exists == next.Exists && prev.Manifest == next.Manifest && prev.Err == next.Err {
		return
	}

	w.obsMu.Lock()
	obs := make([]Observer, 0, len(w.observers))
	for _, fn := range w.observers {
		obs = append(obs, fn)
	}
	w.obsMu.Unlock()

	for _, fn := range obs {
		fn(prev, next)
	}
}
