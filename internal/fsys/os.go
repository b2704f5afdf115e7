// os.go implements the filesystem capability on the host OS using fsnotify.
//
// Both subscription kinds watch a directory rather than the file itself.
// Editors commonly save by writing a temp file and renaming it over the
// original, which drops a file-level inotify watch; a directory watch keeps
// seeing the name come and go.

package fsys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// OS is the fsnotify-backed capability rooted at a project directory.
type OS struct {
	root string
}

// Compile-time interface compliance.
var _ FS = (*OS)(nil)

// NewOS returns a capability whose relative paths resolve against root.
func NewOS(root string) *OS {
	if root == "" {
		root = "."
	}
	return &OS{root: root}
}

func (o *OS) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.root, name)
}

// ReadFile reads name, mapping a missing file to ErrNotFound.
func (o *OS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(o.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// WatchDir delivers the initial listing synchronously before returning, so
// callers observe the current state as soon as the subscription exists.
func (o *OS) WatchDir(dir string, onChange func([]DirEntry)) (Disposer, error) {
	full := o.path(dir)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsys: create watcher: %w", err)
	}
	if err := w.Add(full); err != nil {
		w.Close() //nolint:errcheck // best-effort cleanup
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("fsys: watch %s: %w", dir, err)
	}

	entries, err := listDir(full)
	if err != nil {
		w.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	onChange(entries)

	return loop(w, func(ev fsnotify.Event) {
		// Permission changes do not alter the listing.
		if ev.Op == fsnotify.Chmod {
			return
		}
		entries, err := listDir(full)
		if err != nil {
			return
		}
		onChange(entries)
	}, nil), nil
}

// WatchTextFile delivers OnReady (or OnError) synchronously before
// returning. Consecutive identical contents are reported once.
func (o *OS) WatchTextFile(name string, h TextHandlers) (Disposer, error) {
	full := filepath.Clean(o.path(name))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsys: create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(full)); err != nil {
		w.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("fsys: watch %s: %w", name, err)
	}

	notFound := fmt.Errorf("%w: %s", ErrNotFound, name)

	var last string
	data, err := os.ReadFile(full)
	switch {
	case err == nil:
		last = string(data)
		h.Ready(last)
	case errors.Is(err, fs.ErrNotExist):
		h.Fail(notFound)
	default:
		h.Fail(err)
	}

	return loop(w, func(ev fsnotify.Event) {
		if filepath.Clean(ev.Name) != full {
			return
		}
		switch {
		case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
			data, err := os.ReadFile(full)
			if errors.Is(err, fs.ErrNotExist) {
				h.Fail(notFound)
				return
			}
			if err != nil {
				h.Fail(err)
				return
			}
			if string(data) == last {
				return
			}
			last = string(data)
			h.Change(last)
		case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
			if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
				last = ""
				h.Fail(notFound)
			}
		}
	}, h.Fail), nil
}

// loop drains w on its own goroutine until disposed. Dispose closes the
// fsnotify watcher and waits for the goroutine to exit, so no callback runs
// after Dispose returns.
func loop(w *fsnotify.Watcher, onEvent func(fsnotify.Event), onErr func(error)) Disposer {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				onEvent(ev)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onErr != nil {
					onErr(err)
				}
			}
		}
	}()

	var once sync.Once
	return DisposeFunc(func() {
		once.Do(func() {
			close(done)
			w.Close() //nolint:errcheck // nothing useful to do on close failure
			<-stopped
		})
	})
}

// listDir returns the direct children of dir. Symlinks are classified by
// their target.
func listDir(dir string) ([]DirEntry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("fsys: list %s: %w", dir, err)
	}

	entries := make([]DirEntry, 0, len(des))
	for _, de := range des {
		mode := de.Type()
		if mode&fs.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, de.Name())); err == nil {
				mode = info.Mode().Type()
			}
		}
		entries = append(entries, DirEntry{Name: de.Name(), Type: entryType(mode)})
	}
	return entries, nil
}

func entryType(mode fs.FileMode) EntryType {
	switch {
	case mode.IsRegular():
		return EntryFile
	case mode.IsDir():
		return EntryDir
	default:
		return EntryOther
	}
}
