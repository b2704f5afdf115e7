package fsys

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOS_ReadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yarn.lock"), []byte("# lock"), 0644))

	o := NewOS(dir)

	data, err := o.ReadFile(context.Background(), "yarn.lock")
	require.NoError(t, err)
	assert.Equal(t, "# lock", string(data))

	_, err = o.ReadFile(context.Background(), "bun.lockb")
	assert.True(t, IsNotFound(err), "missing file should be ErrNotFound, got %v", err)
}

func TestOS_ReadFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOS(t.TempDir()).ReadFile(ctx, "package.json")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsNotFound(err))
}

func TestOS_WatchDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0755))

	var mu sync.Mutex
	var latest []DirEntry
	d, err := NewOS(dir).WatchDir(".", func(entries []DirEntry) {
		mu.Lock()
		defer mu.Unlock()
		latest = entries
	})
	require.NoError(t, err)
	defer d.Dispose()

	has := func(name string, typ EntryType) bool {
		mu.Lock()
		defer mu.Unlock()
		return slices.Contains(latest, DirEntry{Name: name, Type: typ})
	}

	// Initial listing arrives before WatchDir returns.
	assert.True(t, has("src", EntryDir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0644))
	assert.Eventually(t, func() bool { return has("package.json", EntryFile) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, "package.json")))
	assert.Eventually(t, func() bool { return !has("package.json", EntryFile) }, 2*time.Second, 10*time.Millisecond)
}

func TestOS_WatchDir_Missing(t *testing.T) {
	_, err := NewOS(t.TempDir()).WatchDir("nope", func([]DirEntry) {})
	assert.True(t, IsNotFound(err))
}

func TestOS_WatchTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"a"}`), 0644))

	var mu sync.Mutex
	var ready, changed string
	var gone bool
	d, err := NewOS(dir).WatchTextFile("package.json", TextHandlers{
		OnReady: func(c string) {
			mu.Lock()
			defer mu.Unlock()
			ready = c
		},
		OnChange: func(c string) {
			mu.Lock()
			defer mu.Unlock()
			changed = c
		},
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			gone = IsNotFound(err)
		},
	})
	require.NoError(t, err)
	defer d.Dispose()

	mu.Lock()
	assert.Equal(t, `{"name":"a"}`, ready)
	mu.Unlock()

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"b"}`), 0644))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return changed == `{"name":"b"}`
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gone
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOS_WatchTextFile_MissingReportsNotFound(t *testing.T) {
	var got error
	d, err := NewOS(t.TempDir()).WatchTextFile("package.json", TextHandlers{
		OnError: func(err error) { got = err },
	})
	require.NoError(t, err)
	defer d.Dispose()

	assert.True(t, IsNotFound(got))
}

func TestDispose_Idempotent(t *testing.T) {
	d, err := NewOS(t.TempDir()).WatchDir(".", func([]DirEntry) {})
	require.NoError(t, err)

	d.Dispose()
	d.Dispose()
}
