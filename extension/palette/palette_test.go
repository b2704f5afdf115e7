package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/pkgpal/internal/diff"
	"github.com/jpl-au/pkgpal/internal/manifest"
)

func snapshot(t *testing.T, content string) manifest.Snapshot {
	t.Helper()
	m, err := manifest.Parse(manifest.DefaultName, []byte(content))
	require.NoError(t, err)
	return manifest.Snapshot{Exists: true, Manifest: m}
}

func TestDescribe(t *testing.T) {
	prev := snapshot(t, "{\n  \"scripts\": {\"build\": \"tsc\"}\n}\n")
	next := snapshot(t, "{\n  \"scripts\": {\"build\": \"tsc\", \"dev\": \"vite\"}\n}\n")

	ev := describe(prev, next, true, "package.json")
	assert.True(t, ev.Exists)
	assert.Empty(t, ev.Error)
	assert.Equal(t, []diff.Change{{Section: "scripts", Op: diff.Added, Name: "dev", New: "vite"}}, ev.Changes)
	assert.Contains(t, ev.Diff, "--- package.json (before)\n+++ package.json\n")
}

func TestDescribe_Removed(t *testing.T) {
	prev := snapshot(t, `{"scripts": {"build": "tsc"}}`)
	next := prev
	next.Exists = false

	ev := describe(prev, next, false, "package.json")
	assert.False(t, ev.Exists)
	assert.Equal(t, []diff.Change{{Section: "scripts", Op: diff.Removed, Name: "build", Old: "tsc"}}, ev.Changes)
	assert.Empty(t, ev.Diff)
}

func TestDescribe_ParseError(t *testing.T) {
	prev := snapshot(t, `{"scripts": {"build": "tsc"}}`)
	_, perr := manifest.Parse(manifest.DefaultName, []byte(`{"scripts":`))
	require.Error(t, perr)
	next := prev
	next.Err = perr

	ev := describe(prev, next, false, "package.json")
	assert.Contains(t, ev.Error, "parse package.json")
	assert.NotNil(t, ev.Changes)
	assert.Empty(t, ev.Changes)
}
