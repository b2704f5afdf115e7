package format

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/pkgpal/internal/command"
	"github.com/jpl-au/pkgpal/internal/diff"
	"github.com/jpl-au/pkgpal/internal/log"
	"github.com/jpl-au/pkgpal/internal/registry"
)

func sampleTree() *command.Tree {
	leaf := func(label, desc string) *command.Tree {
		return &command.Tree{Metadata: command.Metadata{Label: label, Description: desc}, Kind: command.Leaf}
	}
	return &command.Tree{
		Metadata: command.Metadata{Label: "JS", Description: "Javascript commands"},
		Kind:     command.Context,
		Children: []*command.Tree{
			{
				Metadata: command.Metadata{Label: "scripts"},
				Kind:     command.Context,
				Children: []*command.Tree{leaf("build", "tsc"), leaf("test", "vitest")},
			},
			{Metadata: command.Metadata{Label: "install"}, Kind: command.Context},
		},
	}
}

func TestTree_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, sampleTree(), false))

	want := strings.Join([]string{
		"JS/  Javascript commands",
		"├── scripts/",
		"│   ├── build  tsc",
		"│   └── test  vitest",
		"└── install/",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTree_Styled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, sampleTree(), true))

	out := buf.String()
	for _, s := range []string{"JS/", "scripts/", "build", "vitest", "install/"} {
		assert.Contains(t, out, s)
	}
}

func TestTree_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, nil, false))
	assert.Empty(t, buf.String())
}

func TestPackages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Packages(&buf, []registry.Package{
		{Name: "react", Version: "18.2.0", Description: "UI library"},
		{Name: "preact"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "NAME    VERSION  DESCRIPTION", lines[0])
	assert.Equal(t, "react   18.2.0   UI library", lines[1])
	assert.Equal(t, "preact  -", strings.TrimSpace(lines[2]))
}

func TestNodes(t *testing.T) {
	nodes := []*command.Node{
		command.NewContext(command.Metadata{Label: "scripts", Description: "run scripts"}, func(_ context.Context, _ command.Query) ([]*command.Node, error) {
			return nil, nil
		}),
		command.NewLeaf(command.Metadata{Label: "npm init", Description: "initialise"}, func(context.Context) error { return nil }),
	}

	var buf bytes.Buffer
	require.NoError(t, Nodes(&buf, nodes))
	assert.Equal(t, "> scripts   run scripts\n  npm init  initialise\n", buf.String())
}

func TestHistory(t *testing.T) {
	recs := []log.Record{
		{Start: time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local), Source: "palette:run", Action: "exec", Command: "npm run build", Success: true},
		{Start: time.Date(2026, 1, 2, 3, 4, 6, 0, time.Local), Source: "palette:run", Action: "exec", Target: "lint", Error: "exit status 1"},
	}

	var buf bytes.Buffer
	require.NoError(t, History(&buf, recs, false))

	out := buf.String()
	assert.Contains(t, out, "2026-01-02 03:04:05  ok  ")
	assert.Contains(t, out, "npm run build")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "exit status 1")
}

func TestChanges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Changes(&buf, []diff.Change{
		{Section: "scripts", Op: diff.Added, Name: "dev", New: "vite"},
		{Section: "dependencies", Op: diff.Removed, Name: "zod", Old: "^3.0.0"},
	}, false))
	assert.Equal(t, "+ scripts dev: vite\n- dependencies zod: ^3.0.0\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncate(strings.Repeat("é", 20), 10))
}
