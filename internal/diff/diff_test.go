package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/pkgpal/internal/manifest"
)

func TestCompute(t *testing.T) {
	old := "{\n  \"scripts\": {\n    \"build\": \"tsc\"\n  }\n}\n"
	next := "{\n  \"scripts\": {\n    \"build\": \"tsc -b\"\n  }\n}\n"

	r := Compute(old, next, "package.json (before)", "package.json")
	assert.False(t, r.Empty())
	assert.Contains(t, r.Diff, "-     \"build\": \"tsc\"\n")
	assert.Contains(t, r.Diff, "+     \"build\": \"tsc -b\"\n")

	out := r.Format(false)
	assert.True(t, strings.HasPrefix(out, "--- package.json (before)\n+++ package.json\n"))
}

func TestCompute_Identical(t *testing.T) {
	r := Compute("{}\n", "{}\n", "a", "b")
	assert.True(t, r.Empty())
}

func TestFormat_CollapsesLongContext(t *testing.T) {
	var lines []string
	for i := range 20 {
		lines = append(lines, strings.Repeat("x", i+1))
	}
	old := strings.Join(lines, "\n") + "\n"
	next := old + "tail\n"

	r := Compute(old, next, "a", "b")
	assert.Contains(t, r.Diff, "  ...\n")
	assert.Contains(t, r.Diff, "+ tail\n")
}

func TestColourise(t *testing.T) {
	got := Colourise("- gone\n+ new\n  same\n")
	assert.Equal(t, "\033[31m- gone\033[0m\n\033[32m+ new\033[0m\n  same\n", got)
}

func parse(t *testing.T, s string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse("package.json", []byte(s))
	require.NoError(t, err)
	return m
}

func TestChanges(t *testing.T) {
	prev := parse(t, `{
		"scripts": {"build": "tsc", "lint": "eslint ."},
		"dependencies": {"zod": "^3.0.0", "lodash": "^4.0.0"}
	}`)
	next := parse(t, `{
		"scripts": {"build": "tsc -b", "test": "vitest"},
		"dependencies": {"zod": "^3.0.0", "axios": "^1.6.0"}
	}`)

	got := Changes(prev, next)
	assert.Equal(t, []Change{
		{Section: "scripts", Op: Changed, Name: "build", Old: "tsc", New: "tsc -b"},
		{Section: "scripts", Op: Removed, Name: "lint", Old: "eslint ."},
		{Section: "scripts", Op: Added, Name: "test", New: "vitest"},
		{Section: "dependencies", Op: Removed, Name: "lodash", Old: "^4.0.0"},
		{Section: "dependencies", Op: Added, Name: "axios", New: "^1.6.0"},
	}, got)

	assert.Equal(t, "~ scripts build: tsc -> tsc -b", got[0].String())
	assert.Equal(t, "- scripts lint: eslint .", got[1].String())
	assert.Equal(t, "+ dependencies axios: ^1.6.0", got[4].String())
}

func TestChanges_NilSides(t *testing.T) {
	m := parse(t, `{"scripts": {"dev": "vite"}}`)

	assert.Equal(t, []Change{{Section: "scripts", Op: Added, Name: "dev", New: "vite"}}, Changes(nil, m))
	assert.Equal(t, []Change{{Section: "scripts", Op: Removed, Name: "dev", Old: "vite"}}, Changes(m, nil))
	assert.Empty(t, Changes(nil, nil))
	assert.Empty(t, Changes(m, m))
}
