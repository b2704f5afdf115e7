// The cmd/ package contains CLI integration tests that exercise the full
// stack: command parsing -> workspace wiring -> manifest watcher ->
// palette -> embedded shell. Package managers are replaced by fake
// scripts on PATH, and HOME points at a temp directory so config and the
// audit log stay isolated.

package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the pkgpal binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "pkgpal-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "pkgpal"
		if runtime.GOOS == "windows" {
			binaryName = "pkgpal.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		projectRoot := filepath.Dir(mustGetwd())

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string // project directory
	home   string // isolated HOME
	bin    string // prepended to PATH
	binary string
}

// newTestEnv creates an empty project directory with an isolated home.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return &testEnv{
		t:      t,
		dir:    t.TempDir(),
		home:   t.TempDir(),
		bin:    t.TempDir(),
		binary: buildBinary(t),
	}
}

// writeFile creates a file in the project directory.
func (e *testEnv) writeFile(name, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.dir, name), []byte(content), 0o644))
}

// fakeManager installs a package manager stand-in that echoes its name and
// arguments and exits with code.
func (e *testEnv) fakeManager(name string, code int) {
	e.t.Helper()
	if runtime.GOOS == "windows" {
		e.t.Skip("fake package managers are shell scripts")
	}
	script := fmt.Sprintf("#!/bin/sh\necho \"%s $*\"\nexit %d\n", name, code)
	require.NoError(e.t, os.WriteFile(filepath.Join(e.bin, name), []byte(script), 0o755))
}

func (e *testEnv) command(args ...string) *exec.Cmd {
	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(),
		"HOME="+e.home,
		"USERPROFILE="+e.home,
		"PATH="+e.bin+string(os.PathListSeparator)+os.Getenv("PATH"),
		"PKGPAL_DIR=",
	)
	return cmd
}

// run executes pkgpal with the given args and returns combined output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("pkgpal %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes pkgpal and returns combined output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()
	out, err := e.command(args...).CombinedOutput()
	return string(out), err
}

// stdout executes pkgpal and returns stdout only, for JSON output.
func (e *testEnv) stdout(args ...string) string {
	e.t.Helper()
	out, err := e.command(args...).Output()
	if err != nil {
		e.t.Fatalf("pkgpal %v failed: %v\noutput: %s", args, err, out)
	}
	return string(out)
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// equals checks if output equals expected string (trimmed).
func (e *testEnv) equals(output, expected string) {
	e.t.Helper()
	assert.Equal(e.t, strings.TrimSpace(expected), strings.TrimSpace(output))
}

// testManifest is a small but realistic package.json.
const testManifest = `{
  "name": "shop-frontend",
  "version": "0.4.0",
  "scripts": {
    "dev": "vite",
    "build": "tsc -b && vite build",
    "test": "vitest run"
  },
  "dependencies": {
    "react": "^18.2.0",
    "zod": "^3.22.4"
  }
}
`
