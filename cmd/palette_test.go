package cmd

import (
	"encoding/json"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree(t *testing.T) {
	t.Run("no manifest offers init", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("tree", "--plain")
		env.contains(out, "JS/")
		env.contains(out, "npm init")
		if strings.Contains(out, "scripts/") {
			t.Errorf("tree without package.json lists scripts:\n%s", out)
		}
	})

	t.Run("lists scripts and dependencies", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("package.json", testManifest)

		out := env.run("tree", "--plain")
		for _, want := range []string{"scripts/", "dev", "build", "test", "install/", "uninstall/", "react", "zod"} {
			env.contains(out, want)
		}
	})

	t.Run("depth limits expansion", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("package.json", testManifest)

		out := env.run("tree", "--plain", "--depth", "1")
		env.contains(out, "scripts/")
		if strings.Contains(out, "vitest") {
			t.Errorf("depth 1 expanded scripts:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("package.json", testManifest)

		var tree struct {
			Label    string `json:"label"`
			Children []struct {
				Label string `json:"label"`
			} `json:"children"`
		}
		require.NoError(t, json.Unmarshal([]byte(env.stdout("tree", "-o", "json")), &tree))
		assert.Equal(t, "JS", tree.Label)
		require.Len(t, tree.Children, 3)
		assert.Equal(t, "scripts", tree.Children[0].Label)
	})
}

func TestLs(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("package.json", testManifest)

	out := env.run("ls", "scripts")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "dev")
	assert.Contains(t, lines[1], "build")
	assert.Contains(t, lines[2], "test")

	_, err := env.runErr("ls", "nope")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Run("script through detected manager", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("package.json", testManifest)
		env.fakeManager("npm", 0)

		out := env.run("run", "scripts", "build")
		env.contains(out, "npm run build")
	})

	t.Run("lock file selects manager", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("package.json", testManifest)
		env.writeFile("yarn.lock", "")
		env.fakeManager("yarn", 0)

		out := env.run("run", "uninstall", "zod")
		env.contains(out, "yarn remove zod")
	})

	t.Run("exit code reported", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("package.json", testManifest)
		env.fakeManager("npm", 3)

		var res struct {
			Label    string `json:"label"`
			Manager  string `json:"manager"`
			ExitCode int    `json:"exit_code"`
			RunID    string `json:"run_id"`
		}
		out, err := env.command("run", "scripts", "test", "-o", "json").Output()
		var exit *exec.ExitError
		require.ErrorAs(t, err, &exit)
		require.NoError(t, json.Unmarshal(out, &res))
		assert.Equal(t, "test", res.Label)
		assert.Equal(t, "npm", res.Manager)
		assert.Equal(t, 3, res.ExitCode)
		assert.NotEmpty(t, res.RunID)
	})

	t.Run("context node rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("package.json", testManifest)

		out, err := env.runErr("run", "scripts")
		assert.Error(t, err)
		env.contains(out, "not runnable")
	})
}

func TestManager(t *testing.T) {
	tests := []struct {
		name string
		lock string
		want string
	}{
		{"default", "", "npm"},
		{"pnpm", "pnpm-lock.yaml", "pnpm"},
		{"yarn", "yarn.lock", "yarn"},
		{"bun", "bun.lockb", "bun"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tc.lock != "" {
				env.writeFile(tc.lock, "")
			}
			env.equals(env.run("manager"), tc.want)
		})
	}

	t.Run("flag pins manager", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("yarn.lock", "")
		env.equals(env.run("manager", "--manager", "pnpm"), "pnpm")
	})
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("package.json", testManifest)
	env.fakeManager("npm", 0)

	env.run("run", "scripts", "build")

	out := env.run("history", "--action", "exec")
	env.contains(out, "npm run build")
	env.contains(out, "ok")

	out = env.run("history", "--failed")
	if strings.Contains(out, "npm run build") {
		t.Errorf("--failed listed a successful run:\n%s", out)
	}
}
