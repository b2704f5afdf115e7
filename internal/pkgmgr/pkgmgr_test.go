package pkgmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/pkgpal/internal/fsys/fsystest"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  Kind
	}{
		{"no lockfiles", nil, NPM},
		{"package-lock only", []string{"package-lock.json"}, NPM},
		{"yarn", []string{"yarn.lock"}, Yarn},
		{"pnpm", []string{"pnpm-lock.yaml"}, PNPM},
		{"bun", []string{"bun.lockb"}, Bun},
		{"yarn beats pnpm", []string{"pnpm-lock.yaml", "yarn.lock"}, Yarn},
		{"pnpm beats bun", []string{"bun.lockb", "pnpm-lock.yaml"}, PNPM},
		{"all three", []string{"bun.lockb", "pnpm-lock.yaml", "yarn.lock"}, Yarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := fsystest.New()
			for _, f := range tt.files {
				fs.WriteFile(f, "")
			}
			assert.Equal(t, tt.want, Detect(context.Background(), fs))
		})
	}
}

func TestDetect_ReadsAllMarkers(t *testing.T) {
	fs := fsystest.New()
	fs.WriteFile("yarn.lock", "")

	Detect(context.Background(), fs)

	for _, name := range Markers() {
		assert.Equal(t, 1, fs.Reads(name), name)
	}
}

// errReader fails every read with a non-not-found error.
type errReader struct{}

func (errReader) ReadFile(context.Context, string) ([]byte, error) {
	return nil, errors.New("permission denied")
}

func TestDetect_OtherErrorsCountAsPresent(t *testing.T) {
	assert.Equal(t, Yarn, Detect(context.Background(), errReader{}))
}

func TestDetect_CancelledContextFallsBackToNPM(t *testing.T) {
	fs := fsystest.New()
	fs.WriteFile("yarn.lock", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, NPM, Detect(ctx, fs))
}

func TestCommands(t *testing.T) {
	tests := []struct {
		kind                          Kind
		init, run, install, uninstall string
	}{
		{NPM, "npm init", "npm run build", "npm i zod", "npm uninstall zod"},
		{Yarn, "yarn init", "yarn run build", "yarn add zod", "yarn remove zod"},
		{PNPM, "pnpm init", "pnpm run build", "pnpm i zod", "pnpm uninstall zod"},
		{Bun, "bun init", "bun run build", "bun install zod", "bun uninstall zod"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.init, tt.kind.Init())
			assert.Equal(t, tt.run, tt.kind.Run("build"))
			assert.Equal(t, tt.install, tt.kind.Install("zod"))
			assert.Equal(t, tt.uninstall, tt.kind.Uninstall("zod"))
		})
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"build", "build"},
		{"test:unit", "test:unit"},
		{"@types/node", "@types/node"},
		{"lodash@^4.17.0", "lodash@^4.17.0"},
		{"my script", "'my script'"},
		{"a;rm -rf", "'a;rm -rf'"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), tt.in)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("PNPM")
	require.NoError(t, err)
	assert.Equal(t, PNPM, got)

	_, err = ParseKind("deno")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
