package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, r *Runner, command string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	ctx := WithIO(context.Background(), IO{Stdout: &stdout, Stderr: &stderr})
	err := r.Exec(ctx, command)
	return stdout.String(), stderr.String(), err
}

func TestExec_Output(t *testing.T) {
	out, _, err := run(t, New(t.TempDir()), `echo "hello world"`)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestExec_RunsInDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("here"), 0644))

	out, _, err := run(t, New(dir), `read -r line < marker.txt; echo "$line"`)
	require.NoError(t, err)
	assert.Equal(t, "here\n", out)
}

func TestExec_ExitCode(t *testing.T) {
	_, stderr, err := run(t, New(t.TempDir()), `echo bad >&2; exit 3`)
	require.Error(t, err)
	assert.Equal(t, "bad\n", stderr)

	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.Code)
	assert.Equal(t, "echo bad >&2; exit 3", ee.Command)
}

func TestExec_ParseError(t *testing.T) {
	_, _, err := run(t, New(t.TempDir()), `echo "unterminated`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestExec_Empty(t *testing.T) {
	assert.ErrorIs(t, New(t.TempDir()).Exec(context.Background(), "  "), ErrEmpty)
}
