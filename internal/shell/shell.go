// Package shell runs package-manager command strings in the project
// directory using an embedded POSIX shell interpreter, so behaviour is the
// same on every platform and no system shell is required.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrEmpty is returned for a blank command string.
var ErrEmpty = errors.New("empty command")

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

// IO is the set of streams a command runs with. A nil Stdin reads nothing.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type ioKey struct{}

// WithIO returns a context whose commands use streams instead of the
// runner's defaults.
func WithIO(ctx context.Context, streams IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// Runner executes command strings in a fixed directory.
type Runner struct {
	dir     string
	env     []string
	streams IO
}

// New returns a runner for dir that inherits the process environment and
// standard streams.
func New(dir string) *Runner {
	return &Runner{
		dir:     dir,
		env:     os.Environ(),
		streams: IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
	}
}

// Exec parses and runs command. A non-zero exit is returned as *ExitError.
func (r *Runner) Exec(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmpty
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return fmt.Errorf("parse %q: %w", command, err)
	}

	streams := r.streams
	if s, ok := ctx.Value(ioKey{}).(IO); ok {
		streams = s
	}

	runner, err := interp.New(
		interp.Dir(r.dir),
		interp.Env(expand.ListEnviron(r.env...)),
		interp.StdIO(streams.Stdin, streams.Stdout, streams.Stderr),
	)
	if err != nil {
		return fmt.Errorf("create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitError{Command: command, Code: int(status)}
		}
		return fmt.Errorf("run %q: %w", command, err)
	}
	return nil
}
