/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Separated from root.go to isolate flag definitions from command logic.
// Extensions access these via exported accessor functions rather than
// directly accessing the variables.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpl-au/pkgpal/internal/pkgmgr"
)

var validOutputFormats = []string{"json"}

var (
	output  string
	dir     string
	manager string
	verbose bool
)

// out is the output writer for commands. Defaults to os.Stdout.
// Tests can replace this to capture output.
var out io.Writer = os.Stdout

// Out returns the output writer.
func Out() io.Writer { return out }

// Output returns the output format flag value.
func Output() string { return output }

// Verbose reports whether debug logging was requested.
func Verbose() bool { return verbose }

// Dir returns the absolute project directory.
// Priority: --dir flag > PKGPAL_DIR env var > working directory.
func Dir() (string, error) {
	d := dir
	if d == "" {
		d = os.Getenv("PKGPAL_DIR")
	}
	if d == "" {
		d = "."
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return "", fmt.Errorf("resolve project dir: %w", err)
	}
	return abs, nil
}

// Manager returns the package manager pinned with --manager, or nil when
// the flag is unset.
func Manager() (*pkgmgr.Kind, error) {
	if manager == "" {
		return nil, nil
	}
	k, err := pkgmgr.ParseKind(manager)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// Styled reports whether output should carry colour and box styling:
// not JSON, and written to a terminal.
func Styled() bool {
	if JSON() {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON.
// Returns nil if error was printed (suppressing Cobra error), or the original error if not.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "Project directory (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&manager, "manager", "", "Pin the package manager: npm, yarn, pnpm or bun")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("manager", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(pkgmgr.Kinds))
		for i, k := range pkgmgr.Kinds {
			names[i] = k.String()
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}
