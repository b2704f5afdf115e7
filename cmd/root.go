/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Separated from init_extensions.go to isolate cobra setup from workspace
// construction.
//
// PersistentPreRunE builds the workspace lazily: only commands that need
// the palette trigger it, so guide, version and config work anywhere. The
// noWorkspaceCommands map controls which commands skip construction.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "pkgpal",
	Short: "Command palette for JavaScript package managers",
	Long: `pkgpal turns package.json and the project's lock file into a navigable
command palette: run scripts, search and install packages, and uninstall
dependencies with whichever of npm, yarn, pnpm or bun the project uses.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		setupLogging()

		if !noWorkspaceCommands[topLevelCmdName(cmd)] {
			if err := initExtensions(); err != nil {
				if JSON() {
					_ = PrintJSON(map[string]string{"error": err.Error()})
					cmd.SilenceErrors = true
					cmd.SilenceUsage = true
				}
				return fmt.Errorf("initialise workspace: %w", err)
			}
		}
		return nil
	},
}

// setupLogging routes slog through a charm handler on stderr. stdout is
// left for command output and, under serve, MCP JSON-RPC.
func setupLogging() {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix:          "pkgpal",
		Level:           level,
		ReportTimestamp: verbose,
	})
	slog.SetDefault(slog.New(handler))
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "pkgpal config registry.url", returns "config".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, registers extensions, executes the command, and
// closes the workspace before exit. Exit code 1 indicates error.
func Execute() {
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registerExtensions()
	err := rootCmd.ExecuteContext(ctx)

	closeWorkspace()

	if err != nil {
		log.Close()
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing and extension access.
func RootCmd() *cobra.Command {
	return rootCmd
}
