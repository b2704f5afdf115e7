// Package core provides the core extension for pkgpal.
// It registers commands: config, serve, guide, history, version, and
// records palette activity in the audit log.
package core

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/log"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct {
	ctx extension.Context
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.Standalone    = (*Extension)(nil)
	_ extension.EventHandler  = (*Extension)(nil)
)

// Name returns "core".
func (e *Extension) Name() string { return "core" }

// Init keeps the workspace context for serve.
func (e *Extension) Init(ctx extension.Context) error {
	e.ctx = ctx
	return nil
}

// Commands returns all core CLI commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newConfigCmd(),
		e.newServeCmd(),
		newGuideCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil - the palette tools are built into internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// NoWorkspaceCommands returns commands that never touch the palette.
func (e *Extension) NoWorkspaceCommands() []string {
	return []string{"config", "guide", "history", "version"}
}

// HandleEvent writes palette activity to the audit log. Every executed
// leaf is recorded whether it came from the CLI or an MCP client.
func (e *Extension) HandleEvent(_ extension.Context, evt extension.Event) error {
	switch ev := evt.(type) {
	case extension.CommandRunEvent:
		log.Event("palette:exec", "exec").
			RunID(ev.RunID).
			Target(ev.Label).
			Command(ev.Command).
			Manager(ev.Manager).
			Started(ev.Started).
			Write(ev.Err)
	case extension.ManifestChangeEvent:
		b := log.Event("manifest:watch", "change").
			Target(ev.Name).
			Detail("exists", ev.Exists).
			Detail("changes", len(ev.Changes))
		if ev.Existed != ev.Exists {
			b.Detail("existed", ev.Existed)
		}
		b.Write(ev.Err)
	}
	return nil
}
