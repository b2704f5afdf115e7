// Package palette provides the palette extension for pkgpal.
// It registers commands: tree, ls, run, manager, watch.
package palette

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/manifest"
	"github.com/jpl-au/pkgpal/internal/palette"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the palette extension.
type Extension struct {
	provider *palette.Provider
	watcher  *manifest.Watcher
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "palette".
func (e *Extension) Name() string { return "palette" }

// Init receives the provider and manifest watcher from the workspace.
func (e *Extension) Init(ctx extension.Context) error {
	e.provider = ctx.Provider()
	e.watcher = ctx.Manifest()
	return nil
}

// Commands returns the palette browsing and execution commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newTreeCmd(),
		e.newLsCmd(),
		e.newRunCmd(),
		e.newManagerCmd(),
		e.newWatchCmd(),
	}
}

// MCPTools returns nil - palette tools are built into internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}
