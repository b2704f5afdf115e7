// Package search provides registry package search.
// Registers the search command and the package_search MCP tool.
package search

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/cache"
	"github.com/jpl-au/pkgpal/internal/registry"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the search extension.
type Extension struct {
	pkgs *cache.Cache[[]registry.Package]
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "search".
func (e *Extension) Name() string { return "search" }

// Init takes the shared search cache, so CLI and install lookups share
// results within a process.
func (e *Extension) Init(ctx extension.Context) error {
	e.pkgs = ctx.Packages()
	return nil
}

// Commands returns the search command.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newSearchCmd(),
	}
}

// MCPTools returns package_search.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{packageSearchTool()}
}
