// serve.go implements the "pkgpal serve" command for MCP server operation.
//
// Unlike other commands that run and exit, serve blocks handling MCP
// requests over stdio until the client disconnects or the process is
// interrupted. The manifest watcher keeps the palette current meanwhile.

package core

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/mcp"
)

func (e *Extension) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio that hosts the
command palette for the project.

Use --dir to serve another project:
  pkgpal serve --dir ~/src/app`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return mcp.Serve(c.Context(), e.ctx, extension.Tools())
		},
	}
}
