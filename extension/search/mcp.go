// mcp.go implements the package_search MCP tool.

package search

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/log"
)

func packageSearchTool() extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("package_search",
			mcp.WithDescription("Search the package registry. Results are cached per term for the life of the server."),
			mcp.WithString("term", mcp.Required(), mcp.Description("Search text, e.g. 'react router'")),
			mcp.WithNumber("limit", mcp.Description("Maximum results (default: all the registry returned)")),
		),
		Handler: handlePackageSearch,
	}
}

func handlePackageSearch(ctx context.Context, ext extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := req.RequireString("term")
	if err != nil {
		return mcp.NewToolResultError("term is required"), nil //nolint:nilerr
	}
	limit := 0
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		if v, ok := args["limit"].(float64); ok {
			limit = int(v)
		}
	}

	pkgs, err := ext.Packages().Lookup(ctx, term)

	log.Event("mcp:package_search", "search").
		Detail("term", term).
		Detail("count", len(pkgs)).
		Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(head(pkgs, limit), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
