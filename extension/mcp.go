package extension

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCPTool is a host-facing tool contributed by an extension. pkgpal serve
// registers it next to the palette tools.
type MCPTool struct {
	Tool    mcp.Tool
	Handler MCPHandler
}

// MCPHandler answers one tool call against the open workspace.
type MCPHandler func(ctx context.Context, ws Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
