// Package mcp implements the Model Context Protocol server that hosts the
// command palette. Clients browse the tree, run leaves and read the
// manifest through a standardised protocol over stdio.
package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/version"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// ManifestURI is the resource carrying the raw manifest text.
const ManifestURI = "pkgpal://manifest"

// Transport streams; stdout is reserved for JSON-RPC messages.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// Serve starts the MCP server over stdio. tools are extension-contributed
// tools registered alongside the built-in palette tools. Serve returns when
// ctx is cancelled or stdin closes.
func Serve(ctx context.Context, ext extension.Context, tools []extension.MCPTool) error {
	s := NewServer(ext, tools)

	slog.Info("pkgpal MCP server ready",
		"version", Version,
		"build", version.Short(),
		"dir", ext.Dir(),
		"transport", "stdio")

	stdio := server.NewStdioServer(s)
	err := stdio.Listen(ctx, stdin, stdout)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// NewServer builds the MCP server without starting a transport.
func NewServer(ext extension.Context, tools []extension.MCPTool) *server.MCPServer {
	h := &handlers{ext: ext}

	s := server.NewMCPServer(
		"pkgpal",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	registerResources(s, h)
	registerTools(s, h)
	registerExtensionTools(s, ext, tools)
	return s
}

// handlers provides MCP request handlers with access to the workspace.
type handlers struct {
	ext extension.Context
}

// registerResources adds URI-based access to the manifest.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResource(
		mcp.NewResource(
			ManifestURI,
			"Manifest",
			mcp.WithResourceDescription("Raw package.json text as last read from disk"),
			mcp.WithMIMEType("application/json"),
		),
		h.readManifest,
	)
}

// registerTools exposes palette operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("palette_query",
			mcp.WithDescription("List the children of a palette context. An empty path lists the root."),
			mcp.WithArray("path", mcp.Description("Node IDs or labels from the root, e.g. [\"scripts\"]"), mcp.WithStringItems()),
			mcp.WithString("search", mcp.Description("Search text; drives registry results under install")),
			mcp.WithBoolean("inactive", mcp.Description("Resolve as an unfocused palette (root yields nothing without search)")),
		),
		h.query,
	)

	s.AddTool(
		mcp.NewTool("palette_tree",
			mcp.WithDescription("Resolve the palette to a given depth"),
			mcp.WithString("search", mcp.Description("Search text passed to every resolver")),
			mcp.WithNumber("depth", mcp.Description("Levels below the root to expand (default 2)")),
		),
		h.tree,
	)

	s.AddTool(
		mcp.NewTool("palette_run",
			mcp.WithDescription("Run a palette leaf in the project directory and return its output"),
			mcp.WithArray("path", mcp.Required(), mcp.Description("Node IDs or labels from the root to the leaf, e.g. [\"scripts\", \"build\"]"), mcp.WithStringItems()),
			mcp.WithString("search", mcp.Description("Search text used to resolve the path (needed for install leaves)")),
		),
		h.run,
	)

	s.AddTool(
		mcp.NewTool("manifest_show",
			mcp.WithDescription("Show the current manifest snapshot: existence, scripts, dependencies and any parse error"),
		),
		h.showManifest,
	)

	s.AddTool(
		mcp.NewTool("pkgpal_guide",
			mcp.WithDescription("Get help/guide content for pkgpal"),
			mcp.WithString("topic", mcp.Description("Guide topic (e.g., 'config', 'mcp') or empty for the main page")),
		),
		h.getGuide,
	)
}

// registerExtensionTools binds extension tools to the shared context.
func registerExtensionTools(s *server.MCPServer, ext extension.Context, tools []extension.MCPTool) {
	for _, t := range tools {
		s.AddTool(t.Tool, bindTool(ext, t))
	}
}

func bindTool(ext extension.Context, t extension.MCPTool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.Handler(ctx, ext, req)
	}
}
