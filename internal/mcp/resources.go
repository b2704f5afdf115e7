// resources.go implements manifest access for MCP clients: the raw text as
// a resource, and the parsed snapshot as a tool.

package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/pkgpal/guide"
	"github.com/jpl-au/pkgpal/internal/manifest"
)

// ErrNoManifest is returned when the project has no manifest to read.
var ErrNoManifest = errors.New("no manifest in project")

// manifestView is the manifest_show response.
type manifestView struct {
	Name     string             `json:"name"`
	Exists   bool               `json:"exists"`
	Manager  string             `json:"manager"`
	Manifest *manifest.Manifest `json:"manifest,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// readManifest handles pkgpal://manifest resource requests.
func (h *handlers) readManifest(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap := h.ext.Manifest().Snapshot()
	if !snap.Exists || snap.Manifest == nil {
		return nil, ErrNoManifest
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     snap.Manifest.Raw,
		},
	}, nil
}

// showManifest handles manifest_show tool calls.
func (h *handlers) showManifest(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w := h.ext.Manifest()
	snap := w.Snapshot()

	v := manifestView{
		Name:    w.Name(),
		Exists:  snap.Exists,
		Manager: h.ext.Provider().Manager(ctx).String(),
	}
	if snap.Exists {
		v.Manifest = snap.Manifest
	}
	if snap.Err != nil {
		v.Error = snap.Err.Error()
	}
	return jsonResult(v)
}

// getGuide handles pkgpal_guide tool calls.
func (h *handlers) getGuide(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := guide.Get(getString(req, "topic", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}
