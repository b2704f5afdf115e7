// tools_palette.go implements MCP tools for browsing and running the
// palette.
//
// Each call resolves afresh, so results always reflect the manifest and
// lockfiles as they are now. Browsing calls take a tracked query and go
// stale when a newer one arrives; palette_run resolves untracked so a
// concurrent browse cannot discard it. Paths name nodes from the root by
// ID or label, the same way the CLI does.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/pkgpal/internal/command"
	"github.com/jpl-au/pkgpal/internal/log"
	"github.com/jpl-au/pkgpal/internal/palette"
	"github.com/jpl-au/pkgpal/internal/shell"
)

// maxOutput caps the command output returned by palette_run. The tail is
// kept since failures usually report last.
const maxOutput = 64 << 10

// defaultDepth is the palette_tree depth when none is given.
const defaultDepth = 2

// runResult is the palette_run response.
type runResult struct {
	RunID      string `json:"run_id"`
	Label      string `json:"label"`
	ExitCode   int    `json:"exit_code"`
	Output     string `json:"output"`
	Truncated  bool   `json:"truncated,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// query handles palette_query tool calls.
func (h *handlers) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := getStrings(req, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	search := getString(req, "search", "")
	p := h.ext.Provider()
	q := p.NewQuery(!getBool(req, "inactive", false), search)

	nodes, err := children(ctx, p.Root(), q, path)

	log.Event("mcp:palette_query", "query").
		Target(strings.Join(path, "/")).
		Detail("search", search).
		Detail("count", len(nodes)).
		Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	views := make([]*command.Tree, len(nodes))
	for i, n := range nodes {
		views[i], _ = command.Expand(ctx, n, q, 0)
	}
	return jsonResult(views)
}

func children(ctx context.Context, root *command.Node, q command.Query, path []string) ([]*command.Node, error) {
	node, err := command.Find(ctx, root, q, path)
	if err != nil {
		return nil, err
	}
	return node.Children(ctx, q)
}

// tree handles palette_tree tool calls.
func (h *handlers) tree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	search := getString(req, "search", "")
	depth := getInt(req, "depth", defaultDepth)
	p := h.ext.Provider()

	t, err := command.Expand(ctx, p.Root(), p.NewQuery(true, search), depth)

	log.Event("mcp:palette_tree", "query").
		Detail("search", search).
		Detail("depth", depth).
		Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

// run handles palette_run tool calls. Output is captured instead of
// reaching the server's stdout, which carries the protocol.
func (h *handlers) run(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := getStrings(req, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(path) == 0 {
		return mcp.NewToolResultError("path is required"), nil
	}
	p := h.ext.Provider()
	q := palette.Untracked(true, getString(req, "search", ""))

	node, err := command.Find(ctx, p.Root(), q, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if node.Kind() != command.Leaf {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", strings.Join(path, "/"), command.ErrNotLeaf)), nil
	}

	res := runResult{RunID: uuid.NewString(), Label: node.Metadata().Label}
	out := newTailBuffer(maxOutput)
	runCtx := palette.WithRunID(ctx, res.RunID)
	runCtx = shell.WithIO(runCtx, shell.IO{Stdout: out, Stderr: out})

	start := time.Now()
	err = node.Run(runCtx)
	res.DurationMS = time.Since(start).Milliseconds()
	res.Output, res.Truncated = out.tail()

	var exit *shell.ExitError
	switch {
	case errors.As(err, &exit):
		res.ExitCode = exit.Code
		res.Error = err.Error()
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

// tailBuffer keeps the last limit bytes written to it. It is safe for the
// concurrent writes of a child's stdout and stderr copiers.
type tailBuffer struct {
	mu      sync.Mutex
	limit   int
	buf     []byte
	dropped bool
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p)
	if n >= b.limit {
		b.dropped = b.dropped || n > b.limit || len(b.buf) > 0
		b.buf = append(b.buf[:0], p[n-b.limit:]...)
		return n, nil
	}
	if over := len(b.buf) + n - b.limit; over > 0 {
		b.buf = b.buf[:copy(b.buf, b.buf[over:])]
		b.dropped = true
	}
	b.buf = append(b.buf, p...)
	return n, nil
}

// tail returns the kept bytes and whether anything was dropped.
func (b *tailBuffer) tail() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf), b.dropped
}
