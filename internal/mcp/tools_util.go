// tools_util.go extracts typed tool arguments. Missing or mistyped optional
// arguments fall back to the caller's default.

package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

func getBool(req mcp.CallToolRequest, name string, def bool) bool { //nolint:unparam
	if v, ok := arg[bool](req, name); ok {
		return v
	}
	return def
}

// getInt accepts any JSON number; fractions are truncated.
func getInt(req mcp.CallToolRequest, name string, def int) int { //nolint:unparam
	if v, ok := arg[float64](req, name); ok {
		return int(v)
	}
	return def
}

// getStrings returns an array argument of strings. A missing argument yields
// nil; an element of any other type is an error.
func getStrings(req mcp.CallToolRequest, name string) ([]string, error) {
	arr, ok := arg[[]any](req, name)
	if !ok {
		return nil, nil
	}
	path := make([]string, 0, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: want string, got %T", name, i, v)
		}
		path = append(path, s)
	}
	return path, nil
}

func arg[T any](req mcp.CallToolRequest, name string) (T, bool) {
	var zero T
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return zero, false
	}
	v, ok := args[name].(T)
	return v, ok
}

// jsonResult wraps v as indented JSON text. Marshal failures become tool
// errors so the client sees them like any other failure.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
