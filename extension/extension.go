// Package extension provides the plugin architecture for pkgpal. Extensions
// encapsulate related functionality (commands, MCP tools) and register at
// init time, enabling modular feature development without touching core code.
package extension

import (
	"github.com/spf13/cobra"
)

// Extension defines the contract for pkgpal extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to register with the server.
	MCPTools() []MCPTool
}

// Initializable extensions can perform setup once the workspace exists.
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Standalone is an optional interface for extensions with commands that
// don't need a workspace. Commands returned by NoWorkspaceCommands() will
// not trigger workspace construction in PersistentPreRunE.
//
// Use cases:
// 1. Commands that only read or write configuration
// 2. Commands that manage their own lifecycle
// 3. Utility commands such as version and guide
type Standalone interface {
	NoWorkspaceCommands() []string
}
