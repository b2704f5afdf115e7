// context.go defines the Context interface for extension access to the
// project workspace.
//
// The Context is the controlled surface extensions see: the palette
// provider and the pieces it is assembled from. Extensions receive it
// during Init(), after the workspace has been built for the project
// directory, so they register commands before any of it exists.

package extension

import (
	"github.com/jpl-au/pkgpal/internal/cache"
	"github.com/jpl-au/pkgpal/internal/config"
	"github.com/jpl-au/pkgpal/internal/manifest"
	"github.com/jpl-au/pkgpal/internal/palette"
	"github.com/jpl-au/pkgpal/internal/registry"
	"github.com/jpl-au/pkgpal/internal/shell"
)

// Context provides extensions controlled access to the project workspace.
type Context interface {
	// Dir is the absolute project directory.
	Dir() string

	// Config returns the merged configuration for the project.
	Config() *config.Config

	// Provider resolves the command palette.
	Provider() *palette.Provider

	// Manifest is the live manifest watcher backing the palette.
	Manifest() *manifest.Watcher

	// Packages is the shared search cache used by the install context.
	Packages() *cache.Cache[[]registry.Package]

	// Registry is the underlying search client, bypassing the cache.
	Registry() *registry.Client

	// Shell runs commands in the project directory.
	Shell() *shell.Runner
}

// Workspace groups the components a Context exposes.
type Workspace struct {
	Dir      string
	Config   *config.Config
	Provider *palette.Provider
	Manifest *manifest.Watcher
	Packages *cache.Cache[[]registry.Package]
	Registry *registry.Client
	Shell    *shell.Runner
}

// extContext implements Context.
type extContext struct {
	ws Workspace
}

// NewContext creates a new extension context.
func NewContext(ws Workspace) Context {
	return &extContext{ws: ws}
}

func (c *extContext) Dir() string                                { return c.ws.Dir }
func (c *extContext) Config() *config.Config                     { return c.ws.Config }
func (c *extContext) Provider() *palette.Provider                { return c.ws.Provider }
func (c *extContext) Manifest() *manifest.Watcher                { return c.ws.Manifest }
func (c *extContext) Packages() *cache.Cache[[]registry.Package] { return c.ws.Packages }
func (c *extContext) Registry() *registry.Client                 { return c.ws.Registry }
func (c *extContext) Shell() *shell.Runner                       { return c.ws.Shell }
