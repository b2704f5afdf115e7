// Package all imports all built-in pkgpal extensions.
// Import this package to register all built-in commands.
package all

import (
	// Each registers itself via init()
	_ "github.com/jpl-au/pkgpal/extension/core"
	_ "github.com/jpl-au/pkgpal/extension/palette"
	_ "github.com/jpl-au/pkgpal/extension/search"
)
