// flags.go defines constants for extension CLI flag names.
//
// Using constants instead of string literals prevents typos and enables
// compile-time checking when flag names are used in both Flags().Type()
// definitions and GetType() calls.
//
// Naming convention: Flag<PascalCaseName> where name matches the kebab-case
// CLI flag (e.g., "older-than" -> FlagOlderThan).

package extension

// Flag name constants for CLI commands.
const (
	// Boolean flags

	FlagFailed = "failed" // Only failed entries
	FlagLocal  = "local"  // Use local (project) scope
	FlagPlain  = "plain"  // Disable styling even on a terminal
	FlagRaw    = "raw"    // Raw output without formatting
	FlagDiff   = "diff"   // Show a line diff alongside entry changes

	// String flags

	FlagSearch = "search" // Search text passed to resolvers
	FlagSince  = "since"  // Duration window (e.g., "7d")
	FlagAction = "action" // Audit action filter

	// Integer flags

	FlagDepth = "depth" // Tree expansion depth
	FlagLimit = "limit" // Limit number of results
)
