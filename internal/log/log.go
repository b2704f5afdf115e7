// Package log provides centralised audit logging for pkgpal operations.
// Logs are stored in ~/.pkgpal/log/pkgpal-log.db and record every command
// the palette runs, from the CLI or through MCP, across projects.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("palette:run", "exec").
//		Target("build").
//		Command("pnpm run build").
//		Manager("pnpm").
//		Write(err)
//
//	log.Event("mcp:package_search", "search").
//		Detail("term", term).
//		Detail("count", len(pkgs)).
//		Write(err)
//
// The source parameter follows the format "{extension}:{command}" for CLI
// commands or "mcp:{tool}" for MCP tools. Examples: "palette:run",
// "core:config", "mcp:palette_run".
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string // e.g., "palette:run", "mcp:palette_run"
	Action string // verb: exec, search, query, config
	RunID  string // correlates an MCP request with the command it ran

	Target  string // script, package or config key acted on
	Command string // shell command line, for exec entries
	Manager string // package manager used, for exec entries

	// Timing, unix milliseconds
	Start int64 // when Event() was called
	End   int64 // when Write() was called

	Success bool           // whether operation succeeded
	Error   string         // error message if failed
	Detail  map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - CLI commands: "{extension}:{command}" (e.g., "palette:run")
//   - MCP tools: "mcp:{tool}" (e.g., "mcp:palette_run")
//
// The action describes what was done: "exec", "search", "query", "set".
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().UnixMilli(),
		},
	}
}

// RunID sets the request correlation id.
func (b *Builder) RunID(id string) *Builder {
	b.entry.RunID = id
	return b
}

// Target sets the script, package or key the operation affects.
func (b *Builder) Target(target string) *Builder {
	b.entry.Target = target
	return b
}

// Command sets the shell command line that was run.
func (b *Builder) Command(command string) *Builder {
	b.entry.Command = command
	return b
}

// Manager sets the package manager the command was built for.
func (b *Builder) Manager(manager string) *Builder {
	b.entry.Manager = manager
	return b
}

// Started overrides the start time, for operations timed elsewhere.
func (b *Builder) Started(t time.Time) *Builder {
	if t.IsZero() {
		return b
	}
	b.entry.Start = t.UnixMilli()
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// search terms, result counts, exit codes.
// Can be called multiple times to add multiple details.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().UnixMilli()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent log entries.
// The dir should be the absolute path to the project root.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
