// registry.go holds the process-wide set of extensions. Extensions add
// themselves from init(), so the set is fixed before main runs and commands
// appear in import order.

package extension

import (
	"slices"
	"sync"
)

var (
	mu     sync.RWMutex
	byName = make(map[string]Extension)
	order  []Extension
)

// Register adds e. A second extension with the same name is a programming
// error and panics, like database/sql.Register.
func Register(e Extension) {
	mu.Lock()
	defer mu.Unlock()

	name := e.Name()
	if _, dup := byName[name]; dup {
		panic("extension already registered: " + name)
	}
	byName[name] = e
	order = append(order, e)
}

// All returns the registered extensions in registration order.
func All() []Extension {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Clone(order)
}

// Get returns the named extension, or nil.
func Get(name string) Extension {
	mu.RLock()
	defer mu.RUnlock()
	return byName[name]
}

// Names lists extension names in registration order.
func Names() []string {
	exts := All()
	names := make([]string, len(exts))
	for i, e := range exts {
		names[i] = e.Name()
	}
	return names
}

// Tools collects every extension's host tools, in registration order.
func Tools() []MCPTool {
	var tools []MCPTool
	for _, e := range All() {
		tools = append(tools, e.MCPTools()...)
	}
	return tools
}
