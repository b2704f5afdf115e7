// Package config provides reading and writing of pkgpal configuration.
// Supports both global (~/.pkgpal/config.yaml) and local
// (<project>/.pkgpal/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpl-au/pkgpal/internal/duration"
	"github.com/jpl-au/pkgpal/internal/pkgmgr"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.pkgpal/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is project-specific config in .pkgpal/config.yaml
	ScopeLocal
)

// Dir is the name of the per-user and per-project configuration directory.
const Dir = ".pkgpal"

// Manifest holds manifest options.
type Manifest struct {
	Name string `yaml:"name,omitempty"`
}

// Manager holds package manager options.
type Manager struct {
	// Default pins the manager. Empty means detect from lockfiles.
	Default string `yaml:"default,omitempty"`
}

// Registry holds package search options.
type Registry struct {
	URL     string   `yaml:"url,omitempty"`
	Timeout string   `yaml:"timeout,omitempty"`
	Rate    *float64 `yaml:"rate,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultManifestName = "package.json"
	DefaultRegistryURL  = "https://registry.npmjs.org"
	DefaultTimeout      = 10 * time.Second
	DefaultRate         = 5.0
)

// Validation bounds for configuration values.
const (
	MinTimeout = 100 * time.Millisecond
	MaxTimeout = 5 * time.Minute
	MaxRate    = 1000.0
)

// Config contains configuration for pkgpal.
type Config struct {
	Manifest Manifest `yaml:"manifest,omitempty"`
	Manager  Manager  `yaml:"manager,omitempty"`
	Registry Registry `yaml:"registry,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
	// project is the directory local config lives under
	project string
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if n := c.Manifest.Name; n != "" && (strings.ContainsRune(n, filepath.Separator) || strings.Contains(n, "/")) {
		return fmt.Errorf("%w: manifest.name must be a file name, got %q", ErrInvalidValue, n)
	}
	if c.Manager.Default != "" {
		if _, err := pkgmgr.ParseKind(c.Manager.Default); err != nil {
			return fmt.Errorf("%w: manager.default: %v", ErrInvalidValue, err)
		}
	}
	if c.Registry.Timeout != "" {
		d, err := duration.Parse(c.Registry.Timeout)
		if err != nil {
			return fmt.Errorf("%w: registry.timeout: %v", ErrInvalidValue, err)
		}
		if d < MinTimeout || d > MaxTimeout {
			return fmt.Errorf("%w: registry.timeout must be between %s and %s, got %s",
				ErrInvalidValue, MinTimeout, MaxTimeout, d)
		}
	}
	if c.Registry.Rate != nil {
		v := *c.Registry.Rate
		if v < 0 || v > MaxRate {
			return fmt.Errorf("%w: registry.rate must be between 0 and %g, got %g",
				ErrInvalidValue, MaxRate, v)
		}
	}
	return nil
}

// ManifestName returns the manifest file name (defaults to package.json).
func (c *Config) ManifestName() string {
	if c.Manifest.Name == "" {
		return DefaultManifestName
	}
	return c.Manifest.Name
}

// PinnedManager returns the configured manager, or nil to detect.
func (c *Config) PinnedManager() *pkgmgr.Kind {
	if c.Manager.Default == "" {
		return nil
	}
	k, err := pkgmgr.ParseKind(c.Manager.Default)
	if err != nil {
		return nil
	}
	return &k
}

// RegistryURL returns the registry root (defaults to the public npm registry).
func (c *Config) RegistryURL() string {
	if c.Registry.URL == "" {
		return DefaultRegistryURL
	}
	return c.Registry.URL
}

// RegistryTimeout returns the search request timeout (defaults to 10s).
func (c *Config) RegistryTimeout() time.Duration {
	if c.Registry.Timeout == "" {
		return DefaultTimeout
	}
	d, err := duration.Parse(c.Registry.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// RegistryRate returns searches allowed per second (defaults to 5).
// Zero disables limiting.
func (c *Config) RegistryRate() float64 {
	if c.Registry.Rate == nil {
		return DefaultRate
	}
	return *c.Registry.Rate
}

// LocalPath returns the path to the local (project) config file.
func LocalPath(project string) string {
	return filepath.Join(project, Dir, "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.pkgpal/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, Dir, "config.yaml")
}

// Load reads configuration for project: uses local if it exists, otherwise
// global.
func Load(project string) (*Config, error) {
	if _, err := os.Stat(LocalPath(project)); err == nil {
		return LoadScope(project, ScopeLocal)
	}
	return LoadScope(project, ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(project string, scope Scope) (*Config, error) {
	path := pathForScope(project, scope)
	if path == "" {
		return &Config{scope: scope, project: project}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope, project: project}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope
	cfg.project = project

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.project, c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(project string, scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath(project)
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
