// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic used by the CLI and MCP, where config is addressed by
// dotted keys (e.g., "registry.timeout").
//
// Pointers are used for optional numeric fields so "not set" (nil) and
// "explicitly zero" stay distinct; defaults only apply to the former.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"manifest.name",
		"manager.default",
		"registry.url", "registry.timeout", "registry.rate",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "manifest.name":
		return c.ManifestName(), nil
	case "manager.default":
		return c.Manager.Default, nil
	case "registry.url":
		return c.RegistryURL(), nil
	case "registry.timeout":
		return c.RegistryTimeout().String(), nil
	case "registry.rate":
		return formatRate(c.RegistryRate()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key. An empty value clears string
// keys back to their default.
func (c *Config) Set(key, value string) error {
	prev := *c
	switch key {
	case "manifest.name":
		c.Manifest.Name = value
	case "manager.default":
		c.Manager.Default = strings.ToLower(value)
	case "registry.url":
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("%w: registry.url must be an http or https URL", ErrInvalidValue)
		}
		c.Registry.URL = value
	case "registry.timeout":
		c.Registry.Timeout = value
	case "registry.rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: registry.rate must be a number", ErrInvalidValue)
		}
		c.Registry.Rate = &f
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if err := c.Validate(); err != nil {
		*c = prev
		return err
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	return map[string]string{
		"manifest.name":    c.ManifestName(),
		"manager.default":  c.Manager.Default,
		"registry.url":     c.RegistryURL(),
		"registry.timeout": c.RegistryTimeout().String(),
		"registry.rate":    formatRate(c.RegistryRate()),
	}
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "manifest.name":
		return c.Manifest.Name != ""
	case "manager.default":
		return c.Manager.Default != ""
	case "registry.url":
		return c.Registry.URL != ""
	case "registry.timeout":
		return c.Registry.Timeout != ""
	case "registry.rate":
		return c.Registry.Rate != nil
	default:
		return false
	}
}

func formatRate(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
