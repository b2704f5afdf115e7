package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	main, err := Get("")
	require.NoError(t, err)
	assert.Contains(t, main, "# pkgpal")

	cfg, err := Get("config")
	require.NoError(t, err)
	assert.Contains(t, cfg, "registry.timeout")

	_, err = Get("missing")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"config", "mcp"}, names)
}
