package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	orig := Version
	Version = "v9.9.9"
	defer func() { Version = orig }()

	i := Get()
	assert.Equal(t, "v9.9.9", i.BuildTag)
	assert.Equal(t, runtime.Version(), i.GoVersion)
	assert.Contains(t, i.String(), "Build Tag:   v9.9.9\n")
	assert.Equal(t, "v9.9.9", Short())
}
