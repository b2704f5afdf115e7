package extension

import (
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExtension is a minimal Extension implementation for testing.
type testExtension struct {
	name  string
	tools []MCPTool
}

func (e testExtension) Name() string               { return e.name }
func (e testExtension) Commands() []*cobra.Command { return nil }
func (e testExtension) MCPTools() []MCPTool        { return e.tools }

// handlerExtension records events it receives.
type handlerExtension struct {
	testExtension
	got []Event
	err error
}

func (e *handlerExtension) HandleEvent(_ Context, evt Event) error {
	e.got = append(e.got, evt)
	return e.err
}

func TestRegister_PanicOnDuplicate(t *testing.T) {
	name := "test-duplicate-panic"
	Register(testExtension{name: name})

	assert.Panics(t, func() {
		Register(testExtension{name: name})
	})
}

func TestRegister_Order(t *testing.T) {
	Register(testExtension{name: "test-order-a"})
	Register(testExtension{name: "test-order-b"})

	names := Names()
	ia, ib := -1, -1
	for i, n := range names {
		switch n {
		case "test-order-a":
			ia = i
		case "test-order-b":
			ib = i
		}
	}
	require.NotEqual(t, -1, ia)
	assert.Less(t, ia, ib)
	assert.Equal(t, "test-order-a", Get("test-order-a").Name())
	assert.Nil(t, Get("test-order-missing"))
}

func TestTools(t *testing.T) {
	tool := MCPTool{Tool: mcp.NewTool("test_tools_probe")}
	Register(testExtension{name: "test-tools", tools: []MCPTool{tool}})

	var found bool
	for _, tl := range Tools() {
		if tl.Tool.Name == "test_tools_probe" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFire(t *testing.T) {
	ok := &handlerExtension{testExtension: testExtension{name: "test-fire-ok"}}
	bad := &handlerExtension{testExtension: testExtension{name: "test-fire-bad"}, err: errors.New("boom")}
	Register(ok)
	Register(bad)

	ctx := NewContext(Workspace{Dir: "/proj"})
	evt := CommandRunEvent{Label: "build", Command: "npm run build"}
	Fire(ctx, evt)

	require.Len(t, ok.got, 1)
	assert.Equal(t, EventCommandRun, ok.got[0].EventType())
	assert.Equal(t, "build", ok.got[0].EventTarget())
	assert.Len(t, bad.got, 1, "a failing handler still receives the event")
}

func TestFire_NilContext(t *testing.T) {
	h := &handlerExtension{testExtension: testExtension{name: "test-fire-nil"}}
	Register(h)

	Fire(nil, ManifestChangeEvent{Name: "package.json"})
	assert.Empty(t, h.got)
}
