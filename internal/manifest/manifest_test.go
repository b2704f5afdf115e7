package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsDeclarationOrder(t *testing.T) {
	data := []byte(`{
		"name": "app",
		"version": "1.2.0",
		"scripts": {"build": "tsc -p .", "test": "vitest run", "lint": "eslint ."},
		"dependencies": {"zod": "^3.22.0", "axios": "^1.6.0"}
	}`)

	m, err := Parse(DefaultName, data)
	require.NoError(t, err)

	assert.Equal(t, "app", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, []Entry{
		{Name: "build", Value: "tsc -p ."},
		{Name: "test", Value: "vitest run"},
		{Name: "lint", Value: "eslint ."},
	}, m.Scripts)
	assert.Equal(t, []Entry{
		{Name: "zod", Value: "^3.22.0"},
		{Name: "axios", Value: "^1.6.0"},
	}, m.Dependencies)
	assert.Equal(t, string(data), m.Raw)
}

func TestParse_Unescapes(t *testing.T) {
	m, err := Parse(DefaultName, []byte(`{"scripts":{"echo":"echo \"hi\" & bye"}}`))
	require.NoError(t, err)
	require.Len(t, m.Scripts, 1)
	assert.Equal(t, `echo "hi" & bye`, m.Scripts[0].Value)
}

func TestParse_MissingSections(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty object", `{}`},
		{"null sections", `{"scripts": null, "dependencies": null}`},
		{"empty sections", `{"scripts": {}, "dependencies": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(DefaultName, []byte(tt.data))
			require.NoError(t, err)
			assert.Empty(t, m.Scripts)
			assert.Empty(t, m.Dependencies)
		})
	}
}

func TestParse_NonStringValueKeptRaw(t *testing.T) {
	m, err := Parse(DefaultName, []byte(`{"dependencies": {"odd": 3}}`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "odd", Value: "3"}}, m.Dependencies)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"scripts": {"build": "tsc"`},
		{"not an object", `["a", "b"]`},
		{"scripts not an object", `{"scripts": "build"}`},
		{"dependencies not an object", `{"dependencies": ["zod"]}`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("pkg/package.json", []byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "pkg/package.json", pe.Name)
			assert.Contains(t, err.Error(), "parse pkg/package.json")
		})
	}
}
