package graph_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/bigraph/internal/presentation/graph"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/ports"
	"github.com/aretw0/bigraph/pkg/processes"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func document() (map[string]any, map[string]any) {
	state := map[string]any{
		"grow": map[string]any{
			domain.KeyType:       domain.KindProcess,
			domain.FieldAddress:  "local:increase",
			domain.FieldInputs:   map[string]any{"level": []any{"cell", "level"}},
			domain.FieldOutputs:  map[string]any{"level": []any{"cell", "level"}},
			domain.FieldInterval: 1.0,
		},
		"log": map[string]any{
			domain.KeyType:      domain.KindEdge,
			domain.FieldAddress: "local:ram-emitter",
			domain.FieldInputs:  map[string]any{"level": []any{"cell", "level"}},
		},
		"cell": map[string]any{"level": 1.5, "note": `say "hi"`},
	}
	schema := map[string]any{
		"cell": map[string]any{
			"level": map[string]any{domain.KeyType: "float"},
			"note":  map[string]any{domain.KeyType: "string"},
		},
	}
	return state, schema
}

func TestGenerateMermaid(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, processes.Register(reg))
	state, schema := document()

	tests := []struct {
		name     string
		opts     ports.RenderOptions
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			contains: []string{
				"graph TD",
				`root(("root"))`,
				`[["grow<br/>local:increase"]]`,
				`{{"log<br/>local:ram-emitter"}}`,
				`["level"]`,
			},
		},
		{
			name: "Wires",
			contains: []string{
				`-. "level" .->`,
			},
		},
		{
			name: "Direction",
			opts: ports.RenderOptions{Direction: "LR"},
			contains: []string{
				"graph LR",
			},
		},
		{
			name: "Types And Values",
			opts: ports.RenderOptions{ShowTypes: true, ShowValues: true},
			contains: []string{
				`["level: float = 1.5"]`,
				`["note: string = say 'hi'"]`,
			},
			excludes: []string{
				`"cell =`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(state, schema, reg, tt.opts)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_WireDirections(t *testing.T) {
	state, schema := document()
	got := graph.GenerateMermaid(state, schema, nil, ports.RenderOptions{})

	// Without a registry the generic edge kind falls back to a subroutine.
	assert.Contains(t, got, `[["log<br/>local:ram-emitter"]]`)

	var ids = map[string]string{}
	for _, line := range strings.Split(got, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, `[["grow`); i > 0 {
			ids["grow"] = line[:i]
		}
		if i := strings.Index(line, `["level"]`); i > 0 {
			ids["level"] = line[:i]
		}
	}
	require.Len(t, ids, 2)
	assert.Contains(t, got, ids["level"]+` -. "level" .-> `+ids["grow"])
	assert.Contains(t, got, ids["grow"]+` -. "level" .-> `+ids["level"])
}

func TestMermaid_Render(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	state, schema := document()

	path, err := graph.New().Render(state, schema, nil, dir, "diagram", ports.RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "diagram.mmd"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "graph TD\n"))

	path, err = graph.New().Render(state, schema, nil, dir, "again.mmd", ports.RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "again.mmd"), path)

	_, err = graph.New().Render(state, schema, nil, dir, "", ports.RenderOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}
