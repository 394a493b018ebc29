package bigraph_test

import (
	"context"
	"testing"

	"github.com/aretw0/bigraph"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/processes"
	"github.com/aretw0/bigraph/pkg/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populated returns a builder exercising stores, declarations, processes and steps.
func populated(t *testing.T) *bigraph.Builder {
	t.Helper()
	b := newBuilder(t)
	require.NoError(t, b.Set(map[string]any{
		"cell": map[string]any{
			"level":  10.0,
			"name":   bigraph.TypeWithDefault("string", "c1"),
			"count":  bigraph.Type("int"),
			"tags":   []any{"a"},
			"active": true,
		},
	}))
	require.NoError(t, b.Get("cell", "grow").AddProcess(processes.NameIncrease,
		bigraph.WithInputs(map[string]domain.Path{"level": {"level"}}),
		bigraph.WithOutputs(map[string]domain.Path{"level": {"level"}}),
		bigraph.WithInterval(0.5),
	))
	require.NoError(t, b.Root().Emitter("log", domain.Path{"cell", "level"}))
	return b
}

func TestProperty_CompletionIdempotence(t *testing.T) {
	b := populated(t)
	doc, err := b.Document()
	require.NoError(t, err)

	core := schema.NewCore(schema.WithProcesses(b.Processes()))
	s1, st1, err := core.Complete(doc.Schema, doc.State)
	require.NoError(t, err)
	s2, st2, err := core.Complete(s1, st1)
	require.NoError(t, err)

	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("schema changed on second completion (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(st1, st2); diff != "" {
		t.Errorf("state changed on second completion (-first +second):\n%s", diff)
	}
}

func TestProperty_PathRoundTrip(t *testing.T) {
	values := []any{1.5, 3, "text", true, []any{1.0, 2.0}}
	for _, v := range values {
		b := newBuilder(t)
		path := []string{"a", "b", "c"}
		require.NoError(t, b.Set(v, path...))
		assert.Equal(t, v, b.Get(path...).Value())
	}
}

func TestProperty_LazyMaterialization(t *testing.T) {
	b := newBuilder(t)
	assert.NotPanics(t, func() {
		b.Get("never", "seen", "before")
	})
	assert.Equal(t, []string{"never"}, b.Root().Children())
	assert.Equal(t, []string{"seen"}, b.Get("never").Children())
	assert.Equal(t, []string{"before"}, b.Get("never", "seen").Children())
	assert.Nil(t, b.Get("never", "seen", "before").Value())
}

func TestProperty_OverwriteSemantics(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(5.0, "P", "child"))
	require.NoError(t, b.Set(1.0, "P"))

	assert.Equal(t, 1.0, b.Get("P").Value())
	assert.Nil(t, b.Get("P", "child").Value())
	assert.Equal(t, map[string]any{domain.KeyType: "float"}, b.Get("P").Schema())
}

func TestProperty_ProcessSpecShape(t *testing.T) {
	b := newBuilder(t)
	config := map[string]any{"rate": 0.25}
	require.NoError(t, b.Get("P").AddProcess(processes.NameIncrease, bigraph.WithConfig(config)))

	record, ok := b.Get("P").Value().(map[string]any)
	require.True(t, ok)
	for _, key := range []string{domain.KeyType, domain.FieldAddress, domain.FieldConfig, domain.FieldInputs, domain.FieldOutputs} {
		assert.Contains(t, record, key)
	}
	assert.Equal(t, "local:"+processes.NameIncrease, record[domain.FieldAddress])
	assert.Subset(t, record[domain.FieldConfig], config)

	require.NoError(t, b.Get("Q").AddProcess(processes.NameIncrease))
	assert.Equal(t, map[string]any{"rate": 0.1}, b.Get("Q").Value().(map[string]any)[domain.FieldConfig], "declared defaults are merged")
}

func TestProperty_ConventionWiring(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Get("A").AddProcess("double"))
	require.NoError(t, b.Get("A").ConnectAll(""))

	record := b.Get("A").Value().(map[string]any)
	assert.Equal(t, []any{"x"}, record[domain.FieldInputs].(map[string]any)["x"])
	assert.Equal(t, []any{"y"}, record[domain.FieldOutputs].(map[string]any)["y"])
}

func TestProperty_SerializationRoundTrip(t *testing.T) {
	original, err := populated(t).Document()
	require.NoError(t, err)

	loaded, err := bigraph.Load(original)
	require.NoError(t, err)
	again, err := loaded.Document()
	require.NoError(t, err)

	if diff := cmp.Diff(original, again); diff != "" {
		t.Errorf("document changed through load (-original +loaded):\n%s", diff)
	}
}

func TestProperty_EndToEnd(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Get("A").AddProcess("double"))
	require.NoError(t, b.Set(map[string]any{"x": 2.0}, "B"))
	require.NoError(t, b.Get("A").Connect("x", domain.Path{"B", "x"}))
	require.NoError(t, b.Get("A").Connect("y", domain.Path{"B", "y"}))
	require.NoError(t, b.Complete())

	_, err := b.Compile()
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background(), 1))

	results, err := b.Results()
	require.NoError(t, err)
	state := results["$"].(map[string]any)
	assert.Equal(t, 4.0, state["B"].(map[string]any)["y"])

	results, err = b.Results("$.B.y")
	require.NoError(t, err)
	assert.Equal(t, 4.0, results["$.B.y"])
}
