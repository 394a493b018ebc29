package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/bigraph/internal/runtime"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/processes"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/aretw0/bigraph/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double() registry.Implementation {
	return processes.Func(registry.Ports{"x": "float"}, registry.Ports{"y": "float"},
		func(inputs map[string]any, interval float64) (map[string]any, error) {
			return map[string]any{"y": 2 * inputs["x"].(float64)}, nil
		})
}

// completed returns a document reconciled by a core sharing reg.
func completed(t *testing.T, reg *registry.Registry, state map[string]any) domain.Document {
	t.Helper()
	core := schema.NewCore(schema.WithProcesses(reg))
	s, st, err := core.Complete(nil, state)
	require.NoError(t, err)
	doc, err := core.Serialize(s, st)
	require.NoError(t, err)
	return doc
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	require.NoError(t, processes.Register(reg))
	require.NoError(t, reg.Register("double", double(), false))
	return reg
}

func edge(address string, inputs, outputs map[string]any) map[string]any {
	return map[string]any{
		domain.KeyType:      domain.KindProcess,
		domain.FieldAddress: address,
		domain.FieldInputs:  inputs,
		domain.FieldOutputs: outputs,
	}
}

func TestComposite_EndToEnd(t *testing.T) {
	reg := newRegistry(t)
	doc := completed(t, reg, map[string]any{
		"A": edge("local:double", map[string]any{"x": []any{"B", "x"}}, map[string]any{"y": []any{"B", "y"}}),
		"B": map[string]any{"x": 2.0},
	})

	composite, err := runtime.New().Build(doc, reg)
	require.NoError(t, err)
	require.NoError(t, composite.Run(context.Background(), 1))

	results, err := composite.GatherResults("$.B.y")
	require.NoError(t, err)
	assert.Equal(t, 4.0, results["$.B.y"])
	assert.Equal(t, 1.0, composite.Time())
}

func TestComposite_IntervalScheduling(t *testing.T) {
	reg := newRegistry(t)
	slow := edge("local:increase", map[string]any{"level": []any{"level"}}, map[string]any{"level": []any{"level"}})
	slow[domain.FieldInterval] = 2.0
	slow[domain.FieldConfig] = map[string]any{"rate": 1.0}

	doc := completed(t, reg, map[string]any{
		"grow":  slow,
		"level": 1.0,
	})
	composite, err := runtime.New().Build(doc, reg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, composite.Run(ctx, 1))
	assert.Equal(t, 1.0, composite.State()["level"], "update not due before time 2")

	require.NoError(t, composite.Run(ctx, 1))
	assert.Equal(t, 3.0, composite.State()["level"], "update computed at 0 applied at 2")

	require.NoError(t, composite.Run(ctx, 2))
	assert.Equal(t, 9.0, composite.State()["level"], "update computed at 2 from the new level")
	assert.Equal(t, 4.0, composite.Time())
}

func TestComposite_Emitter(t *testing.T) {
	reg := newRegistry(t)
	doc := completed(t, reg, map[string]any{
		"grow": edge("local:increase", map[string]any{"level": []any{"level"}}, map[string]any{"level": []any{"level"}}),
		"emitter": map[string]any{
			domain.KeyType:      domain.KindStep,
			domain.FieldAddress: "local:ram-emitter",
			domain.FieldConfig:  map[string]any{"emit": map[string]any{"level": "float"}},
			domain.FieldInputs:  map[string]any{"level": []any{"level"}},
		},
		"level": 10.0,
	})

	composite, err := runtime.New().Build(doc, reg)
	require.NoError(t, err)
	require.NoError(t, composite.Run(context.Background(), 2))

	history := composite.Emitted()["emitter"]
	require.Len(t, history, 3, "one snapshot before the first cycle and one per cycle")
	assert.Equal(t, 10.0, history[0]["level"])
	assert.InDelta(t, 11.0, history[1]["level"], 1e-9)
	assert.InDelta(t, 12.1, history[2]["level"], 1e-9)
}

func TestComposite_ApplyRules(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.Register("tagger", processes.Func(nil, registry.Ports{"tags": "[string]", "label": "string"},
		func(inputs map[string]any, interval float64) (map[string]any, error) {
			return map[string]any{"tags": []any{"t"}, "label": "latest"}, nil
		}), false))

	doc := completed(t, reg, map[string]any{
		"tag": edge("local:tagger", nil, map[string]any{"tags": []any{"tags"}, "label": []any{"label"}}),
	})
	composite, err := runtime.New().Build(doc, reg)
	require.NoError(t, err)
	require.NoError(t, composite.Run(context.Background(), 2))

	state := composite.State()
	assert.Equal(t, []any{"t", "t"}, state["tags"], "lists append")
	assert.Equal(t, "latest", state["label"], "strings replace")
}

func TestComposite_InvalidUpdate(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.Register("liar", processes.Func(nil, registry.Ports{"y": "float"},
		func(inputs map[string]any, interval float64) (map[string]any, error) {
			return map[string]any{"y": "not a number"}, nil
		}), false))

	doc := completed(t, reg, map[string]any{
		"L": edge("local:liar", nil, map[string]any{"y": []any{"y"}}),
	})
	composite, err := runtime.New().Build(doc, reg)
	require.NoError(t, err)

	err = composite.Run(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
}

func TestComposite_Cancellation(t *testing.T) {
	reg := newRegistry(t)
	doc := completed(t, reg, map[string]any{
		"grow":  edge("local:increase", map[string]any{"level": []any{"level"}}, map[string]any{"level": []any{"level"}}),
		"level": 1.0,
	})
	composite, err := runtime.New().Build(doc, reg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, composite.Run(ctx, 10), context.Canceled)

	assert.Error(t, composite.Run(context.Background(), -1))
}

func TestComposite_Hooks(t *testing.T) {
	reg := newRegistry(t)
	doc := completed(t, reg, map[string]any{
		"grow":  edge("local:increase", map[string]any{"level": []any{"level"}}, map[string]any{"level": []any{"level"}}),
		"level": 1.0,
	})

	var updates, cycles int
	rt := runtime.New(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnUpdate: func(ctx context.Context, e *domain.UpdateEvent) {
			updates++
			assert.Equal(t, domain.Path{"grow"}, e.Edge)
		},
		OnCycle: func(ctx context.Context, e *domain.CycleEvent) { cycles++ },
	}))

	composite, err := rt.Build(doc, reg)
	require.NoError(t, err)
	require.NoError(t, composite.Run(context.Background(), 3))
	assert.Equal(t, 3, updates)
	assert.Equal(t, 3, cycles)
}

func TestGatherResults(t *testing.T) {
	reg := newRegistry(t)
	doc := completed(t, reg, map[string]any{
		"cells": map[string]any{
			"a": map[string]any{"level": 1.0},
			"b": map[string]any{"level": 2.0},
		},
	})
	composite, err := runtime.New().Build(doc, reg)
	require.NoError(t, err)

	all, err := composite.GatherResults()
	require.NoError(t, err)
	assert.Contains(t, all, runtime.RootQuery)

	results, err := composite.GatherResults("$.cells.a.level", "$.cells.*.level", "$.missing")
	require.NoError(t, err)
	assert.Equal(t, 1.0, results["$.cells.a.level"])
	assert.ElementsMatch(t, []any{1.0, 2.0}, results["$.cells.*.level"])
	assert.Nil(t, results["$.missing"])

	_, err = composite.GatherResults("$[")
	assert.Error(t, err)
}

func TestBuild_Errors(t *testing.T) {
	reg := newRegistry(t)

	_, err := runtime.New().Build(domain.Document{State: map[string]any{
		"A": edge("local:unknown", nil, nil),
	}}, reg)
	assert.ErrorIs(t, err, domain.ErrMissingProcess)

	_, err = runtime.New().Build(domain.Document{State: map[string]any{
		"A": edge("local:double", map[string]any{"z": []any{"z"}}, nil),
	}}, reg)
	assert.ErrorIs(t, err, domain.ErrPortNotDeclared)
}
