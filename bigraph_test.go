package bigraph_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/bigraph"
	"github.com/aretw0/bigraph/pkg/adapters/memory"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/ports"
	"github.com/aretw0/bigraph/pkg/processes"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/aretw0/bigraph/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double() registry.Implementation {
	return processes.Func(registry.Ports{"x": "float"}, registry.Ports{"y": "float"},
		func(inputs map[string]any, interval float64) (map[string]any, error) {
			return map[string]any{"y": 2 * inputs["x"].(float64)}, nil
		})
}

func newBuilder(t *testing.T, opts ...bigraph.Option) *bigraph.Builder {
	t.Helper()
	opts = append([]bigraph.Option{bigraph.WithOutDir(t.TempDir())}, opts...)
	b := bigraph.New(opts...)
	require.NoError(t, b.RegisterProcess("double", double()))
	return b
}

func TestBuilder_Complete_FailureKeepsDocument(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(bigraph.Type("int"), "n"))
	assert.Equal(t, 0, b.Get("n").Value(), "default filled by completion")

	require.NoError(t, b.Root().Set("abc", "n"))
	err := b.Complete()
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	assert.Equal(t, "abc", b.Get("n").Value(), "provisional edit stays until the next successful completion")
	assert.Equal(t, map[string]any{domain.KeyType: "int"}, b.Get("n").Schema())

	require.NoError(t, b.Set(7, "n"))
	assert.Equal(t, 7, b.Get("n").Value())
}

func TestBuilder_Complete_RejectsUnrepresentableNumbers(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(bigraph.Type("int"), "n"))

	assert.ErrorIs(t, b.Set(1e20, "n"), domain.ErrSchemaViolation, "beyond the int range")
	require.NoError(t, b.Set(-3.0, "n"))
	assert.Equal(t, -3, b.Get("n").Value())

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		nb := newBuilder(t)
		assert.ErrorIs(t, nb.Set(v, "x"), domain.ErrSchemaViolation, "%v", v)
	}
}

func TestBuilder_Set_TypeDeclaration(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(bigraph.TypeWithDefault("float", 1.5), "rate"))
	assert.Equal(t, 1.5, b.Get("rate").Value())

	require.NoError(t, b.Set(map[string]any{domain.KeyType: "string", domain.KeyValue: "hi"}, "name"))
	assert.Equal(t, "hi", b.Get("name").Value())
	assert.Equal(t, "string", b.Get("name").Schema().(map[string]any)[domain.KeyType])

	err := b.Set(map[string]any{domain.KeyType: 3}, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestBuilder_Set_ValueMarkerStoresMaps(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(bigraph.Value(map[string]any{"a": 1.0}), "meta"))
	assert.Equal(t, map[string]any{"a": 1.0}, b.Get("meta").Value())
}

func TestBuilder_RegisterProcess(t *testing.T) {
	b := newBuilder(t)

	err := b.RegisterProcess("double", double())
	assert.ErrorIs(t, err, domain.ErrRegistration, "names are not silently replaced")

	require.NoError(t, b.RegisterProcessAddress("grow", "local:!bigraph.processes.Increase"))
	require.NoError(t, b.RegisterProcessAddress("twice", "local:double"))
	require.NoError(t, b.RegisterProcessAddress("record", "path:bigraph.processes.RAMEmitter"))
	assert.ErrorIs(t, b.RegisterProcessAddress("x", "ftp:thing"), domain.ErrRegistration)
	assert.ErrorIs(t, b.RegisterProcessAddress("y", "local:!no.Such"), domain.ErrRegistration)

	assert.Subset(t, b.ListProcesses(), []string{"double", "grow", "twice", "record", processes.NameIncrease, processes.NameLua})
}

func TestBuilder_WithLocator(t *testing.T) {
	b := bigraph.New(bigraph.WithLocator(registry.Catalog{"my.Double": double()}))
	require.NoError(t, b.RegisterProcessAddress("d", "local:!my.Double"))
	require.NoError(t, b.RegisterProcessAddress("i", "local:!bigraph.processes.Increase"))
}

func TestBuilder_LoadProcesses(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "processes.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
processes:
  - name: grow
    address: local:!bigraph.processes.Increase
  - name: log
    address: path:bigraph.processes.RAMEmitter
`), 0o644))

	b := newBuilder(t)
	require.NoError(t, b.LoadProcesses(manifest))
	assert.Contains(t, b.ListProcesses(), "grow")
	assert.Contains(t, b.ListProcesses(), "log")

	require.NoError(t, b.LoadProcesses(filepath.Join(dir, "missing.yaml")))
}

func TestBuilder_RegisterType(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.RegisterType("probability", schema.Derive("probability", schema.Float(), 0.5)))
	assert.Contains(t, b.ListTypes(), "probability")

	require.NoError(t, b.Set(bigraph.Type("probability"), "p"))
	assert.Equal(t, 0.5, b.Get("p").Value())
}

func TestBuilder_Results_NotCompiled(t *testing.T) {
	b := newBuilder(t)
	_, err := b.Results()
	assert.ErrorIs(t, err, domain.ErrNotCompiled)
	_, err = b.Emitted()
	assert.ErrorIs(t, err, domain.ErrNotCompiled)
}

func TestBuilder_Compile_Resynchronizes(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(3.0, "level"))
	require.NoError(t, b.Get("grow").AddProcess(processes.NameIncrease,
		bigraph.WithInputs(map[string]domain.Path{"level": {"level"}}),
		bigraph.WithOutputs(map[string]domain.Path{"level": {"level"}}),
	))

	composite, err := b.Compile()
	require.NoError(t, err)

	doc, err := b.Document()
	require.NoError(t, err)
	assert.Equal(t, composite.State()["level"], doc.State["level"])

	require.NoError(t, b.Run(context.Background(), 1))
	assert.InDelta(t, 3.3, b.Get("level").Value(), 1e-9, "the builder follows the composite")

	require.NoError(t, b.Run(context.Background(), 1))
	assert.InDelta(t, 3.63, b.Get("level").Value(), 1e-9, "runs continue from the last clock")
}

func TestBuilder_Write(t *testing.T) {
	dir := t.TempDir()
	b := bigraph.New(bigraph.WithOutDir(dir))
	require.NoError(t, b.Set(map[string]any{"x": 2.0}, "B"))

	path, err := b.Write("model")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.json"), path)
	assert.FileExists(t, path)

	path, err = b.Write("model.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.yaml"), path)

	path, err = b.Write("runs/model.json")
	require.NoError(t, err, "missing directories are created")
	assert.Equal(t, filepath.Join(dir, "runs", "model.json"), path)
	assert.FileExists(t, path)
}

func TestBuilder_WriteToStore(t *testing.T) {
	store := memory.NewStore()
	b := bigraph.New(bigraph.WithStore(store))
	require.NoError(t, b.Set(1.0, "x"))

	_, err := b.Write("model")
	require.NoError(t, err)

	doc, err := store.Load(context.Background(), "model")
	require.NoError(t, err)
	assert.Equal(t, 1.0, doc.State["x"])
}

func TestBuilder_Visualize(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(map[string]any{"x": 2.0}, "B"))
	require.NoError(t, b.Get("A").AddProcess("double",
		bigraph.WithInputs(map[string]domain.Path{"x": {"B", "x"}})))

	path, err := b.Visualize("model", ports.RenderOptions{ShowTypes: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(b.OutDir(), "model.mmd"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `[["A<br/>local:double"]]`)
	assert.Contains(t, string(data), `["x: float"]`)
}

func TestBuilder_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := newBuilder(t, bigraph.WithMetrics(reg))

	require.NoError(t, b.Set(1.0, "level"))
	require.NoError(t, b.Get("grow").AddProcess(processes.NameIncrease,
		bigraph.WithInputs(map[string]domain.Path{"level": {"level"}}),
		bigraph.WithOutputs(map[string]domain.Path{"level": {"level"}}),
	))
	require.NoError(t, b.Run(context.Background(), 2))

	count, err := testutil.GatherAndCount(reg, "bigraph_completions_total", "bigraph_cycles_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A second builder on the same registry reuses the collectors.
	bigraph.New(bigraph.WithMetrics(reg))
}

func TestBuilder_LifecycleHooks(t *testing.T) {
	var completions, failures int
	b := newBuilder(t, bigraph.WithLifecycleHooks(domain.LifecycleHooks{
		OnComplete: func(ctx context.Context, e *domain.CompletionEvent) {
			completions++
			if e.Err != nil {
				failures++
			}
		},
	}))

	require.NoError(t, b.Set(1.0, "x"))
	require.NoError(t, b.Root().Set("oops", "x"))
	require.NoError(t, b.Root().Set(bigraph.Type("float"), "x"))
	assert.Error(t, b.Complete())

	assert.Equal(t, 2, completions)
	assert.Equal(t, 1, failures)
}

func TestLoad(t *testing.T) {
	b := newBuilder(t)
	require.NoError(t, b.Set(map[string]any{"x": 2.0}, "B"))
	doc, err := b.Document()
	require.NoError(t, err)

	loaded, err := bigraph.Load(doc)
	require.NoError(t, err)
	assert.Equal(t, 2.0, loaded.Get("B", "x").Value())

	doc.State["A"] = map[string]any{
		domain.KeyType:      domain.KindProcess,
		domain.FieldAddress: "local:unknown",
	}
	_, err = bigraph.Load(doc)
	assert.ErrorIs(t, err, domain.ErrMissingProcess)
}
