package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	hooks.OnComplete(ctx, &domain.CompletionEvent{Duration: time.Millisecond})
	hooks.OnComplete(ctx, &domain.CompletionEvent{Err: errors.New("boom")})
	hooks.OnUpdate(ctx, &domain.UpdateEvent{Edge: domain.Path{"cell", "grow"}, Kind: domain.KindProcess})
	hooks.OnCycle(ctx, &domain.CycleEvent{Time: 2})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Updates.WithLabelValues("cell/grow", "process")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SimulationTime))

	count, err := testutil.GatherAndCount(reg, "bigraph_completions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewMetrics_RegistersTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.NoError(t, err, "already registered collectors are tolerated")

	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Cycles)
}

func TestMerge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnCycle: func(ctx context.Context, e *domain.CycleEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnCycle:  func(ctx context.Context, e *domain.CycleEvent) { calls = append(calls, "b") },
		OnUpdate: func(ctx context.Context, e *domain.UpdateEvent) { calls = append(calls, "update") },
	}

	merged := observability.Merge(a, domain.LifecycleHooks{}, b)
	merged.OnCycle(context.Background(), &domain.CycleEvent{})
	merged.OnUpdate(context.Background(), &domain.UpdateEvent{})
	assert.Nil(t, merged.OnComplete)
	assert.Equal(t, []string{"a", "b", "update"}, calls)
}
