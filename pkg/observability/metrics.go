package observability

import (
	"context"
	"errors"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "bigraph"

// Metrics holds the collectors of one builder.
type Metrics struct {
	Completions        *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
	Updates            *prometheus.CounterVec
	Cycles             prometheus.Counter
	SimulationTime     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "completions_total",
				Help:      "Total number of document completions by result",
			},
			[]string{"result"},
		),
		CompletionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "completion_duration_seconds",
				Help:      "Duration of document completions",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		Updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "edge_updates_total",
				Help:      "Total number of updates applied by edges",
			},
			[]string{"edge", "kind"},
		),
		Cycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cycles_total",
				Help:      "Total number of simulation cycles",
			},
		),
		SimulationTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "simulation_time",
				Help:      "Current simulation clock",
			},
		),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.Completions, err = register(reg, m.Completions); err != nil {
		return nil, err
	}
	if m.CompletionDuration, err = register(reg, m.CompletionDuration); err != nil {
		return nil, err
	}
	if m.Updates, err = register(reg, m.Updates); err != nil {
		return nil, err
	}
	if m.Cycles, err = register(reg, m.Cycles); err != nil {
		return nil, err
	}
	if m.SimulationTime, err = register(reg, m.SimulationTime); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg. When an identical collector is already registered, that
// one is returned so several builders can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnComplete: func(ctx context.Context, e *domain.CompletionEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Completions.WithLabelValues(result).Inc()
			m.CompletionDuration.Observe(e.Duration.Seconds())
		},
		OnUpdate: func(ctx context.Context, e *domain.UpdateEvent) {
			m.Updates.WithLabelValues(e.Edge.String(), e.Kind).Inc()
		},
		OnCycle: func(ctx context.Context, e *domain.CycleEvent) {
			m.Cycles.Inc()
			m.SimulationTime.Set(e.Time)
		},
	}
}

// Merge combines hooks so that every non-nil callback of each runs in order.
func Merge(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnComplete != nil {
			prev := out.OnComplete
			out.OnComplete = func(ctx context.Context, e *domain.CompletionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnComplete(ctx, e)
			}
		}
		if h.OnUpdate != nil {
			prev := out.OnUpdate
			out.OnUpdate = func(ctx context.Context, e *domain.UpdateEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnUpdate(ctx, e)
			}
		}
		if h.OnCycle != nil {
			prev := out.OnCycle
			out.OnCycle = func(ctx context.Context, e *domain.CycleEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnCycle(ctx, e)
			}
		}
	}
	return out
}
