package ports

import (
	"context"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
)

// Runtime builds executable composites from completed documents.
type Runtime interface {
	// Build instantiates every edge of doc through reg. doc must be completed.
	Build(doc domain.Document, reg *registry.Registry) (Composite, error)
}

// Composite is an executable bigraph.
type Composite interface {
	// Run advances the simulation clock by interval, applying every update that falls due.
	// It blocks until the interval is consumed or ctx is done.
	Run(ctx context.Context, interval float64) error

	// GatherResults evaluates JSONPath queries against the state.
	// Without queries the whole state is returned under "$".
	GatherResults(queries ...string) (map[string]any, error)

	// State returns a copy of the current state.
	State() map[string]any

	// Composition returns a copy of the schema the composite was built from.
	Composition() map[string]any

	// Time returns the simulation clock.
	Time() float64

	// Emitted returns the histories recorded by emitter steps, keyed by their path.
	Emitted() map[string][]map[string]any
}
