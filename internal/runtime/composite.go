package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/aretw0/bigraph/pkg/schema"
)

// epsilon absorbs the rounding of accumulated float intervals when comparing times.
const epsilon = 1e-9

type pending struct {
	due    float64
	update map[string]any
}

// edge is an instantiated process or step with its wires made absolute.
type edge struct {
	path     domain.Path
	address  string
	kind     string
	proc     registry.Process
	interval float64

	inPorts  schema.Schema
	outPorts schema.Schema
	inputs   map[string]domain.Path
	outputs  map[string]domain.Path

	time    float64
	pending *pending
}

// Composite is the executable form of a document. It owns a private copy of the
// state and is not safe for concurrent use.
type Composite struct {
	state       map[string]any
	composition map[string]any
	types       *schema.Registry
	logger      *slog.Logger
	hooks       domain.LifecycleHooks

	processes []*edge
	steps     []*edge
	time      float64
	primed    bool
}

// Run advances the clock by interval.
//
// Each process computes its update from the state at its own time; the update is
// applied when the clock reaches that time plus the process interval. Updates not
// yet due when the interval ends are kept for the next call. Steps run once before
// the first cycle and after every cycle.
func (c *Composite) Run(ctx context.Context, interval float64) error {
	if interval < 0 || math.IsNaN(interval) {
		return fmt.Errorf("%w: run interval must be a non-negative number", domain.ErrInvalidOperation)
	}
	end := c.time + interval

	if !c.primed {
		if err := c.runSteps(ctx); err != nil {
			return err
		}
		c.primed = true
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, p := range c.processes {
			if p.pending != nil {
				continue
			}
			update, err := c.compute(p)
			if err != nil {
				return err
			}
			p.pending = &pending{due: p.time + p.interval, update: update}
		}

		next, ok := c.nextDue()
		if !ok || next > end+epsilon {
			c.time = end
			return nil
		}
		c.time = next

		for _, p := range c.processes {
			if p.pending == nil || math.Abs(p.pending.due-next) > epsilon {
				continue
			}
			if err := c.apply(ctx, p, p.pending.update); err != nil {
				return err
			}
			p.time = next
			p.pending = nil
		}
		if err := c.runSteps(ctx); err != nil {
			return err
		}

		c.logger.Debug("cycle", "time", c.time)
		if c.hooks.OnCycle != nil {
			c.hooks.OnCycle(ctx, &domain.CycleEvent{EventBase: domain.NewEventBase(domain.EventCycle), Time: c.time})
		}
	}
}

func (c *Composite) nextDue() (float64, bool) {
	next, ok := math.Inf(1), false
	for _, p := range c.processes {
		if p.pending != nil && p.pending.due < next {
			next, ok = p.pending.due, true
		}
	}
	return next, ok
}

func (c *Composite) runSteps(ctx context.Context) error {
	for _, s := range c.steps {
		update, err := c.compute(s)
		if err != nil {
			return err
		}
		if err := c.apply(ctx, s, update); err != nil {
			return err
		}
	}
	return nil
}

// compute calls the edge with a copy of the stores wired to its inputs.
func (c *Composite) compute(e *edge) (map[string]any, error) {
	view := make(map[string]any, len(e.inputs))
	for port, target := range e.inputs {
		v, _ := domain.Lookup(c.state, target)
		view[port] = domain.DeepCopy(v)
	}
	update, err := e.proc.Update(view, e.interval)
	if err != nil {
		return nil, &domain.PathError{Path: e.path, Err: fmt.Errorf("update of %q failed: %w", e.address, err)}
	}
	if err := schema.ValidatePresent(e.outPorts, update); err != nil {
		return nil, &domain.PathError{Path: e.path, Err: fmt.Errorf("update of %q: %w", e.address, err)}
	}
	return update, nil
}

// apply writes an update into the stores wired to the output ports, combining it
// with the current values using the store type's apply rule.
func (c *Composite) apply(ctx context.Context, e *edge, update map[string]any) error {
	for _, port := range domain.Wires(update) {
		target, wired := e.outputs[port]
		if !wired {
			continue
		}
		t := c.storeType(target, e.outPorts[port])
		current, _ := domain.Lookup(c.state, target)
		next, err := t.Apply(current, update[port])
		if err != nil {
			return domain.Violation(target, "applying port %q of %q: %v", port, e.path.String(), err)
		}
		c.state = domain.Assign(c.state, target, next)
	}

	if c.hooks.OnUpdate != nil {
		c.hooks.OnUpdate(ctx, &domain.UpdateEvent{
			EventBase: domain.NewEventBase(domain.EventUpdate),
			Edge:      e.path,
			Kind:      e.kind,
			Time:      c.time,
			Update:    update,
		})
	}
	return nil
}

// storeType returns the declared type of a store, falling back to the port type.
func (c *Composite) storeType(path domain.Path, port schema.Type) schema.Type {
	decl, ok := domain.Lookup(c.composition, path)
	if ok {
		if m, isMap := decl.(map[string]any); isMap {
			if name, ok := m[domain.KeyType].(string); ok {
				if t, err := c.types.Lookup(name); err == nil {
					return t
				}
			}
		}
	}
	if port != nil {
		return port
	}
	return schema.Any()
}

// State returns a copy of the current state.
func (c *Composite) State() map[string]any {
	return domain.CopyMap(c.state)
}

// Composition returns a copy of the schema the composite runs.
func (c *Composite) Composition() map[string]any {
	return domain.CopyMap(c.composition)
}

// Time returns the simulation clock.
func (c *Composite) Time() float64 {
	return c.time
}

// Emitted returns the histories of the recording edges keyed by path.
func (c *Composite) Emitted() map[string][]map[string]any {
	out := map[string][]map[string]any{}
	for _, group := range [][]*edge{c.steps, c.processes} {
		for _, e := range group {
			if rec, ok := e.proc.(registry.Recorder); ok {
				out[e.path.String()] = rec.History()
			}
		}
	}
	return out
}
