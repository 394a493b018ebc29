package runtime

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/bigraph/internal/logging"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/ports"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/aretw0/bigraph/pkg/schema"
)

// Runtime builds composites from completed documents.
type Runtime struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	types  *schema.Registry
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger composites report to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on every composite.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runtime) {
		r.hooks = hooks
	}
}

// WithTypes sets the registry store types are resolved in. It must be the registry
// the document was completed with when it declares custom types.
func WithTypes(types *schema.Registry) Option {
	return func(r *Runtime) {
		r.types = types
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		logger: logging.NewNop(),
		types:  schema.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.Runtime = (*Runtime)(nil)

// Build instantiates every edge of doc. Wires are resolved to absolute paths once.
func (r *Runtime) Build(doc domain.Document, reg *registry.Registry) (ports.Composite, error) {
	c := &Composite{
		state:       domain.CopyMap(doc.State),
		composition: domain.CopyMap(doc.Schema),
		types:       r.types,
		logger:      r.logger,
		hooks:       r.hooks,
	}

	var found []domain.Path
	collectEdges(domain.Path{}, c.state, &found)

	for _, path := range found {
		record, _ := domain.Lookup(c.state, path)
		e, err := r.instantiate(path, record, reg)
		if err != nil {
			return nil, err
		}
		if e.kind == domain.KindStep {
			c.steps = append(c.steps, e)
		} else {
			c.processes = append(c.processes, e)
		}
	}

	r.logger.Debug("composite built", "processes", len(c.processes), "steps", len(c.steps))
	return c, nil
}

func (r *Runtime) instantiate(path domain.Path, record any, reg *registry.Registry) (*edge, error) {
	spec, err := domain.DecodeEdge(record)
	if err != nil {
		return nil, &domain.PathError{Path: path, Err: err}
	}
	impl, err := reg.Resolve(spec.Address)
	if err != nil {
		return nil, &domain.PathError{Path: path, Err: err}
	}
	config, err := schema.CompleteConfig(impl.ConfigSchema, spec.Config)
	if err != nil {
		return nil, &domain.PathError{Path: path, Err: fmt.Errorf("%w: config: %w", domain.ErrSchemaViolation, err)}
	}
	proc, err := impl.New(config)
	if err != nil {
		return nil, &domain.PathError{Path: path, Err: fmt.Errorf("cannot instantiate %q: %w", spec.Address, err)}
	}

	kind := spec.Kind
	if kind == domain.KindEdge {
		kind = impl.Kind
	}
	interval := spec.Interval
	if interval <= 0 {
		interval = domain.DefaultInterval
	}

	e := &edge{
		path:     path,
		address:  spec.Address,
		kind:     kind,
		proc:     proc,
		interval: interval,
	}
	if e.inPorts, err = r.types.Parse(proc.Inputs()); err != nil {
		return nil, &domain.PathError{Path: path, Err: err}
	}
	if e.outPorts, err = r.types.Parse(proc.Outputs()); err != nil {
		return nil, &domain.PathError{Path: path, Err: err}
	}
	if e.inputs, err = resolveWires(path, spec.Inputs, e.inPorts); err != nil {
		return nil, err
	}
	if e.outputs, err = resolveWires(path, spec.Outputs, e.outPorts); err != nil {
		return nil, err
	}
	return e, nil
}

func resolveWires(path domain.Path, wires map[string]any, ports schema.Schema) (map[string]domain.Path, error) {
	out := make(map[string]domain.Path, len(wires))
	for port, raw := range wires {
		if _, ok := ports[port]; !ok {
			return nil, &domain.PortError{Path: path, Port: port, Err: domain.ErrPortNotDeclared}
		}
		rel, ok := domain.ToPath(raw)
		if !ok {
			return nil, domain.Violation(path, "port %q has an invalid wire %v", port, raw)
		}
		out[port] = path.Parent().Resolve(rel)
	}
	return out, nil
}

// collectEdges appends the paths of all edges under tree in sorted key order.
// Edges are leaves: records nested inside an edge are not visited.
func collectEdges(path domain.Path, tree map[string]any, found *[]domain.Path) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		child := path.Append(key)
		if domain.IsEdge(tree[key]) {
			*found = append(*found, child)
			continue
		}
		if m, ok := tree[key].(map[string]any); ok {
			collectEdges(child, m, found)
		}
	}
}
