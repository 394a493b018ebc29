package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/bigraph/pkg/domain"
)

// Complete reconciles a partially specified (schema, state) pair. It returns new
// trees and never mutates its arguments.
//
// The walk visits keys in sorted order. Leaves get a type (declared or inferred from
// the literal) and a canonical value (the declared default when state holds none).
// Edges are resolved in the process registry: their config is completed from the
// process config schema, the process is instantiated to read its ports, and the edge
// schema is rewritten from them. Once the walk is done every wired location is
// materialized with the type of its port.
//
// Complete is idempotent: completing its own output yields the same pair.
func (c *Core) Complete(schema, state map[string]any) (map[string]any, map[string]any, error) {
	w := &completion{core: c}
	outSchema, outState, err := w.branch(domain.Path{}, domain.CopyMap(schema), domain.CopyMap(state))
	if err != nil {
		return nil, nil, err
	}
	for _, wr := range w.wires {
		if err := w.materialize(outSchema, outState, wr); err != nil {
			return nil, nil, err
		}
	}
	return outSchema, outState, nil
}

// wire is a port binding collected during the walk, with its target made absolute.
type wire struct {
	edge   domain.Path
	port   string
	target domain.Path
	typ    Type
}

type completion struct {
	core  *Core
	wires []wire
}

// node completes one location. present reports whether state holds a value there.
func (w *completion) node(path domain.Path, sch any, val any, present bool) (any, any, error) {
	if name, ok := sch.(string); ok {
		sch = map[string]any{domain.KeyType: name}
	}
	decl, isMap := sch.(map[string]any)
	if sch != nil && !isMap {
		return nil, nil, domain.Violation(path, "schema must be a type name or a map, got %T", sch)
	}

	if present && domain.IsEdge(val) {
		return w.edge(path, val.(map[string]any))
	}

	if raw, ok := decl[domain.KeyType]; ok {
		name, ok := raw.(string)
		if !ok {
			return nil, nil, domain.Violation(path, "type marker must be a string, got %T", raw)
		}
		if !domain.IsEdgeKind(name) {
			return w.leaf(path, decl, name, val, present)
		}
		// The schema of an edge is derived from its record; without one it is stale.
		decl = nil
	}

	if !present {
		return w.branch(path, decl, map[string]any{})
	}
	if m, ok := val.(map[string]any); ok {
		return w.branch(path, decl, m)
	}
	if len(childKeys(decl)) > 0 {
		return nil, nil, domain.Violation(path, "value %v conflicts with a declared subtree", val)
	}
	return w.leaf(path, nil, Infer(val).Name(), val, true)
}

func (w *completion) branch(path domain.Path, decl, state map[string]any) (map[string]any, map[string]any, error) {
	for key := range state {
		if domain.IsMarker(key) {
			return nil, nil, domain.Violation(path, "reserved key %q in state", key)
		}
	}

	outSchema := map[string]any{}
	outState := map[string]any{}
	for _, key := range unionKeys(decl, state) {
		val, present := state[key]
		s, v, err := w.node(path.Append(key), decl[key], val, present)
		if err != nil {
			return nil, nil, err
		}
		outSchema[key] = s
		outState[key] = v
	}
	return outSchema, outState, nil
}

func (w *completion) leaf(path domain.Path, decl map[string]any, name string, val any, present bool) (any, any, error) {
	t, err := w.core.types.Lookup(name)
	if err != nil {
		return nil, nil, domain.Violation(path, "%v", err)
	}

	out := map[string]any{domain.KeyType: t.Name()}
	def, hasDefault := decl[domain.KeyDefault]
	if hasDefault {
		out[domain.KeyDefault] = def
	} else {
		def = t.Default()
	}
	if !present || val == nil {
		val = domain.DeepCopy(def)
	}
	if val == nil {
		return out, nil, nil
	}

	coerced, err := t.Coerce(val)
	if err != nil {
		return nil, nil, domain.Violation(path, "value %v is not a valid %s: %v", val, t.Name(), err)
	}
	return out, coerced, nil
}

func (w *completion) edge(path domain.Path, record map[string]any) (any, any, error) {
	spec, err := domain.DecodeEdge(record)
	if err != nil {
		return nil, nil, &domain.PathError{Path: path.Append(), Err: err}
	}
	if err := spec.Validate(); err != nil {
		return nil, nil, domain.Violation(path, "%v", err)
	}

	impl, err := w.core.processes.Resolve(spec.Address)
	if err != nil {
		return nil, nil, &domain.PathError{Path: path.Append(), Err: err}
	}
	if spec.Kind == domain.KindEdge {
		spec.Kind = impl.Kind
	}

	config, err := CompleteConfig(impl.ConfigSchema, spec.Config)
	if err != nil {
		return nil, nil, &domain.PathError{
			Path: path.Append(),
			Err:  fmt.Errorf("%w: config of %q: %w", domain.ErrSchemaViolation, spec.Address, err),
		}
	}
	spec.Config = config

	proc, err := impl.New(config)
	if err != nil {
		return nil, nil, &domain.PathError{
			Path: path.Append(),
			Err:  fmt.Errorf("%w: cannot instantiate %q: %w", domain.ErrSchemaViolation, spec.Address, err),
		}
	}
	inputs, err := w.core.types.Parse(proc.Inputs())
	if err != nil {
		return nil, nil, domain.Violation(path, "inputs of %q: %v", spec.Address, err)
	}
	outputs, err := w.core.types.Parse(proc.Outputs())
	if err != nil {
		return nil, nil, domain.Violation(path, "outputs of %q: %v", spec.Address, err)
	}

	if spec.Inputs, err = w.bind(path, spec.Inputs, inputs); err != nil {
		return nil, nil, err
	}
	if spec.Outputs, err = w.bind(path, spec.Outputs, outputs); err != nil {
		return nil, nil, err
	}

	edgeSchema := map[string]any{
		domain.KeyType:    spec.Kind,
		domain.KeyInputs:  inputs.Names(),
		domain.KeyOutputs: outputs.Names(),
	}
	return edgeSchema, spec.Map(), nil
}

// bind normalizes the wires of one port set and records them for materialization.
// Targets are relative to the edge's parent.
func (w *completion) bind(path domain.Path, wires map[string]any, ports Schema) (map[string]any, error) {
	out := make(map[string]any, len(wires))
	for _, port := range domain.Wires(wires) {
		t, ok := ports[port]
		if !ok {
			return nil, &domain.PortError{Path: path.Append(), Port: port, Err: domain.ErrPortNotDeclared}
		}
		rel, ok := domain.ToPath(wires[port])
		if !ok || len(rel) == 0 {
			return nil, domain.Violation(path, "port %q has an invalid wire %v", port, wires[port])
		}
		out[port] = rel.Wire()
		w.wires = append(w.wires, wire{
			edge:   path.Append(),
			port:   port,
			target: path.Parent().Resolve(rel),
			typ:    t,
		})
	}
	return out, nil
}

// materialize makes sure the target of a wire exists and holds a value of the port type.
func (w *completion) materialize(schema, state map[string]any, wr wire) error {
	if len(wr.target) == 0 {
		return domain.Violation(wr.edge, "port %q is wired to the root", wr.port)
	}
	for i := 1; i < len(wr.target); i++ {
		prefix := wr.target[:i]
		v, ok := domain.Lookup(state, prefix)
		if !ok {
			break
		}
		if _, isMap := v.(map[string]any); !isMap || domain.IsEdge(v) || isTyped(schema, prefix) {
			return domain.Violation(wr.edge, "port %q wire %q passes through %q", wr.port, wr.target.String(), prefix.String())
		}
	}

	current, exists := domain.Lookup(state, wr.target)
	if !exists || (current == nil && typeName(schema, wr.target) == "any") {
		domain.Assign(state, wr.target, domain.DeepCopy(wr.typ.Default()))
		domain.Assign(schema, wr.target, map[string]any{domain.KeyType: wr.typ.Name()})
		return nil
	}
	if domain.IsEdge(current) {
		return domain.Violation(wr.edge, "port %q is wired onto the edge at %q", wr.port, wr.target.String())
	}

	name := typeName(schema, wr.target)
	if name == "" {
		// A subtree can only be read or written whole by untyped or map ports.
		switch wr.typ.(type) {
		case *AnyType, *MapType:
			return nil
		}
		return domain.Violation(wr.edge, "port %q of type %s is wired to the subtree %q", wr.port, wr.typ.Name(), wr.target.String())
	}
	if name == wr.typ.Name() || wr.typ.Name() == "any" {
		return nil
	}

	// The store adopts the port type when its value is valid under it.
	coerced, err := wr.typ.Coerce(current)
	if err != nil {
		return domain.Violation(wr.target, "store of type %s cannot serve port %q of type %s: %v", name, wr.port, wr.typ.Name(), err)
	}
	domain.Assign(state, wr.target, coerced)
	decl, _ := domain.Lookup(schema, wr.target)
	decl.(map[string]any)[domain.KeyType] = wr.typ.Name()
	return nil
}

func isTyped(schema map[string]any, path domain.Path) bool {
	return typeName(schema, path) != ""
}

func typeName(schema map[string]any, path domain.Path) string {
	decl, ok := domain.Lookup(schema, path)
	if !ok {
		return ""
	}
	m, _ := decl.(map[string]any)
	name, _ := m[domain.KeyType].(string)
	return name
}

// childKeys returns the non-marker keys of a schema branch.
func childKeys(decl map[string]any) []string {
	keys := make([]string, 0, len(decl))
	for k := range decl {
		if !domain.IsMarker(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func unionKeys(decl, state map[string]any) []string {
	seen := make(map[string]struct{}, len(decl)+len(state))
	for _, k := range childKeys(decl) {
		seen[k] = struct{}{}
	}
	for k := range state {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
