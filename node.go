package bigraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/processes"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/aretw0/bigraph/pkg/schema"
	"github.com/aretw0/bigraph/pkg/tree"
)

// Node is a handle on a location of a Builder's document. It holds only its path:
// every read and write goes through the builder's canonical pair.
type Node struct {
	builder *Builder
	path    domain.Path
}

// Interface lists the declared port types of an edge.
type Interface struct {
	Inputs  registry.Ports
	Outputs registry.Ports
}

// Path returns the absolute path of the node.
func (n Node) Path() domain.Path {
	return n.path.Append()
}

// Get returns the descendant at keys. Missing locations are added to the index as
// empty branches; nothing is written to the document.
func (n Node) Get(keys ...string) Node {
	path := n.path.Append(keys...)
	n.builder.tree.Resolve(tree.Root, path)
	return Node{builder: n.builder, path: path}
}

// Value returns the state at the node, or nil when nothing is stored there.
func (n Node) Value() any {
	v, _ := domain.Lookup(n.builder.state, n.path)
	return v
}

// Schema returns the schema at the node, or nil when nothing is declared there.
func (n Node) Schema() any {
	v, _ := domain.Lookup(n.builder.schema, n.path)
	return v
}

// Children returns the keys under the node, from the document and from the index.
func (n Node) Children() []string {
	seen := map[string]bool{}
	if m, ok := n.Value().(map[string]any); ok && !domain.IsEdge(m) {
		for k := range m {
			seen[k] = true
		}
	}
	if id, ok := n.builder.tree.Find(tree.Root, n.path); ok {
		for _, k := range n.builder.tree.Children(id) {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set writes value at keys below the node. The write is provisional: it is checked
// at the next completion. See Declare for how value is interpreted.
func (n Node) Set(value any, keys ...string) error {
	target := n.Get(keys...)
	return target.assign(Declare(value))
}

func (n Node) assign(d Declaration) error {
	b := n.builder
	if len(n.path) == 0 {
		if err := rootDeclaration(d); err != nil {
			return err
		}
	}
	switch d := d.(type) {
	case TypeDeclaration:
		name, ok := d.Name.(string)
		if !ok || name == "" {
			return &domain.PathError{Path: n.path, Err: fmt.Errorf("%w: type name must be a non-empty string", domain.ErrInvalidOperation)}
		}
		decl := map[string]any{domain.KeyType: name}
		if d.HasDefault {
			decl[domain.KeyDefault] = domain.DeepCopy(d.Default)
		}
		n.branchAncestors()
		b.schema = domain.Assign(b.schema, n.path, decl)
		if d.HasValue {
			if err := n.write(d.Value); err != nil {
				return err
			}
		}

	case ValueDeclaration:
		n.detach()
		if len(n.path) == 0 {
			b.schema = map[string]any{}
		} else if current, ok := domain.Lookup(b.schema, n.path); ok {
			m, isMap := current.(map[string]any)
			name, typed := m[domain.KeyType].(string)
			if !isMap || !typed || domain.IsEdgeKind(name) || domain.IsEdge(d.Value) {
				domain.Remove(b.schema, n.path)
			}
		}
		if err := n.write(d.Value); err != nil {
			return err
		}

	case SubtreeDeclaration:
		if _, ok := n.Value().(map[string]any); !ok || domain.IsEdge(n.Value()) {
			n.detach()
			domain.Remove(b.schema, n.path)
			if err := n.write(map[string]any{}); err != nil {
				return err
			}
		}
		for _, key := range domain.Wires(d.Children) {
			if err := n.Get(key).assign(Declare(d.Children[key])); err != nil {
				return err
			}
		}
	}
	b.composite = nil
	return nil
}

// rootDeclaration rejects declarations that would make the root anything but a branch.
func rootDeclaration(d Declaration) error {
	switch d := d.(type) {
	case TypeDeclaration:
		return &domain.PathError{Path: domain.Path{}, Err: fmt.Errorf("%w: the root cannot be typed", domain.ErrInvalidOperation)}
	case ValueDeclaration:
		if m, ok := d.Value.(map[string]any); !ok || domain.IsEdge(m) {
			return &domain.PathError{Path: domain.Path{}, Err: fmt.Errorf("%w: the root holds a subtree, got %T", domain.ErrInvalidOperation, d.Value)}
		}
	}
	return nil
}

// write stores a copy of v in state, opening branches above it.
func (n Node) write(v any) error {
	b := n.builder
	if len(n.path) == 0 {
		if err := rootDeclaration(ValueDeclaration{Value: v}); err != nil {
			return err
		}
		b.state = domain.CopyMap(v.(map[string]any))
		return nil
	}
	n.branchAncestors()
	b.state = domain.Assign(b.state, n.path, domain.DeepCopy(v))
	return nil
}

// branchAncestors turns the scalar or edge ancestor of the node into an empty branch.
// Locations below an edge's config stay in its record.
func (n Node) branchAncestors() {
	b := n.builder
	for i := 1; i < len(n.path); i++ {
		prefix := n.path[:i]
		current, ok := domain.Lookup(b.state, prefix)
		if !ok {
			return
		}
		if _, isMap := current.(map[string]any); isMap && !domain.IsEdge(current) {
			continue
		}
		if domain.IsEdge(current) && n.path[i] == domain.FieldConfig {
			return
		}
		domain.Remove(b.schema, prefix)
		b.state = domain.Assign(b.state, prefix, map[string]any{})
		b.tree.Prune(b.tree.Resolve(tree.Root, prefix))
		b.tree.Resolve(tree.Root, n.path)
		return
	}
}

// detach discards the indexed descendants of the node.
func (n Node) detach() {
	id := n.builder.tree.Resolve(tree.Root, n.path)
	n.builder.tree.Prune(id)
}

// ProcessOption configures AddProcess.
type ProcessOption func(*domain.EdgeSpec)

// WithKind sets the edge kind ("process", "step" or "edge").
func WithKind(kind string) ProcessOption {
	return func(s *domain.EdgeSpec) {
		s.Kind = kind
	}
}

// WithConfig sets the process config. Declared defaults fill the missing keys.
func WithConfig(config map[string]any) ProcessOption {
	return func(s *domain.EdgeSpec) {
		s.Config = domain.CopyMap(config)
	}
}

// WithInputs wires input ports to paths relative to the parent of the edge.
func WithInputs(wires map[string]domain.Path) ProcessOption {
	return func(s *domain.EdgeSpec) {
		s.Inputs = wireMap(wires)
	}
}

// WithOutputs wires output ports to paths relative to the parent of the edge.
func WithOutputs(wires map[string]domain.Path) ProcessOption {
	return func(s *domain.EdgeSpec) {
		s.Outputs = wireMap(wires)
	}
}

// WithInterval sets the update interval of a process.
func WithInterval(interval float64) ProcessOption {
	return func(s *domain.EdgeSpec) {
		s.Interval = interval
	}
}

func wireMap(wires map[string]domain.Path) map[string]any {
	out := make(map[string]any, len(wires))
	for port, target := range wires {
		out[port] = target.Wire()
	}
	return out
}

// AddProcess writes an edge record at the node and completes the document.
// name is a registered process name or a full address ("local:!pkg.Name").
// Invalid records and unknown processes are reported before anything is written.
func (n Node) AddProcess(name string, opts ...ProcessOption) error {
	address := name
	if !strings.Contains(name, ":") {
		address = domain.LocalAddress(name)
	}
	spec := &domain.EdgeSpec{Kind: domain.KindProcess, Address: address}
	for _, opt := range opts {
		opt(spec)
	}
	if err := spec.Validate(); err != nil {
		return &domain.PathError{Path: n.path, Err: err}
	}
	impl, err := n.builder.core.Processes().Resolve(address)
	if err != nil {
		return &domain.PathError{Path: n.path, Err: err}
	}
	spec.Config = schema.ConfigDefaults(impl.ConfigSchema, spec.Config)

	if err := n.assign(ValueDeclaration{Value: spec.Map()}); err != nil {
		return err
	}
	n.builder.logger.Debug("process added", "path", n.path.String(), "address", address)
	return n.builder.Complete()
}

// Emitter adds a step named name under the node that records the stores at paths
// (relative to the node) each time it is triggered. Ports are named after the
// path keys joined with "_".
func (n Node) Emitter(name string, paths ...domain.Path) error {
	emit := map[string]any{}
	wires := map[string]domain.Path{}
	for _, p := range paths {
		port := strings.Join(p, "_")
		emit[port] = schema.Any().Name()
		wires[port] = p
	}
	return n.Get(name).AddProcess(processes.NameRAMEmitter,
		WithKind(domain.KindStep),
		WithConfig(map[string]any{"emit": emit}),
		WithInputs(wires),
	)
}

// edge decodes the edge record at the node.
func (n Node) edge() (*domain.EdgeSpec, error) {
	if !n.builder.core.Check(domain.KindEdge, n.Value()) {
		return nil, &domain.PathError{Path: n.path, Err: fmt.Errorf("%w: not an edge", domain.ErrInvalidOperation)}
	}
	spec, err := domain.DecodeEdge(n.Value())
	if err != nil {
		return nil, &domain.PathError{Path: n.path, Err: err}
	}
	return spec, nil
}

// ports returns the declared ports of the edge at the node. The completed schema is
// used when present; otherwise the process is instantiated from its record.
func (n Node) ports(spec *domain.EdgeSpec) (inputs, outputs schema.Schema, err error) {
	core := n.builder.core
	if s, ok := n.Schema().(map[string]any); ok {
		if _, declared := s[domain.KeyInputs]; declared {
			return core.Ports(s)
		}
	}
	impl, err := core.Processes().Resolve(spec.Address)
	if err != nil {
		return nil, nil, &domain.PathError{Path: n.path, Err: err}
	}
	config, err := schema.CompleteConfig(impl.ConfigSchema, spec.Config)
	if err != nil {
		return nil, nil, &domain.PathError{Path: n.path, Err: fmt.Errorf("%w: config: %w", domain.ErrSchemaViolation, err)}
	}
	proc, err := impl.New(config)
	if err != nil {
		return nil, nil, &domain.PathError{Path: n.path, Err: err}
	}
	if inputs, err = core.Types().Parse(proc.Inputs()); err != nil {
		return nil, nil, err
	}
	if outputs, err = core.Types().Parse(proc.Outputs()); err != nil {
		return nil, nil, err
	}
	return inputs, outputs, nil
}

// Interface returns the declared port types of the edge at the node.
func (n Node) Interface() (Interface, error) {
	spec, err := n.edge()
	if err != nil {
		return Interface{}, err
	}
	inputs, outputs, err := n.ports(spec)
	if err != nil {
		return Interface{}, err
	}
	return Interface{Inputs: portNames(inputs), Outputs: portNames(outputs)}, nil
}

func portNames(s schema.Schema) registry.Ports {
	out := make(registry.Ports, len(s))
	for port, t := range s {
		out[port] = t.Name()
	}
	return out
}

// Connect wires port to target, a path relative to the parent of the edge.
// The port is wired on each side (input, output) that declares it. Undeclared ports
// fail with domain.ErrPortNotDeclared unless the builder is lenient.
func (n Node) Connect(port string, target domain.Path) error {
	spec, err := n.edge()
	if err != nil {
		return err
	}
	inputs, outputs, err := n.ports(spec)
	if err != nil {
		return err
	}

	_, isInput := inputs[port]
	_, isOutput := outputs[port]
	if !isInput && !isOutput {
		if n.builder.lenient {
			n.builder.logger.Warn("ignoring undeclared port", "path", n.path.String(), "port", port)
			return nil
		}
		return &domain.PortError{Path: n.path, Port: port, Err: domain.ErrPortNotDeclared}
	}
	if isInput {
		spec.Inputs = setWire(spec.Inputs, port, target)
	}
	if isOutput {
		spec.Outputs = setWire(spec.Outputs, port, target)
	}
	n.store(spec)
	return nil
}

// ConnectAll wires every unwired declared port to the store named after it plus
// suffix. On a branch it applies to every edge below.
func (n Node) ConnectAll(suffix string) error {
	if !domain.IsEdge(n.Value()) {
		branch, ok := n.Value().(map[string]any)
		if !ok {
			return &domain.PathError{Path: n.path, Err: fmt.Errorf("%w: not an edge or a branch", domain.ErrInvalidOperation)}
		}
		for _, key := range domain.Wires(branch) {
			child := n.Get(key)
			if _, isMap := branch[key].(map[string]any); !isMap {
				continue
			}
			if err := child.ConnectAll(suffix); err != nil {
				return err
			}
		}
		return nil
	}

	spec, err := n.edge()
	if err != nil {
		return err
	}
	inputs, outputs, err := n.ports(spec)
	if err != nil {
		return err
	}
	for _, port := range inputs.Fields() {
		if _, wired := spec.Inputs[port]; !wired {
			spec.Inputs = setWire(spec.Inputs, port, domain.Path{port + suffix})
		}
	}
	for _, port := range outputs.Fields() {
		if _, wired := spec.Outputs[port]; !wired {
			spec.Outputs = setWire(spec.Outputs, port, domain.Path{port + suffix})
		}
	}
	n.store(spec)
	return nil
}

func setWire(wires map[string]any, port string, target domain.Path) map[string]any {
	if wires == nil {
		wires = map[string]any{}
	}
	wires[port] = target.Wire()
	return wires
}

// store writes an edited edge record back without touching its schema.
func (n Node) store(spec *domain.EdgeSpec) {
	n.builder.state = domain.Assign(n.builder.state, n.path, spec.Map())
	n.builder.composite = nil
}
