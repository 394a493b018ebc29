package schema

import (
	"fmt"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
)

// Core is the type system of a builder: it owns the type registry and the process
// registry and implements completion, capability checks and serialization.
// Registries are injected per Core; nothing is shared between instances.
type Core struct {
	types     *Registry
	processes *registry.Registry
}

// Option configures a Core.
type Option func(*Core)

// WithTypes replaces the type registry.
func WithTypes(types *Registry) Option {
	return func(c *Core) {
		c.types = types
	}
}

// WithProcesses replaces the process registry.
func WithProcesses(processes *registry.Registry) Option {
	return func(c *Core) {
		c.processes = processes
	}
}

// NewCore creates a Core with the built-in types and an empty process registry.
func NewCore(opts ...Option) *Core {
	c := &Core{}
	for _, opt := range opts {
		opt(c)
	}
	if c.types == nil {
		c.types = NewRegistry()
	}
	if c.processes == nil {
		c.processes = registry.NewRegistry()
	}
	return c
}

// Types returns the type registry.
func (c *Core) Types() *Registry { return c.types }

// Processes returns the process registry.
func (c *Core) Processes() *registry.Registry { return c.processes }

// Check reports whether value satisfies a capability: "edge", "process", "step",
// or the name of a registered type.
func (c *Core) Check(capability string, value any) bool {
	switch capability {
	case domain.KindEdge:
		return domain.IsEdge(value)
	case domain.KindProcess, domain.KindStep:
		if !domain.IsEdge(value) {
			return false
		}
		return value.(map[string]any)[domain.KeyType] == capability
	}
	t, err := c.types.Lookup(capability)
	if err != nil {
		return false
	}
	return t.Validate(value) == nil
}

// Serialize returns the transportable form of a (schema, state) pair. The result is
// a deep copy holding only JSON values.
func (c *Core) Serialize(schema, state map[string]any) (domain.Document, error) {
	s, err := normalize(orEmpty(schema))
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to serialize schema: %w", err)
	}
	st, err := normalize(orEmpty(state))
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to serialize state: %w", err)
	}
	return domain.Document{Schema: s.(map[string]any), State: st.(map[string]any)}, nil
}

// Ports returns the declared port schemas of an edge schema node.
func (c *Core) Ports(edgeSchema any) (inputs, outputs Schema, err error) {
	m, ok := edgeSchema.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: schema is not an edge", domain.ErrInvalidOperation)
	}
	if inputs, err = c.portSchema(m[domain.KeyInputs]); err != nil {
		return nil, nil, err
	}
	if outputs, err = c.portSchema(m[domain.KeyOutputs]); err != nil {
		return nil, nil, err
	}
	return inputs, outputs, nil
}

func (c *Core) portSchema(v any) (Schema, error) {
	m, _ := v.(map[string]any)
	names := make(map[string]string, len(m))
	for port, name := range m {
		s, ok := name.(string)
		if !ok {
			return nil, fmt.Errorf("%w: port %q has no type name", domain.ErrSchemaViolation, port)
		}
		names[port] = s
	}
	return c.types.Parse(names)
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
