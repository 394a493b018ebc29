package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps type names to types. Names of the form "[T]" are parsed on lookup
// into slices of T. A Registry is owned by one Core and is not safe for concurrent use.
type Registry struct {
	types map[string]Type
}

// NewRegistry creates a registry holding the built-in types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]Type)}
	for _, t := range []Type{Any(), String(), Int(), Float(), Bool(), Map()} {
		r.types[t.Name()] = t
	}
	return r
}

// Register adds or replaces a named type.
func (r *Registry) Register(name string, t Type) error {
	if name == "" || t == nil {
		return fmt.Errorf("type registration requires a name and a type")
	}
	if strings.HasPrefix(name, "[") {
		return fmt.Errorf("type name %q is reserved for lists", name)
	}
	r.types[name] = t
	return nil
}

// Lookup converts a type name to a Type.
// Supports registered names and lists of them: "[float]", "[[string]]".
func (r *Registry) Lookup(name string) (Type, error) {
	// Handle slice types: [string], [int], etc.
	if len(name) > 2 && name[0] == '[' && name[len(name)-1] == ']' {
		elemType, err := r.Lookup(name[1 : len(name)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
	return t, nil
}

// Parse converts a map of port names to type names into a Schema.
// Example: {"level": "float", "tags": "[string]"}
func (r *Registry) Parse(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := r.Lookup(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

// List returns the registered type names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
