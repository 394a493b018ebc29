package bigraph

import (
	"github.com/aretw0/bigraph/pkg/domain"
)

// Declaration is the classified form of a value written with Set.
// It is one of TypeDeclaration, ValueDeclaration or SubtreeDeclaration.
type Declaration interface {
	declaration()
}

// TypeDeclaration declares the type of a location, with an optional default and an
// optional value written alongside.
type TypeDeclaration struct {
	Name       any
	Default    any
	HasDefault bool
	Value      any
	HasValue   bool
}

// ValueDeclaration writes a literal (or a whole edge record) into state.
type ValueDeclaration struct {
	Value any
}

// SubtreeDeclaration writes each child under its own key.
type SubtreeDeclaration struct {
	Children map[string]any
}

func (TypeDeclaration) declaration()    {}
func (ValueDeclaration) declaration()   {}
func (SubtreeDeclaration) declaration() {}

// Declare classifies v:
//   - a map holding an edge record ("_type" naming an edge kind) is a value;
//   - a map holding "_type" is a type declaration ("_default" and "_value" are honoured);
//   - a map holding "_value" is a value;
//   - any other map is a subtree;
//   - anything else is a value.
func Declare(v any) Declaration {
	m, ok := v.(map[string]any)
	if !ok {
		return ValueDeclaration{Value: v}
	}
	if domain.IsEdge(m) {
		return ValueDeclaration{Value: m}
	}
	if name, typed := m[domain.KeyType]; typed {
		d := TypeDeclaration{Name: name}
		d.Default, d.HasDefault = m[domain.KeyDefault]
		d.Value, d.HasValue = m[domain.KeyValue]
		return d
	}
	if value, ok := m[domain.KeyValue]; ok {
		return ValueDeclaration{Value: value}
	}
	return SubtreeDeclaration{Children: m}
}

// Type is shorthand for a type declaration.
func Type(name string) map[string]any {
	return map[string]any{domain.KeyType: name}
}

// TypeWithDefault is shorthand for a type declaration carrying a default.
func TypeWithDefault(name string, def any) map[string]any {
	return map[string]any{domain.KeyType: name, domain.KeyDefault: def}
}

// Value is shorthand for a value declaration. It lets maps be stored as literals.
func Value(v any) map[string]any {
	return map[string]any{domain.KeyValue: v}
}
