package schema

import (
	"fmt"
	"math"
	"reflect"
)

// Type defines the contract for a leaf type of the document.
// Implementations determine how values are validated, defaulted, canonicalized and
// combined with updates.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "float", "[int]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Default returns the value used when state holds nothing at a typed location.
	Default() any
	// Coerce returns the canonical Go representation of a valid value.
	Coerce(value any) (any, error)
	// Apply combines the current value with an update emitted by an edge.
	Apply(current, update any) (any, error)
}

// --- Built-in Type Implementations ---

// AnyType accepts every value and replaces it on update.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }
func (t *AnyType) Validate(value any) error { return nil }
func (t *AnyType) Default() any { return nil }
func (t *AnyType) Coerce(value any) (any, error) { return value, nil }
func (t *AnyType) Apply(current, update any) (any, error) { return update, nil }

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) Default() any { return "" }

func (t *StringType) Coerce(value any) (any, error) {
	return value, t.Validate(value)
}

func (t *StringType) Apply(current, update any) (any, error) {
	return update, t.Validate(update)
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v != math.Trunc(v) {
			return fmt.Errorf("expected int, got float (not a whole number)")
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return fmt.Errorf("expected int, got %g (out of range)", v)
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

func (t *IntType) Default() any { return 0 }

func (t *IntType) Coerce(value any) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return int(reflect.ValueOf(value).Convert(reflect.TypeOf(int(0))).Int()), nil
}

// Apply accumulates: the update is a delta added to the current value.
func (t *IntType) Apply(current, update any) (any, error) {
	c, err := t.Coerce(orDefault(current, t))
	if err != nil {
		return nil, err
	}
	u, err := t.Coerce(update)
	if err != nil {
		return nil, err
	}
	return c.(int) + u.(int), nil
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch v := value.(type) {
	case float32:
		return finite(float64(v))
	case float64:
		return finite(v)
	case int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

func (t *FloatType) Default() any { return 0.0 }

func (t *FloatType) Coerce(value any) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return reflect.ValueOf(value).Convert(reflect.TypeOf(float64(0))).Float(), nil
}

// Apply accumulates: the update is a delta added to the current value.
func (t *FloatType) Apply(current, update any) (any, error) {
	c, err := t.Coerce(orDefault(current, t))
	if err != nil {
		return nil, err
	}
	u, err := t.Coerce(update)
	if err != nil {
		return nil, err
	}
	return c.(float64) + u.(float64), nil
}

// finite rejects NaN and infinities, which have no JSON representation.
func finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("expected finite float, got %v", v)
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) Default() any { return false }

func (t *BoolType) Coerce(value any) (any, error) {
	return value, t.Validate(value)
}

func (t *BoolType) Apply(current, update any) (any, error) {
	return update, t.Validate(update)
}

// MapType validates free-form string keyed maps. Updates are merged key by key.
type MapType struct{}

func (t *MapType) Name() string { return "map" }

func (t *MapType) Validate(value any) error {
	if _, ok := value.(map[string]any); !ok {
		return fmt.Errorf("expected map, got %T", value)
	}
	return nil
}

func (t *MapType) Default() any { return map[string]any{} }

func (t *MapType) Coerce(value any) (any, error) {
	return value, t.Validate(value)
}

func (t *MapType) Apply(current, update any) (any, error) {
	u, ok := update.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected map update, got %T", update)
	}
	out := map[string]any{}
	if c, ok := current.(map[string]any); ok {
		for k, v := range c {
			out[k] = v
		}
	}
	for k, v := range u {
		out[k] = v
	}
	return out, nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (t *SliceType) Default() any { return []any{} }

func (t *SliceType) Coerce(value any) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(value)
	out := make([]any, rv.Len())
	for i := range out {
		elem, err := t.elemType.Coerce(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = elem
	}
	return out, nil
}

// Apply appends the update elements to the current list.
func (t *SliceType) Apply(current, update any) (any, error) {
	c, err := t.Coerce(orDefault(current, t))
	if err != nil {
		return nil, err
	}
	u, err := t.Coerce(update)
	if err != nil {
		return nil, err
	}
	return append(c.([]any), u.([]any)...), nil
}

// CustomType applies a user-defined validation function on top of a base type.
type CustomType struct {
	name     string
	base     Type
	def      any
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	if err := t.base.Validate(value); err != nil {
		return err
	}
	if t.validate == nil {
		return nil
	}
	return t.validate(value)
}

func (t *CustomType) Default() any {
	if t.def != nil {
		return t.def
	}
	return t.base.Default()
}

func (t *CustomType) Coerce(value any) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return t.base.Coerce(value)
}

func (t *CustomType) Apply(current, update any) (any, error) {
	return t.base.Apply(current, update)
}

func orDefault(v any, t Type) any {
	if v == nil {
		return t.Default()
	}
	return v
}

// --- Factory Functions ---

// Any creates the permissive type.
func Any() Type { return &AnyType{} }

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Map creates a free-form map type.
func Map() Type { return &MapType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
// Values must also satisfy the permissive base type.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, base: Any(), validate: validate}
}

// Derive creates a named type inheriting the behaviour of base with its own default,
// e.g. Derive("default 1", Float(), 1.0).
func Derive(name string, base Type, def any) Type {
	return &CustomType{name: name, base: base, def: def}
}

// Infer returns the built-in type matching a literal value.
func Infer(value any) Type {
	switch value.(type) {
	case float32, float64:
		return Float()
	case int, int8, int16, int32, int64:
		return Int()
	case string:
		return String()
	case bool:
		return Bool()
	case map[string]any:
		return Map()
	case []any:
		return Slice(Any())
	default:
		return Any()
	}
}
