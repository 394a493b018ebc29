package domain

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// EdgeSpec is the typed form of a process or step record stored in state.
type EdgeSpec struct {
	Kind     string         `json:"_type" yaml:"_type" mapstructure:"_type" validate:"required,oneof=process step edge"`
	Address  string         `json:"address" yaml:"address" mapstructure:"address" validate:"required,contains=:"`
	Config   map[string]any `json:"config" yaml:"config" mapstructure:"config"`
	Inputs   map[string]any `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
	Outputs  map[string]any `json:"outputs" yaml:"outputs" mapstructure:"outputs"`
	Interval float64        `json:"interval,omitempty" yaml:"interval,omitempty" mapstructure:"interval" validate:"gte=0"`
}

var validate = validator.New()

// Validate checks the structural constraints of the record.
func (e *EdgeSpec) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: invalid edge spec: %v", ErrRegistration, err)
	}
	return nil
}

// Map returns the state form of the record. Nil maps become empty maps.
func (e *EdgeSpec) Map() map[string]any {
	m := map[string]any{
		KeyType:      e.Kind,
		FieldAddress: e.Address,
		FieldConfig:  orEmpty(e.Config),
		FieldInputs:  orEmpty(e.Inputs),
		FieldOutputs: orEmpty(e.Outputs),
	}
	if e.Kind == KindProcess {
		interval := e.Interval
		if interval == 0 {
			interval = DefaultInterval
		}
		m[FieldInterval] = interval
	}
	return m
}

// DecodeEdge reads an edge record from its state form.
func DecodeEdge(v any) (*EdgeSpec, error) {
	m, ok := v.(map[string]any)
	if !ok || !IsEdge(m) {
		return nil, fmt.Errorf("%w: value is not an edge", ErrInvalidOperation)
	}
	var spec EdgeSpec
	if err := mapstructure.Decode(m, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode edge: %w", err)
	}
	return &spec, nil
}

// IsEdge reports whether v is a state record of one of the edge kinds.
func IsEdge(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	kind, _ := m[KeyType].(string)
	return IsEdgeKind(kind)
}

// Wires returns the port names of a wiring map in sorted order.
func Wires(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
