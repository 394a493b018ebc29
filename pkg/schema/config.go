package schema

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/xeipuuv/gojsonschema"
)

// CompleteConfig fills the property defaults declared by a JSON Schema document into
// config and validates the result against it. A nil schema returns a copy of config.
func CompleteConfig(configSchema map[string]any, config map[string]any) (map[string]any, error) {
	out := ConfigDefaults(configSchema, config)
	if len(configSchema) == 0 {
		return out, nil
	}
	if err := ValidateConfig(configSchema, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfigDefaults returns a copy of config with the missing top-level properties set
// to the defaults the schema declares. Nothing is validated.
func ConfigDefaults(configSchema map[string]any, config map[string]any) map[string]any {
	out := domain.CopyMap(config)
	props, ok := configSchema["properties"].(map[string]any)
	if !ok {
		return out
	}
	for _, key := range domain.Wires(props) {
		prop, ok := props[key].(map[string]any)
		if !ok {
			continue
		}
		def, hasDefault := prop["default"]
		if _, set := out[key]; !set && hasDefault {
			out[key] = domain.DeepCopy(def)
		}
	}
	return out
}

// ValidateConfig checks config against a JSON Schema document.
func ValidateConfig(configSchema map[string]any, config map[string]any) error {
	schemaJSON, err := json.Marshal(configSchema)
	if err != nil {
		return fmt.Errorf("failed to marshal config schema: %w", err)
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(configJSON),
	)
	if err != nil {
		return fmt.Errorf("config schema error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, &ValidationError{
			Key:    e.Field(),
			Reason: e.Description(),
			Value:  e.Value(),
		})
	}
	return &AggregateError{Errors: errs}
}
