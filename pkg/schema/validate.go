package schema

import "github.com/aretw0/bigraph/pkg/domain"

// Schema maps the ports of an edge (or the fields of a config) to their types.
// Example: {"level": Float(), "tags": Slice(String())}
type Schema map[string]Type

// Validate checks if data conforms to the schema. Every field is required.
// Failures are reported in field order.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	return ValidateFields(schema, data, schema.Fields()...)
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []error

	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "not defined in schema",
			})
			continue
		}

		value, fieldExists := data[fieldName]
		if !fieldExists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

// ValidatePresent validates the fields of data that the schema declares and
// ignores the rest. Process updates use it: a process may emit a subset of its ports.
func ValidatePresent(schema Schema, data map[string]any) error {
	var errs []error
	for _, key := range schema.Fields() {
		value, ok := data[key]
		if !ok {
			continue
		}
		if err := schema[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	for _, key := range domain.Wires(data) {
		if _, ok := schema[key]; !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "not declared", Value: data[key]})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
