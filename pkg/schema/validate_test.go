package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	s := Schema{
		"api_key": String(),
		"retries": Int(),
		"timeout": Float(),
	}

	t.Run("Success", func(t *testing.T) {
		err := Validate(s, map[string]any{"api_key": "k", "retries": 3, "timeout": 30.5})
		assert.NoError(t, err)
	})

	t.Run("Multiple Errors In Field Order", func(t *testing.T) {
		err := Validate(s, map[string]any{"retries": "x", "timeout": "y"})
		require.Error(t, err)

		errs := ValidationErrors(err)
		require.Len(t, errs, 3)
		keys := make([]string, 0, len(errs))
		for _, e := range errs {
			var ve *ValidationError
			require.True(t, errors.As(e, &ve))
			keys = append(keys, ve.Key)
		}
		assert.Equal(t, []string{"api_key", "retries", "timeout"}, keys)
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})

	t.Run("Empty Schema", func(t *testing.T) {
		assert.NoError(t, Validate(nil, map[string]any{"x": 1}))
	})
}

func TestValidateFields(t *testing.T) {
	s := Schema{"api_key": String(), "retries": Int()}

	assert.NoError(t, ValidateFields(s, map[string]any{"api_key": "k", "retries": "bad"}, "api_key"))
	assert.NoError(t, ValidateFields(s, map[string]any{}))

	err := ValidateFields(s, map[string]any{"api_key": "k"}, "api_key", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined in schema")
}

func TestValidatePresent(t *testing.T) {
	s := Schema{"level": Float(), "count": Int()}

	assert.NoError(t, ValidatePresent(s, map[string]any{"level": 1.5}))

	err := ValidatePresent(s, map[string]any{"level": "high", "extra": 1})
	require.Error(t, err)
	assert.Len(t, ValidationErrors(err), 2)
}

func TestAggregateError_String(t *testing.T) {
	err := &AggregateError{Errors: []error{
		&ValidationError{Key: "a", Reason: "required"},
		&ValidationError{Key: "b", Reason: "expected int", Value: "x"},
	}}
	msg := err.Error()
	assert.Contains(t, msg, "2 validation errors")
	assert.Contains(t, msg, `field "b": expected int (got string)`)

	single := &AggregateError{Errors: []error{&ValidationError{Key: "a", Reason: "required"}}}
	assert.Equal(t, `field "a": required`, single.Error())
}
