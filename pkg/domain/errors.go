package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaViolation is returned by completion when state and schema disagree.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrRegistration is returned when a process cannot be registered
	// (malformed address, unsupported protocol, implementation that is not an edge).
	ErrRegistration = errors.New("registration error")

	// ErrInvalidOperation is returned when a port operation targets a location that is not an edge.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrPortNotDeclared is returned when wiring a port absent from the resolved schema.
	ErrPortNotDeclared = errors.New("port not declared")

	// ErrMissingProcess is returned by completion when an edge address names no registered process.
	ErrMissingProcess = errors.New("missing process")

	// ErrNotCompiled is returned when results are requested before a composite exists.
	ErrNotCompiled = errors.New("builder not compiled")

	// ErrDocumentNotFound is returned by document stores for unknown names.
	ErrDocumentNotFound = errors.New("document not found")
)

// PathError attaches the document location to a failure.
type PathError struct {
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("at %q: %v", e.Path.String(), e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// PortError describes a wiring failure on a named port.
type PortError struct {
	Path Path
	Port string
	Err  error
}

func (e *PortError) Error() string {
	return fmt.Sprintf("port %q at %q: %v", e.Port, e.Path.String(), e.Err)
}

func (e *PortError) Unwrap() error { return e.Err }

// Violation builds a PathError wrapping ErrSchemaViolation.
func Violation(path Path, format string, args ...any) error {
	return &PathError{
		Path: path.Append(),
		Err:  fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...)),
	}
}
