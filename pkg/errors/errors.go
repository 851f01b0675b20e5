package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateField indicates that a field key was declared twice in the same registry
	ErrDuplicateField = errors.New("field already declared")

	// ErrUnknownField indicates that a value was bound under a key that was never declared
	ErrUnknownField = errors.New("field not declared")

	// ErrNotBound indicates that a field has been declared but no value was bound yet
	ErrNotBound = errors.New("field has no bound value")

	// ErrPointOutOfRange indicates that a per-entity write targeted an index outside the registry size
	ErrPointOutOfRange = errors.New("point index out of range")

	// ErrNaNValue indicates that a NaN value was bound to a per-entity field
	ErrNaNValue = errors.New("value is NaN")

	// ErrInvalidConfig indicates that the run configuration failed validation
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotConnected indicates that the publisher is not connected to NATS
	ErrNotConnected = errors.New("not connected to NATS")

	// ErrPublishFailed indicates that a history record could not be published
	ErrPublishFailed = errors.New("publish failed")

	// ErrExpression indicates that a derived-field expression failed to compile or evaluate
	ErrExpression = errors.New("expression error")
)

// Error represents a structured library error
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new library error
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsDuplicateField checks if an error is a duplicate declaration error
func IsDuplicateField(err error) bool {
	return errors.Is(err, ErrDuplicateField)
}

// IsUnknownField checks if an error is an unbound-write error
func IsUnknownField(err error) bool {
	return errors.Is(err, ErrUnknownField)
}
