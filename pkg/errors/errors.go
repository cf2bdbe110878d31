package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a unit id is unknown to the registry
	ErrNotFound = errors.New("unit not found")

	// ErrDisabled indicates that the referenced unit exists but is disabled
	ErrDisabled = errors.New("unit disabled")

	// ErrDiscovery indicates that a candidate source failed to load
	ErrDiscovery = errors.New("discovery failed")

	// ErrRegistration indicates that metadata construction or validation failed
	ErrRegistration = errors.New("registration failed")

	// ErrDependency indicates a missing or cyclic dependency
	ErrDependency = errors.New("dependency unsatisfied")

	// ErrExecution indicates that a unit's execute or validation hook failed
	ErrExecution = errors.New("execution failed")

	// ErrInvalidTransition indicates a disallowed lifecycle state change
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)

// Error represents a structured registry error
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

// NewError creates a new registry error
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if an error indicates an unknown unit id
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDisabled checks if an error indicates a disabled unit
func IsDisabled(err error) bool {
	return errors.Is(err, ErrDisabled)
}

// IsDependency checks if an error indicates an unsatisfied dependency
func IsDependency(err error) bool {
	return errors.Is(err, ErrDependency)
}

// IsExecution checks if an error originated in a unit's execute or validation hook
func IsExecution(err error) bool {
	return errors.Is(err, ErrExecution)
}
