package project

import (
	"errors"
	"fmt"
)

// UnknownServiceError is returned when a lookup or a declared dependency
// references a service that is not part of the project.
type UnknownServiceError struct {
	// Name is the service name that could not be resolved.
	Name string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service: %s", e.Name)
}

// IsUnknownService checks if an error is or wraps an UnknownServiceError.
func IsUnknownService(err error) bool {
	var unknownErr *UnknownServiceError
	return errors.As(err, &unknownErr)
}

// NewUnknownServiceError creates a new UnknownServiceError for the given name.
func NewUnknownServiceError(name string) *UnknownServiceError {
	return &UnknownServiceError{Name: name}
}

// CircularDependencyError is returned when the dependency edges of a project
// contain a cycle. Service names the node at which the cycle was re-entered.
type CircularDependencyError struct {
	Service string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected involving '%s'", e.Service)
}

// IsCircularDependency checks if an error is or wraps a CircularDependencyError.
func IsCircularDependency(err error) bool {
	var circularErr *CircularDependencyError
	return errors.As(err, &circularErr)
}

// NewCircularDependencyError creates a new CircularDependencyError naming
// the service at which the cycle was detected.
func NewCircularDependencyError(service string) *CircularDependencyError {
	return &CircularDependencyError{Service: service}
}
