package plugin

import (
	"errors"
	"fmt"
)

// NoRuntimeError is returned when no registered language runtime serves a
// service's language.
type NoRuntimeError struct {
	// Language is the unmatched language tag.
	Language string
}

func (e *NoRuntimeError) Error() string {
	return fmt.Sprintf("no language runtime registered for language '%s'", e.Language)
}

// NewNoRuntimeError creates a new NoRuntimeError.
func NewNoRuntimeError(language string) *NoRuntimeError {
	return &NoRuntimeError{Language: language}
}

// IsNoRuntime checks if an error is or wraps a NoRuntimeError.
func IsNoRuntime(err error) bool {
	var noRuntimeErr *NoRuntimeError
	return errors.As(err, &noRuntimeErr)
}
