package config

import (
	"errors"
	"fmt"
)

// ErrValidationFailed indicates a configured value is out of range.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError describes an invalid setting.
type ValidationError struct {
	// Path is the dotted setting path, e.g. "editor.tab_length".
	Path  string
	Value any
	// Message describes the problem.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s = %v: %s", e.Path, e.Value, e.Message)
}

// Unwrap lets callers match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
