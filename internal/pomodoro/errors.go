package pomodoro

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorises configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidConfiguration indicates a duration or setting that a
	// machine cannot run with.
	ErrCodeInvalidConfiguration ConfigErrorCode = "INVALID_CONFIGURATION"
)

// ConfigError reports a configuration rejected at construction.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Field names the offending setting, when known.
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigError creates an invalid-configuration error for field.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfiguration,
		Field:   field,
		Message: message,
	}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
