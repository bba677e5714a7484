// errors.go
// Package errors defines the error types returned by the client: configuration errors raised before
// any network call and transport errors raised for failed HTTP exchanges.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel wrapped by every InvalidConfigError.
var ErrInvalidConfig = stderrors.New("invalid configuration")

// InvalidConfigError reports a missing or malformed configuration value.
type InvalidConfigError struct {
	Key    string // dotted configuration key, e.g. "response_type"
	Value  any    // offending value, nil when missing
	Reason string
}

// NewInvalidConfigError builds an InvalidConfigError.
func NewInvalidConfigError(key string, value any, reason string) *InvalidConfigError {
	return &InvalidConfigError{Key: key, Value: value, Reason: reason}
}

func (e *InvalidConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid configuration %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid configuration %q (%v): %s", e.Key, e.Value, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidConfig) hold.
func (e *InvalidConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IsInvalidConfig reports whether err is, or wraps, a configuration error.
func IsInvalidConfig(err error) bool {
	return stderrors.Is(err, ErrInvalidConfig)
}
