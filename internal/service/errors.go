package service

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is matched by every unsupported-platform ValidationError
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ValidationError is a client mistake. It maps to 400 at the HTTP boundary
// and is never retried by the worker.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UnsupportedPlatform builds the error for a platform outside the allow-list
func UnsupportedPlatform(platform string) error {
	return &ValidationError{
		Field:   "platform",
		Message: fmt.Sprintf("Unsupported platform: %s", platform),
		Err:     ErrUnsupportedPlatform,
	}
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
