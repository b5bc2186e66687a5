package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports bad configuration or invalid input. It is surfaced
// to the caller immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ServiceError reports a failed call to the embedding service: a transport
// failure, a non-success status or an undecodable body.
type ServiceError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: service returned status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: service returned status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": service error"
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// FormatError reports a response that decoded but lacks an expected field.
type FormatError struct {
	Op    string
	Field string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: invalid response format: missing %s", e.Op, e.Field)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsService(err error) bool {
	var target *ServiceError
	return errors.As(err, &target)
}

func IsFormat(err error) bool {
	var target *FormatError
	return errors.As(err, &target)
}
