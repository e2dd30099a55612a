// Package domainerrors defines the coded errors returned across service
// boundaries. Stores speak in sentinel errors (pkg/platform/sentinel); services
// translate those facts into one of these codes, and transports map the code to
// a response status.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers.
type Code string

const (
	// CodeValidation is malformed input caught by domain rules: empty actor,
	// missing cancel reason, offering not accepting enrollments.
	CodeValidation Code = "validation_error"
	// CodeBadRequest is a request that could not be parsed at the boundary.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput is an identifier or enum value that failed to parse.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound is an unknown student, offering or enrollment.
	CodeNotFound Code = "not_found"
	// CodeConflict is a capacity or uniqueness violation.
	CodeConflict Code = "conflict"
	// CodeInvalidState is an illegal lifecycle transition.
	CodeInvalidState Code = "invalid_state"
	// CodeInvariantViolation is raised by model constructors; services convert it
	// to CodeValidation before it reaches a caller.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeUnavailable is a collaborator that failed or could not be reached.
	CodeUnavailable Code = "unavailable"
	// CodeTimeout is a deadline that expired before the unit of work finished.
	CodeTimeout Code = "timeout"
	// CodeInternal hides storage and programming failures from callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-safe message to err.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost coded error in err's chain.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// MessageOf returns the caller-safe message of the outermost coded error, or
// an empty string when err carries no code.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
