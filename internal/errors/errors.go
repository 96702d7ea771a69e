// Package errors defines the coded error type shared by the continuity
// packages. Import it as apperrors.
package errors

import stderrors "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that carries no continuity code.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidInput marks an empty or malformed argument at a mutator boundary.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeValidationFailure marks a document or entity that fails structural checks.
	CodeValidationFailure Code = "VALIDATION_FAILURE"
	// CodePersistenceFailure marks an I/O failure while saving or loading state.
	CodePersistenceFailure Code = "PERSISTENCE_FAILURE"
	// CodeRecoveryExhausted marks a load where the main file and every backup were unusable.
	CodeRecoveryExhausted Code = "RECOVERY_EXHAUSTED"
	// CodeNotFound marks an update against a key the store does not hold.
	CodeNotFound Code = "NOT_FOUND"
)

// Error is the continuity error type.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput       = &Error{Code: CodeInvalidInput}
	ErrValidationFailure  = &Error{Code: CodeValidationFailure}
	ErrPersistenceFailure = &Error{Code: CodePersistenceFailure}
	ErrRecoveryExhausted  = &Error{Code: CodeRecoveryExhausted}
	ErrNotFound           = &Error{Code: CodeNotFound}
)

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// InvalidInput is shorthand for New(CodeInvalidInput, message).
func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message)
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var target *Error
	if stderrors.As(err, &target) {
		return target.Code
	}
	return CodeUnknown
}
