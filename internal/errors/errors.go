// Package errors provides standardized domain errors with codes for the PagePace API.
//
// Usage:
//
//	// In services - return typed errors
//	if active != nil {
//	    return errors.AlreadyActive("a session is already in progress")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrAlreadyFinalized) {
//	    response.Conflict(w, err.Error(), logger)
//	    return
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeInvalidPage:
//	        response.BadRequest(w, domainErr.Message, logger)
//	    case errors.CodeStorageUnavailable:
//	        response.Error(w, http.StatusServiceUnavailable, domainErr.Message, logger)
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"

	// Session lifecycle codes.
	CodeAlreadyActive      Code = "ALREADY_ACTIVE"
	CodeInvalidPage        Code = "INVALID_PAGE"
	CodeRegressivePage     Code = "REGRESSIVE_PAGE"
	CodeAlreadyFinalized   Code = "ALREADY_FINALIZED"
	CodePartiallyCommitted Code = "PARTIALLY_COMMITTED"

	// Collaborator failure codes.
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeTransportFailure   Code = "TRANSPORT_FAILURE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeInvalidPage, CodeRegressivePage:
		return http.StatusBadRequest
	case CodeConflict, CodeAlreadyActive, CodeAlreadyFinalized:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	case CodeTransportFailure:
		return http.StatusBadGateway
	default:
		// CodePartiallyCommitted lands here on purpose: the caller got a
		// distinct code but the condition is still a server-side failure.
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrAlreadyActive      = &Error{Code: CodeAlreadyActive, Message: "a session is already active"}
	ErrInvalidPage        = &Error{Code: CodeInvalidPage, Message: "invalid page number"}
	ErrRegressivePage     = &Error{Code: CodeRegressivePage, Message: "end page is before start page"}
	ErrAlreadyFinalized   = &Error{Code: CodeAlreadyFinalized, Message: "session already finalized"}
	ErrPartiallyCommitted = &Error{Code: CodePartiallyCommitted, Message: "session committed but book progress update failed"}
	ErrStorageUnavailable = &Error{Code: CodeStorageUnavailable, Message: "storage unavailable"}
	ErrTransportFailure   = &Error{Code: CodeTransportFailure, Message: "push delivery failed"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// AlreadyActive creates an already-active session error.
func AlreadyActive(msg string) *Error {
	return &Error{Code: CodeAlreadyActive, Message: msg}
}

// InvalidPage creates an invalid page error.
func InvalidPage(msg string) *Error {
	return &Error{Code: CodeInvalidPage, Message: msg}
}

// InvalidPagef creates an invalid page error with formatted message.
func InvalidPagef(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidPage, Message: fmt.Sprintf(format, args...)}
}

// RegressivePage creates a regressive page error.
func RegressivePage(msg string) *Error {
	return &Error{Code: CodeRegressivePage, Message: msg}
}

// AlreadyFinalized creates an already finalized error.
func AlreadyFinalized(msg string) *Error {
	return &Error{Code: CodeAlreadyFinalized, Message: msg}
}

// PartiallyCommitted creates a partially committed error wrapping the
// failure that interrupted the two-record commit.
func PartiallyCommitted(msg string, cause error) *Error {
	return &Error{Code: CodePartiallyCommitted, Message: msg, cause: cause}
}

// StorageUnavailable wraps a transient storage failure.
func StorageUnavailable(err error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: "storage unavailable", cause: err}
}

// TransportFailure wraps a push delivery failure.
func TransportFailure(err error) *Error {
	return &Error{Code: CodeTransportFailure, Message: "push delivery failed", cause: err}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
