// Package domainerrors defines the coded error values shared by all
// verticals. Services return these; the HTTP layer maps codes to status
// codes without inspecting messages. Messages are user-facing and must not
// leak storage paths or other internals.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and branching.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeIO                 Code = "io_error"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a coded domain error. Constructed by value so two calls to New
// with the same code and message compare equal under errors.Is, which keeps
// test assertions simple.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

// Newf is New with fmt-style message construction.
func Newf(code Code, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause is
// preserved for errors.Is/As but never rendered to clients.
func Wrap(err error, code Code, message string) Error {
	return Error{Code: code, Message: message, cause: err}
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e Error) Unwrap() error {
	return e.cause
}

// Is treats two domain errors with the same code and message as equal,
// ignoring the wrapped cause.
func (e Error) Is(target error) bool {
	var other Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var domainErr Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its outward HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeIO, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
