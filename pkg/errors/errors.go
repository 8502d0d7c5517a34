// Package errors defines the typed error codes that travel from services to
// the HTTP layer and decides what each code reveals to clients.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeUpstream      Code = "UPSTREAM_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata drives how a code is rendered. Client errors expose the handler's
// own message; server errors only ever show PublicMessage.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	ExposeMessage  bool
	DetailsAllowed bool
}

func clientError(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, ExposeMessage: true, DetailsAllowed: details}
}

func serverError(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, Retryable: true, DetailsAllowed: details}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:    clientError(http.StatusBadRequest, "validation failed", true),
	CodeUnauthorized:  clientError(http.StatusUnauthorized, "authentication required", false),
	CodeForbidden:     clientError(http.StatusForbidden, "access denied", false),
	CodeNotFound:      clientError(http.StatusNotFound, "resource not found", false),
	CodeConflict:      clientError(http.StatusBadRequest, "conflict detected", false),
	CodeStateConflict: clientError(http.StatusUnprocessableEntity, "state transition disallowed", true),
	CodeIdempotency:   clientError(http.StatusUnprocessableEntity, "idempotency key reused", true),
	CodeRateLimit:     clientError(http.StatusTooManyRequests, "rate limit exceeded", false),
	CodeInternal:      serverError(http.StatusInternalServerError, "internal server error", false),
	CodeUpstream:      serverError(http.StatusInternalServerError, "payment provider unavailable", false),
	CodeDependency:    serverError(http.StatusServiceUnavailable, "dependency unavailable", true),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Public is the client-visible rendering of an error.
type Public struct {
	Status  int
	Code    Code
	Message string
	Details any
}

// Render resolves what a client may see for err. Untyped errors become
// CodeInternal so driver and gateway messages never leak.
func Render(err error) Public {
	typed := As(err)
	if typed == nil {
		typed = New(CodeInternal, "")
	}
	meta := MetadataFor(typed.Code())
	out := Public{Status: meta.HTTPStatus, Code: typed.Code(), Message: meta.PublicMessage}
	if meta.ExposeMessage && typed.message != "" {
		out.Message = typed.message
	}
	if meta.DetailsAllowed {
		out.Details = typed.details
	}
	return out
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
