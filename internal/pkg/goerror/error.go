// Package goerror carries the error classification shared by usecases and
// the HTTP layer: a type, a stable code that maps to a status, an optional
// user-facing message and per-field validation details.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates that the request could not be completed due to a conflict.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents server-side failures.
	TypeServer Type = iota
	// TypeBusiness represents business rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

// String returns the string representation of the error type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates a malformed request or submitted code.
	CodeInvalidFormat
	// CodeInvalidInput indicates a well-formed request that breaks a rule.
	CodeInvalidInput
	// CodeEncoding indicates that provisioning material could not be rendered.
	CodeEncoding
	// CodeNotFound indicates a missing resource.
	CodeNotFound
	// CodeConflict indicates a duplicate resource.
	CodeConflict
	// CodeUnauthorized indicates authentication failure.
	CodeUnauthorized
	// CodeForbidden indicates authorization failure.
	CodeForbidden
)

var codes = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeEncoding:      {"ERROR_CODE_ENCODING", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeUnauthorized:  {"ERROR_CODE_UNAUTHORIZED", http.StatusUnauthorized},
	CodeForbidden:     {"ERROR_CODE_FORBIDDEN", http.StatusForbidden},
}

// String returns the string representation of the error code.
func (c Code) String() string {
	if m, ok := codes[c]; ok {
		return m.name
	}
	return codes[CodeInternal].name
}

// Error is a structured error used across the application.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface. The wrapped error wins over the
// user-facing message so logs keep the root cause.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	case e.errType == TypeValidation:
		return "Validation violation"
	case e.errType == TypeBusiness:
		return "Business rule violation"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if m, ok := codes[e.code]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error with the provided error.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput wraps a validator error, or builds one from field/message
// pairs when err is nil. An odd number of pairs is a caller bug and is
// reported as a malformed request.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	e := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat creates a validation error for a malformed request.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}

// NewEncoding creates a validation error for provisioning material that could not be rendered.
func NewEncoding(err error, msg string) error {
	return newError(err, msg, TypeValidation, CodeEncoding)
}

// NewNotFound creates a business error for an absent resource.
func NewNotFound(msg string) error {
	return newError(ErrNotFound, msg, TypeBusiness, CodeNotFound)
}
