package domain

import (
	"errors"
	"net/http"
)

// ErrorKind classifies application failures so the transport layer can map them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

var kindCodes = map[ErrorKind]string{
	KindInternal:     "INTERNAL_SERVER_ERROR",
	KindValidation:   "VALIDATION_ERROR",
	KindNotFound:     "NOT_FOUND",
	KindConflict:     "CONFLICT",
	KindUnauthorized: "UNAUTHORIZED",
	KindForbidden:    "FORBIDDEN",
}

var kindStatus = map[ErrorKind]int{
	KindInternal:     http.StatusInternalServerError,
	KindValidation:   http.StatusBadRequest,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
}

// Error is an application failure carrying a client-facing code and message.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Status returns the HTTP status associated with the error kind.
func (e *Error) Status() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Code: kindCodes[kind], Message: message}
}

func NewValidationError(message string) *Error   { return newError(KindValidation, message) }
func NewNotFoundError(message string) *Error     { return newError(KindNotFound, message) }
func NewConflictError(message string) *Error     { return newError(KindConflict, message) }
func NewUnauthorizedError(message string) *Error { return newError(KindUnauthorized, message) }
func NewForbiddenError(message string) *Error    { return newError(KindForbidden, message) }

// ErrEmailExists is returned by user repositories on a unique email violation.
var ErrEmailExists = NewConflictError("email already exists")

// ErrPaymentExists is returned by payment repositories when the provider
// transaction id is already stored.
var ErrPaymentExists = NewConflictError("payment already recorded")

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
