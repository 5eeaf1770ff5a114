// Package apperrors defines the error taxonomy shared by services and handlers.
// Every error that reaches a handler is either an *Error or gets treated as Internal.
package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
)

type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalid      Kind = "INVALID"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindInternal     Kind = "INTERNAL"
)

// HTTPStatus maps a kind onto its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalid:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a user-facing message (or i18n key) and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Args    []interface{}
	cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Args) > 0 {
		msg = fmt.Sprintf("%s %v", e.Message, e.Args)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on kind and message so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, message string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: message, Args: args}
}

func NotFound(message string, args ...interface{}) *Error {
	return newError(KindNotFound, message, args...)
}

func Invalid(message string, args ...interface{}) *Error {
	return newError(KindInvalid, message, args...)
}

func Conflict(message string, args ...interface{}) *Error {
	return newError(KindConflict, message, args...)
}

func Unauthorized(message string, args ...interface{}) *Error {
	return newError(KindUnauthorized, message, args...)
}

func Forbidden(message string, args ...interface{}) *Error {
	return newError(KindForbidden, message, args...)
}

// Internal wraps an unexpected failure, attaching a stack trace to the cause.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: errors.WithStack(err)}
}

// WithCause returns a copy of e that wraps cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Args: e.Args, cause: cause}
}

// KindOf reports the kind of err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromDB translates a gorm error into the nearest kind. notFound is used as the
// message for missing rows. Other kinds get a generic translation key and keep
// msg on the wrapped cause for the logs.
func FromDB(err error, notFound *Error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		if notFound != nil {
			return notFound.WithCause(err)
		}
		return NotFound(i18n.KeyNotFound).WithCause(errors.Wrap(err, msg))
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(i18n.KeyConflict).WithCause(errors.Wrap(err, msg))
	case stderrors.Is(err, gorm.ErrForeignKeyViolated), stderrors.Is(err, gorm.ErrCheckConstraintViolated):
		return Invalid(i18n.KeyInvalidInput).WithCause(errors.Wrap(err, msg))
	default:
		return Internal(err, msg)
	}
}
