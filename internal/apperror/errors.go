package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed domain error that knows its HTTP status.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code so wrapped or cloned errors still compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Wrap(err error, base *Error, message string) *Error {
	e := Clone(base, message)
	e.Err = err
	return e
}

// Clone copies base, optionally overriding the message.
func Clone(base *Error, message string) *Error {
	clone := *base
	if message != "" {
		clone.Message = message
	}
	return &clone
}

func WithDetails(base *Error, message string, details any) *Error {
	e := Clone(base, message)
	e.Details = details
	return e
}

var (
	ErrValidation               = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidOrExpiredToken    = New("INVALID_OR_EXPIRED_TOKEN", http.StatusNotFound, "this signing link is not usable")
	ErrFieldNotVisible          = New("FIELD_NOT_VISIBLE", http.StatusForbidden, "field is not available to this signer")
	ErrSessionAlreadySigned     = New("SESSION_ALREADY_SIGNED", http.StatusConflict, "this document has already been signed")
	ErrRequiredFieldsIncomplete = New("REQUIRED_FIELDS_INCOMPLETE", http.StatusUnprocessableEntity, "required fields are not filled")
	ErrLayoutLocked             = New("LAYOUT_LOCKED", http.StatusConflict, "document has already been sent for signing")
	ErrNotFound                 = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden                = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized             = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInternal                 = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error; unknown errors become ErrInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal, "")
}
