package domain

import (
	"errors"
	"strings"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindConflict   ErrorKind = "CONFLICT"
	KindBadRequest ErrorKind = "BAD_REQUEST"
)

// Error is the typed failure returned by every domain operation.
// Fields is only set for validation failures and lists every offending field.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return e.Message + ": " + strings.Join(e.Fields, ", ")
	}
	return e.Message
}

// Expected marks domain errors as caller-side failures for log levelling.
func (e *Error) Expected() bool { return true }

// Is matches on kind only, so errors.Is(err, ErrConflict) holds for any conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden  = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict   = &Error{Kind: KindConflict, Message: "conflict"}
	ErrBadRequest = &Error{Kind: KindBadRequest, Message: "bad request"}
)

func NewValidationError(fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func BadRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Message: msg} }

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// fieldErrors collects failing field names during validation.
type fieldErrors []string

func (f *fieldErrors) check(ok bool, field string) {
	if !ok {
		*f = append(*f, field)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return NewValidationError(f...)
}
