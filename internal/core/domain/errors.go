package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the transport layer can pick a status code
// without inspecting message text.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicateEmail
	KindInvalidCredentials
	KindUnauthorized
	KindInvalidToken
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidToken:
		return "invalid_token"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the tagged error carried from services to the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for "product not found" and "order not found" alike.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation error"}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "a user with the same email already exists"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "invalid or expired token"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "conflict"}
)

// ValidationError reports the first violated field of an input.
func ValidationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound returns a not-found error for the named entity, e.g. "product not found".
func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Conflict reports a request that clashes with one already in progress.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Internal wraps an unexpected failure (usually the store) with context.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err. Internal errors never
// expose their cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
