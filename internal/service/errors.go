package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to API clients.
type ErrorKind int

const (
	// KindInternal is any unexpected failure.
	KindInternal ErrorKind = iota
	// KindValidation marks malformed or incomplete input.
	KindValidation
	// KindForbidden marks an operation the caller may not perform.
	KindForbidden
	// KindNotFound marks a missing resource.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a typed failure whose message is safe to return to clients.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ValidationError builds a KindValidation error.
func ValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// ForbiddenError builds a KindForbidden error.
func ForbiddenError(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFoundError builds a KindNotFound error.
func NotFoundError(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf reports the kind of err, or KindInternal when err is not typed.
func KindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindInternal
}
