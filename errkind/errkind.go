// Package errkind defines the closed error taxonomy shared by the parser,
// storage, auth, and engine packages.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is one of the five disjoint failure categories the engine surfaces.
type Kind int

const (
	// Parse marks malformed SQL text.
	Parse Kind = iota
	// TableNotFound marks a reference to a table absent from the catalog.
	TableNotFound
	// Schema marks an unknown column, unsupported dtype/operator/statement,
	// or a WHERE-composition conflict.
	Schema
	// Constraint marks a primary-key null or unique-column collision.
	Constraint
	// Auth marks a missing/invalid/expired session or bad credentials.
	Auth
)

// String renders the kind the way it is named in error messages.
func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse"
	case TableNotFound:
		return "table-not-found"
	case Schema:
		return "schema"
	case Constraint:
		return "constraint"
	case Auth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error is the single exported error type for every failure this module
// raises. It carries a Kind so callers can branch on category without
// string matching, and wraps an underlying cause when there is one.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
