package models

import "fmt"

// The ledger exposes a small error taxonomy so handlers can map failures to
// HTTP statuses without string matching. Anything outside these types is
// treated as an infrastructure error and never leaks to the client.

// ValidationError signals malformed or missing input, detected before any
// write happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthorizationError signals a non-member or non-admin attempting a gated
// operation.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// NewAuthorizationError builds an AuthorizationError with a formatted message.
func NewAuthorizationError(format string, args ...any) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError signals an unknown group, expense, member, or settlement
// reference.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NewNotFoundError builds a NotFoundError with a formatted message.
func NewNotFoundError(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError signals a state conflict such as duplicate membership or a
// blocked removal.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NewConflictError builds a ConflictError with a formatted message.
func NewConflictError(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}
