package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUserExists         = errors.New("user already exists")
	ErrRoleExists         = errors.New("role already exists")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrPersistence        = errors.New("persistence failure")
	ErrCacheDegraded      = errors.New("cache degraded")
)

// ValidationError describes malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RoleReferenceError is returned when a user references a role that does not
// exist. Unlike a plain ErrRoleNotFound it names the offending reference, so
// callers can report it back to the client.
type RoleReferenceError struct {
	RoleID string
}

func (e *RoleReferenceError) Error() string {
	return fmt.Sprintf("role %q does not exist", e.RoleID)
}

func (e *RoleReferenceError) Is(target error) bool {
	return target == ErrRoleNotFound
}

// PersistenceError wraps a failure of the backing store. The cause is kept for
// logging and never rendered to clients.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
