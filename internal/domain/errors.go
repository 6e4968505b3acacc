package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Handlers translate any error implementing this interface directly,
// everything else is treated as an internal server error.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a referenced resource does not exist.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input, including role values
	// outside the closed vocabulary.
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates the request carries no resolvable
	// caller identity. Distinct from ForbiddenError.
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates the caller is neither owner nor a
	// sufficiently privileged member of the target resource.
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors for classification with errors.Is().
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Is hooks let the typed errors match their sentinels.
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// ConflictError represents an invariant violation in a mutation: duplicate
// member, self-targeting membership edit, duplicate group link and the like.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Kind of resource (annotation, group, task, ...)
	ResourceID   string // ID of the conflicting resource, when known
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
