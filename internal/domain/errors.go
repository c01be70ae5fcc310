package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates the permission guard rejected the actor
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets typed errors match their sentinel with errors.Is()
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrDependency marks a blob-store or batch failure that happened after
	// metadata was already committed. Nothing is rolled back.
	ErrDependency = errors.New("dependency failure")

	// ErrInconsistent is raised when a tree walk revisits a folder.
	ErrInconsistent = errors.New("inconsistent folder tree")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, file, requirement)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// DependencyError reports a partial failure of an external collaborator
// (blob store, notification channel) after the metadata side already committed.
type DependencyError struct {
	Op         string // e.g. "blob copy"
	ResourceID string
	Err        error
}

func (e *DependencyError) Error() string {
	return e.Op + " " + e.ResourceID + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

// StatusCode implements the HTTPError interface
func (e *DependencyError) StatusCode() int {
	return http.StatusBadGateway
}

// Is allows errors.Is() to match against ErrDependency
func (e *DependencyError) Is(target error) bool {
	return target == ErrDependency
}

// NewForbidden returns a ForbiddenError with the given message
func NewForbidden(msg string) error {
	return &ForbiddenError{Message: msg}
}

// NewValidation returns a ValidationError with the given message
func NewValidation(msg string) error {
	return &ValidationError{Message: msg}
}
