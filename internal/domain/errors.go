package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrCycle        = errors.New("cycle detected")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("backend unavailable")
)

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

	// ForbiddenError indicates authorization failure
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

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// NewNotFound builds a NotFoundError for a resource type and id.
func NewNotFound(resourceType, id string) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("%s %s not found", resourceType, id)}
}

// NewValidation builds a ValidationError from a format string.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, image)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// CycleDetectedError reports a parent chain that revisits a folder.
// The collection holding it is corrupted; no operation repairs it silently.
type CycleDetectedError struct {
	FolderID string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("folder %s is its own ancestor", e.FolderID)
}

func (e *CycleDetectedError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *CycleDetectedError) Is(target error) bool {
	return target == ErrCycle
}

// UpstreamError is the network channel: the external backend was unreachable
// or answered with a non-2xx status. StatusCode 0 means no response at all.
type UpstreamError struct {
	Op         string
	Status     int
	Message    string
	underlying error
}

// NewUpstreamError wraps a failed backend call.
// 401/403/404 answers also match the corresponding domain sentinels.
func NewUpstreamError(op string, status int, message string) *UpstreamError {
	e := &UpstreamError{Op: op, Status: status, Message: message}
	switch status {
	case http.StatusUnauthorized:
		e.underlying = ErrUnauthorized
	case http.StatusForbidden:
		e.underlying = ErrForbidden
	case http.StatusNotFound:
		e.underlying = ErrNotFound
	case http.StatusConflict:
		e.underlying = ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e.underlying = ErrValidation
	}
	return e
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Message)
}

// StatusCode passes through client errors the backend reported and maps
// everything else to 502.
func (e *UpstreamError) StatusCode() int {
	if e.underlying != nil {
		return e.Status
	}
	return http.StatusBadGateway
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream || (e.underlying != nil && target == e.underlying)
}
