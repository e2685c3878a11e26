package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a record does not exist or is outside the requester's view.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the access policy denies an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned when no usable credential was presented.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrInvalidCredentials is returned for a wrong username/password pair or a dead session/token.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned by repositories on a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}
