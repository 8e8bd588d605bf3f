package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Store and service lookups.
	ErrNotFound = errors.New("not found")

	// Signup uniqueness.
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")

	// Authentication.
	ErrBadCredential   = errors.New("invalid username/email or password")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError maps form field names to user-facing messages. Causes
// holds the sentinel errors behind the failure so errors.Is keeps working.
type ValidationError struct {
	Fields map[string]string
	Causes []error
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for field. The first message per field wins.
func (e *ValidationError) Add(field, msg string, cause error) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
	if cause != nil {
		e.Causes = append(e.Causes, cause)
	}
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error { return e.Causes }
