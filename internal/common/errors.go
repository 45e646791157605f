package common

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the service.
var (
	ErrNotFound = errors.New("resource not found")
	ErrDatabase = errors.New("database error")

	// ErrProviderNotImplemented marks an extractor backend that exists in the
	// provider enum but has no working implementation. It is permanent per
	// process, unlike a transport failure, and callers must not retry it.
	ErrProviderNotImplemented = errors.New("provider not implemented")
)

// ValidationError rejects a bad upload (wrong type, size, content signature).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// MalformedExtractionError means no JSON object could be recovered from a
// model response after every repair strategy. It keeps the original content
// for diagnostics.
type MalformedExtractionError struct {
	Content string
	Err     error
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("no JSON object recoverable from model response: %v", e.Err)
}

func (e *MalformedExtractionError) Unwrap() error { return e.Err }

// SchemaViolationError means recovered JSON is missing or has an unusable
// required field.
type SchemaViolationError struct {
	Field string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("statement schema violation: missing or invalid field %q", e.Field)
}

// ProviderError wraps a transport-level failure talking to a model backend.
// Distinct from ErrProviderNotImplemented so callers can decide to retry or
// fall back; this service does neither itself.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError annotates err with a message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
