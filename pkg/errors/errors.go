// Package errors provides the error taxonomy for the extraction pipeline.
// The taxonomy drives failure policy: a CollaboratorError aborts the current
// item, a ParseError degrades one stage's contribution and the pipeline
// continues, and an IOError short-circuits an item before any backend call.
// Nothing propagates past the batch runner as an error.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// Alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
var As = errors.As

// Common sentinel errors.
var (
	// ErrNoImages indicates an item folder contained no usable images.
	ErrNoImages = errors.New("no images found")

	// ErrAPIKeyRequired indicates a collaborator needs a key that is not set.
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrTimeout indicates a collaborator call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidInput indicates provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// CollaboratorError represents a failure of an external collaborator:
// backend error, timeout, missing credentials, or a missing precondition
// such as an empty image set. Fatal to the current item only.
type CollaboratorError struct {
	Collaborator string // "vision", "search", "filesystem"
	Operation    string
	Message      string
	Err          error
}

// Error implements the error interface.
func (e *CollaboratorError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s collaborator failed during %s: %v", e.Collaborator, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *CollaboratorError) Unwrap() error { return e.Err }

// Is implements errors.Is support for the timeout and API-key sentinels.
func (e *CollaboratorError) Is(target error) bool {
	if target == ErrTimeout || target == ErrAPIKeyRequired || target == ErrNoImages {
		return errors.Is(e.Err, target)
	}
	return false
}

// NewCollaboratorError creates a CollaboratorError with an explicit message.
func NewCollaboratorError(collaborator, operation, message string, err error) *CollaboratorError {
	return &CollaboratorError{
		Collaborator: collaborator,
		Operation:    operation,
		Message:      message,
		Err:          err,
	}
}

// ParseError represents malformed or unexpected stage output. Non-fatal:
// the owning stage contributes nothing and the pipeline continues.
type ParseError struct {
	Format  string // "json", "yaml"
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error { return e.Err }

// IOError represents a filesystem failure: missing folder, unreadable file,
// or an empty image set. Fatal to the item before any collaborator call.
type IOError struct {
	Operation string // "read", "write", "list", "create"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error { return e.Err }

// ConfigError represents invalid or missing configuration.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError represents a validation failure on caller-provided data.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper wrapping functions for common patterns.

// WrapCollaborator wraps an error as a CollaboratorError, or returns nil.
func WrapCollaborator(collaborator, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Collaborator: collaborator, Operation: operation, Err: err}
}

// WrapIO wraps an error as an IOError, or returns nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error as a ParseError, or returns nil.
func WrapParse(format, message string, err error) error {
	if err == nil {
		return nil
	}
	if message == "" {
		message = err.Error()
	}
	return &ParseError{Format: format, Message: message, Err: err}
}

// IsCollaborator reports whether err is a collaborator failure.
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsIO reports whether err is an I/O failure.
func IsIO(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}
