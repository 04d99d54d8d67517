// Package errors provides a lightweight structured error type (PointwatchError)
// for category-based classification inside the polling loop and at the CLI boundary.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a pointwatch error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryConnection ErrorCategory = "connection"
	CategoryRead       ErrorCategory = "read"
	CategoryPublish    ErrorCategory = "publish"

	// Runtime and infrastructure errors
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// PointwatchError is a structured error with category, retryability, and context
type PointwatchError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PointwatchError
type ContextFields map[string]any

// Error implements the error interface
func (e *PointwatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *PointwatchError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *PointwatchError) WithContext(key string, value any) *PointwatchError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithRetryable marks the error as retryable or not
func (e *PointwatchError) WithRetryable(retryable bool) *PointwatchError {
	e.Retryable = retryable
	return e
}

// New creates a new PointwatchError
func New(category ErrorCategory, severity ErrorSeverity, message string) *PointwatchError {
	return &PointwatchError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new PointwatchError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PointwatchError {
	return &PointwatchError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// IsCategory reports whether err (or anything it wraps) is a PointwatchError
// of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var pe *PointwatchError
	if stderrors.As(err, &pe) {
		return pe.Category == category
	}
	return false
}

// IsRetryable reports whether err is a retryable PointwatchError.
func IsRetryable(err error) bool {
	var pe *PointwatchError
	if stderrors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
