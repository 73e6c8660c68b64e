// Package errors provides unified error handling across the prompt catalog.
//
// Every interface (CLI, HTTP, TUI) consumes the same AppError so that a
// catalog or storage fault is reported consistently. Construct errors with
// the helpers below, wrap lower-level failures with Wrap, and let the
// interface handlers in handlers.go decide how they are displayed.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Catalog errors
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogInvalid     ErrorCode = "CATALOG_INVALID"

	// Request errors
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Environment errors
	ErrCodeStorageFailure       ErrorCode = "STORAGE_FAILURE"
	ErrCodeClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE"

	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryCatalog    ErrorCategory = "catalog"
	CategoryValidation ErrorCategory = "validation"
	CategoryStorage    ErrorCategory = "storage"
	CategoryClipboard  ErrorCategory = "clipboard"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeCatalogUnavailable:
		return CategoryCatalog, SeverityCritical
	case ErrCodeCatalogInvalid:
		return CategoryCatalog, SeverityCritical
	case ErrCodeInvalidInput:
		return CategoryValidation, SeverityWarning
	case ErrCodeNotFound:
		return CategoryValidation, SeverityInfo
	case ErrCodeStorageFailure:
		return CategoryStorage, SeverityWarning
	case ErrCodeClipboardUnavailable:
		return CategoryClipboard, SeverityWarning
	case ErrCodeInternalError:
		return CategorySystem, SeverityCritical
	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// Common error constructors for frequently used errors

func CatalogUnavailableError(source string, err error) *AppError {
	return Wrap(err, ErrCodeCatalogUnavailable, fmt.Sprintf("Catalog could not be loaded from %s", source))
}

func CatalogInvalidError(reason string, err error) *AppError {
	return Wrap(err, ErrCodeCatalogInvalid, fmt.Sprintf("Catalog is invalid: %s", reason))
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInputError(message string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message)
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}

func ClipboardError(err error) *AppError {
	return Wrap(err, ErrCodeClipboardUnavailable, "Clipboard is unavailable")
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}
