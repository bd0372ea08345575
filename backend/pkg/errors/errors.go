package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeStore represents storage backend errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeCatalog represents relationship type catalog errors
	ErrorTypeCatalog ErrorType = "catalog"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeValidation represents invalid caller input
	ErrorTypeValidation ErrorType = "validation"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType returns the error category. Typed errors embedding *BaseError
// inherit it, which lets IsErrorType match them directly.
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Store Errors

// ErrStorageUnavailable is returned when the backing store cannot serve a request.
// It is never retried inside the core.
type ErrStorageUnavailable struct {
	*BaseError
	Backend   string
	Operation string
}

func NewStorageUnavailable(backend, operation string, err error) *ErrStorageUnavailable {
	return &ErrStorageUnavailable{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("%s %s failed", backend, operation), err),
		Backend:   backend,
		Operation: operation,
	}
}

// Validation Errors

// ErrInvalidArgument is returned when a caller passes a malformed value
type ErrInvalidArgument struct {
	*BaseError
	Field  string
	Reason string
}

func NewInvalidArgument(field, reason string) *ErrInvalidArgument {
	return &ErrInvalidArgument{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Catalog Errors

// ErrCatalogSeedFailed is returned when the embedded vocabulary cannot be read
type ErrCatalogSeedFailed struct {
	*BaseError
	Source string
}

func NewCatalogSeedFailed(source string, err error) *ErrCatalogSeedFailed {
	return &ErrCatalogSeedFailed{
		BaseError: NewBaseError(ErrorTypeCatalog, fmt.Sprintf("failed to read vocabulary: %s", source), err),
		Source:    source,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(interface{ ErrorType() ErrorType }); ok && typed.ErrorType() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsValidation reports whether err was caused by malformed caller input
func IsValidation(err error) bool {
	return IsErrorType(err, ErrorTypeValidation)
}

// IsRetryable checks if an error is retryable by the caller.
// Only storage outages qualify; validation and config errors never do.
func IsRetryable(err error) bool {
	if IsErrorType(err, ErrorTypeValidation) || IsErrorType(err, ErrorTypeConfig) {
		return false
	}
	var unavailable *ErrStorageUnavailable
	return stderrors.As(err, &unavailable)
}
