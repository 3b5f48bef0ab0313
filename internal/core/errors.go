package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatProgramming ErrorCategory = "programming" // Coding defect, never recoverable
	ErrCatData        ErrorCategory = "data"        // A single persisted value could not be read
	ErrCatStructure   ErrorCategory = "structure"   // A persisted configuration entry is malformed
	ErrCatValidation  ErrorCategory = "validation"  // Invalid input
	ErrCatStorage     ErrorCategory = "storage"     // Reading or writing state failed
	ErrCatNotFound    ErrorCategory = "not_found"   // Resource not found
	ErrCatInternal    ErrorCategory = "internal"    // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
	Details  map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrProgramming creates an error describing a coding defect.
// Callers on a fail-fast path panic with it.
func ErrProgramming(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatProgramming,
		Code:     code,
		Message:  message,
	}
}

// ErrData creates an error for a single unreadable persisted value.
func ErrData(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatData,
		Code:     code,
		Message:  message,
	}
}

// ErrStructure creates an error for a malformed persisted configuration entry.
func ErrStructure(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatStructure,
		Code:     code,
		Message:  message,
	}
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     code,
		Message:  message,
	}
}

// ErrStorage creates a storage error.
func ErrStorage(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatStorage,
		Code:     code,
		Message:  message,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// IsRecoverable reports whether loading may continue past err.
// Data and structure errors only cost the offending entry.
func IsRecoverable(err error) bool {
	switch GetCategory(err) {
	case ErrCatData, ErrCatStructure:
		return true
	default:
		return false
	}
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeUnsupportedType       = "UNSUPPORTED_TYPE"
	CodePropertyTypeMismatch  = "PROPERTY_TYPE_MISMATCH"
	CodeUnknownProperty       = "UNKNOWN_PROPERTY"
	CodeDuplicateDescriptor   = "DUPLICATE_DESCRIPTOR"
	CodeInvalidToolDefinition = "INVALID_TOOL_DEFINITION"

	// Persisted data error codes
	CodeUnknownTypeID       = "UNKNOWN_TYPE_ID"
	CodeMalformedValue      = "MALFORMED_VALUE"
	CodeUnknownEnumConstant = "UNKNOWN_ENUM_CONSTANT"
	CodeMissingAttribute    = "MISSING_ATTRIBUTE"
	CodeInvalidID           = "INVALID_CONFIGURATION_ID"
	CodeUnknownPropertyType = "UNKNOWN_PROPERTY_TYPE"

	// Validation and storage error codes
	CodeInvalidScope   = "INVALID_SCOPE"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeStateCorrupted = "STATE_CORRUPTED"
)
