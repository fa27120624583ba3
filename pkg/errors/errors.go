package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeInternal        ErrorType = "INTERNAL"
	ErrorTypeAuthRequired    ErrorType = "AUTH_REQUIRED"
	ErrorTypeMediaEncoding   ErrorType = "MEDIA_ENCODING"
	ErrorTypeBlueprintUpload ErrorType = "BLUEPRINT_UPLOAD"
	ErrorTypeAnalysis        ErrorType = "ANALYSIS"
	ErrorTypePersistence     ErrorType = "PERSISTENCE_WARNING"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// NewAuthRequired creates an error for operations that need an authenticated owner
func NewAuthRequired(message string) error {
	return &AppError{Type: ErrorTypeAuthRequired, Message: message}
}

// NewMediaEncoding creates an error for a local file read/encode failure
func NewMediaEncoding(message string, err error) error {
	return &AppError{Type: ErrorTypeMediaEncoding, Message: message, Err: err}
}

// NewBlueprintUpload creates an error for a remote blueprint upload failure
func NewBlueprintUpload(message string, err error) error {
	return &AppError{Type: ErrorTypeBlueprintUpload, Message: message, Err: err}
}

// NewAnalysis creates an error for a failed or empty analysis collaborator call
func NewAnalysis(message string, err error) error {
	return &AppError{Type: ErrorTypeAnalysis, Message: message, Err: err}
}

// NewPersistenceWarning creates a non-fatal error for a failed best-effort save
func NewPersistenceWarning(message string, err error) error {
	return &AppError{Type: ErrorTypePersistence, Message: message, Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// TypeOf returns the error type, or ErrorTypeInternal for unclassified errors
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsAuthRequired checks if an error is an auth-required error
func IsAuthRequired(err error) bool { return isType(err, ErrorTypeAuthRequired) }

// IsMediaEncoding checks if an error is a media encoding error
func IsMediaEncoding(err error) bool { return isType(err, ErrorTypeMediaEncoding) }

// IsBlueprintUpload checks if an error is a blueprint upload error
func IsBlueprintUpload(err error) bool { return isType(err, ErrorTypeBlueprintUpload) }

// IsAnalysis checks if an error is an analysis error
func IsAnalysis(err error) bool { return isType(err, ErrorTypeAnalysis) }

// IsPersistenceWarning checks if an error is a non-fatal persistence warning
func IsPersistenceWarning(err error) bool { return isType(err, ErrorTypePersistence) }
