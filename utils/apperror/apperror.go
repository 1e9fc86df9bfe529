package apperror

import "fmt"

// AppError is the base error type for all domain errors. StatusCode is the
// HTTP status the centralized error handler responds with. IsOperational
// distinguishes expected business failures (safe to show to the caller)
// from unexpected internal ones.
type AppError struct {
	Message       string
	StatusCode    int
	IsOperational bool
}

func (e *AppError) Error() string {
	return e.Message
}

// NewValidationError signals a violated business rule or malformed input (400).
func NewValidationError(message string) *AppError {
	return &AppError{
		Message:       message,
		StatusCode:    400,
		IsOperational: true,
	}
}

// NewNotFoundError signals that the named resource does not exist (404).
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Message:       fmt.Sprintf("%s not found", resource),
		StatusCode:    404,
		IsOperational: true,
	}
}

// NewDuplicateError signals a uniqueness conflict on the named field (409).
func NewDuplicateError(field string) *AppError {
	return &AppError{
		Message:       fmt.Sprintf("%s already exists", field),
		StatusCode:    409,
		IsOperational: true,
	}
}

// NewDatabaseError signals an unexpected storage failure (500). The message
// must be a fixed, non-leaking description, never raw driver error text.
func NewDatabaseError(message string) *AppError {
	return &AppError{
		Message:       message,
		StatusCode:    500,
		IsOperational: false,
	}
}

// NewUnauthorizedError signals a missing or invalid credential (401).
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Unauthorized access"
	}
	return &AppError{
		Message:       message,
		StatusCode:    401,
		IsOperational: true,
	}
}

// NewForbiddenError signals an authenticated but disallowed request (403).
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "Access forbidden"
	}
	return &AppError{
		Message:       message,
		StatusCode:    403,
		IsOperational: true,
	}
}
