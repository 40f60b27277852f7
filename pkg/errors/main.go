// Package errors carries the typed application errors domains return and
// the HTTP layer renders as notifications.
package errors

import (
	"errors"
	"fmt"
)

// Error types. Each maps to one HTTP status in HTTPStatusCode.
const (
	ErrorTypeInvalidRequest      = "INVALID_REQUEST"
	ErrorTypeForbidden           = "FORBIDDEN"
	ErrorTypeNotFound            = "NOT_FOUND"
	ErrorTypeConflict            = "CONFLICT"
	ErrorTypeDatabaseError       = "DATABASE_ERROR"
	ErrorTypeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorTypeUnknown             = "UNKNOWN_ERROR"
)

const (
	defaultTitle   = "Something went wrong"
	defaultMessage = "An unexpected error occurred"
)

// AppError is safe to show: Title and Message are written for the end user,
// Err holds the internal cause and is only logged.
type AppError struct {
	Type    string
	Title   string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Type + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithTitle sets the headline shown above Message.
func (e *AppError) WithTitle(title string) *AppError {
	e.Title = title
	return e
}

func NewAppError(errType, message string, err error) *AppError {
	return &AppError{Type: errType, Message: message, Err: err}
}

func NewInvalidRequestError(message string, err error) *AppError {
	return NewAppError(ErrorTypeInvalidRequest, message, err)
}

func NewForbiddenError(message string, err error) *AppError {
	return NewAppError(ErrorTypeForbidden, message, err)
}

func NewNotFoundError(message string, err error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, err)
}

func NewConflictError(message string, err error) *AppError {
	return NewAppError(ErrorTypeConflict, message, err)
}

func NewDatabaseError(message string, err error) *AppError {
	return NewAppError(ErrorTypeDatabaseError, message, err)
}

func NewInternalServerError(message string, err error) *AppError {
	return NewAppError(ErrorTypeInternalServerError, message, err)
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// GetErrorType is empty for nil and ErrorTypeUnknown for foreign errors.
func GetErrorType(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := asAppError(err); ok {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

func IsType(err error, errType string) bool {
	return err != nil && GetErrorType(err) == errType
}

func GetTitle(err error) string {
	if appErr, ok := asAppError(err); ok && appErr.Title != "" {
		return appErr.Title
	}
	return defaultTitle
}

// GetHumanReadableMessage never exposes the text of foreign errors, which
// may carry driver or network details.
func GetHumanReadableMessage(err error) string {
	if appErr, ok := asAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return defaultMessage
}
