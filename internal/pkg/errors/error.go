package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    int
	Message string
	Err     error
	Details string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	return GetHTTPStatus(e.Code)
}

// RPCCode returns the JSON-RPC code for this error
func (e *AppError) RPCCode() int {
	return GetRPCCode(e.Code)
}

// New creates a new AppError with the given code
func New(code int, details ...string) *AppError {
	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Details: first(details),
	}
}

// Wrap wraps err with a code. An AppError already in the chain is returned
// as is, with its details replaced when new ones are given.
func Wrap(err error, code int, details ...string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if d := first(details); d != "" {
			appErr.Details = d
		}
		return appErr
	}

	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Err:     err,
		Details: first(details),
	}
}

// Wrapf wraps an error with formatted details
func Wrapf(err error, code int, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is checks if err is an AppError with the given code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ExtractCode extracts the error code, defaulting to ErrInternalServer
func ExtractCode(err error) int {
	if err == nil {
		return Success
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternalServer
}

// GetDetails extracts the most specific message available
func GetDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Details != "" {
			return appErr.Details
		}
		if appErr.Err != nil {
			return appErr.Err.Error()
		}
		return ""
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// NewInternalError creates an internal server error
func NewInternalError(details ...string) *AppError {
	return New(ErrInternalServer, details...)
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(details ...string) *AppError {
	return New(ErrBadRequest, details...)
}

// NewValidationError creates a validation error
func NewValidationError(field string) *AppError {
	return New(ErrInvalidParams, fmt.Sprintf("validation failed for field: %s", field))
}

func first(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}
