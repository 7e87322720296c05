// Package services provides the training pipeline that sits between the
// command line tools and the dataset, forecast and model store packages.
package services

import (
	"errors"
	"fmt"
)

// Error codes returned by the training pipeline
const (
	CodeInputNotFound   = "INPUT_NOT_FOUND"
	CodeInputInvalid    = "INPUT_INVALID"
	CodeModelSaveFailed = "MODEL_SAVE_FAILED"
	CodeInvalidMethod   = "INVALID_METHOD"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	cause error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func wrapError(code string, cause error, format string, args ...interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: fmt.Sprintf(format, args...) + ": " + cause.Error(),
		Details: map[string]interface{}{"error": cause.Error()},
		cause:   cause,
	}
}

// ErrorCode returns the code of the first ServiceError in err's chain, or
// an empty string.
func ErrorCode(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
