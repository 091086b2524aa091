package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Everything below the orchestrator returns one of
// these (wrapped); only the orchestrator converts them into result errors
// and warnings.
var (
	ErrValidation          = errors.New("validation failed")
	ErrAllExtractionFailed = errors.New("all extraction methods failed")
	ErrAIResponseMalformed = errors.New("completion service response malformed")
	ErrTimeout             = errors.New("stage timed out")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
