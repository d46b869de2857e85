package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Generation specific errors
	ErrLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
	ErrInvalidOutput   ErrorCode = "INVALID_OUTPUT"
	ErrSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
)

// ErrFileAttachmentUnsupported is returned by providers that have no file store.
var ErrFileAttachmentUnsupported = errors.New("provider does not support file attachments")

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(ErrLLMServiceError, "Failed to process with LLM service", err)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(ErrSessionNotFound, fmt.Sprintf("Quiz session not found: %s", sessionID), nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

// OutputShapeError reports model output that is not valid JSON or does not match the
// quiz schema. Raw always carries the untouched model output.
type OutputShapeError struct {
	Message string
	Raw     string
}

func (e *OutputShapeError) Error() string {
	return "invalid JSON output: " + e.Message
}

// UserMessage is the error text returned to API clients.
func (e *OutputShapeError) UserMessage() string {
	return "Invalid JSON output: " + e.Message
}
