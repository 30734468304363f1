// Package errors provides the error taxonomy shared by the API client, the query cache and the views.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// ErrCodeNotFound marks a definitive absence (HTTP 404). Never retried.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTransientFailure covers any other non-success status and network errors.
	ErrCodeTransientFailure ErrorCode = "TRANSIENT_FAILURE"
	// ErrCodeInvalidResponse is a 2xx response whose body does not match the declared shape.
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	// ErrCodeValidationSkip is a client-side submission that was dropped before sending.
	ErrCodeValidationSkip ErrorCode = "VALIDATION_SKIP"
	// ErrCodeInvalidInput is a client-side value that can never be sent as is.
	ErrCodeInvalidInput ErrorCode = "VALIDATION_INVALID_INPUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty"`
	Retryable  bool                   `json:"retryable"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	cause      error
}

func (e *StandardError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("StandardError[%s]: %s (status %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewNotFoundError creates a non-retryable error for an absent resource.
func NewNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Details:    details,
		StatusCode: 404,
		Retryable:  false,
		Timestamp:  time.Now().UTC(),
	}
}

// NewStatusError creates a retryable error for a non-2xx, non-404 response.
func NewStatusError(operation string, statusCode int, body string) *StandardError {
	return &StandardError{
		Code:       ErrCodeTransientFailure,
		Message:    fmt.Sprintf("%s failed: %d", operation, statusCode),
		Details:    body,
		StatusCode: statusCode,
		Retryable:  true,
		Timestamp:  time.Now().UTC(),
	}
}

// NewTransientFailureError creates a retryable error for a transport-level failure.
func NewTransientFailureError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransientFailure,
		Message:   fmt.Sprintf("%s failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidResponseError creates a non-retryable error for a malformed success body.
func NewInvalidResponseError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidResponse,
		Message:   fmt.Sprintf("%s returned an invalid response", operation),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewValidationSkipError reports a blank submission that was not sent.
func NewValidationSkipError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationSkip,
		Message:   fmt.Sprintf("%s is empty, submission skipped", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports a malformed request value.
func NewInvalidInputError(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   fmt.Sprintf("%s %s", field, reason),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification
// ==========================

// GetRetryCount returns how many times the query layer may retry a failure with this code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTransientFailure:
		return 2
	default:
		return 0
	}
}

// AsStandard extracts a StandardError from an error chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or TRANSIENT_FAILURE for unclassified errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeTransientFailure
}

// IsNotFound reports whether err is the distinguished not-found kind.
func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeNotFound
}

// IsValidationSkip reports whether err is a dropped blank submission.
func IsValidationSkip(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeValidationSkip
}

// IsRetryable reports whether the query layer should retry err at all.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Retryable && GetRetryCount(stdErr.Code) > 0
	}
	return true
}

// GetErrorCategory returns the display category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "ABSENT"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TRANSIENT"), strings.Contains(codeStr, "INVALID"):
		return "REMOTE"
	default:
		return "OTHER"
	}
}
