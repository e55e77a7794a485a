// Package errors provides standardized error handling for the chat service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLLMGatewayFailed ErrorCode = "LLM_GATEWAY_FAILED"
	ErrCodeLLMTimeout       ErrorCode = "LLM_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeAdminOperationFailed     ErrorCode = "ADMIN_OPERATION_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeUnsupportedTool ErrorCode = "UNSUPPORTED_TOOL"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewLLMGatewayFailedError reports a failed model call. Surfaced to the client as "LLM error: ...".
func NewLLMGatewayFailedError(err error) *StandardError {
	return newError(ErrCodeLLMGatewayFailed, "LLM error: "+err.Error(), err, false)
}

// NewLLMTimeoutError reports a model call that exceeded its deadline.
func NewLLMTimeoutError(err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM error: request timed out", err, false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true)
}

// NewQueryExecutionFailedError creates a query execution error tagged with the query name.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	e := newError(ErrCodeQueryExecutionFailed, "Database query execution error", err, true)
	e.Details = fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error())
	return e
}

// NewAdminOperationFailedError wraps a failed clear/seed/reset/status call.
func NewAdminOperationFailedError(operation string, err error) *StandardError {
	e := newError(ErrCodeAdminOperationFailed, fmt.Sprintf("Database %s failed", operation), err, false)
	return e.WithMetadata("operation", operation)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Product search failed", err, true)
}

func NewInvalidRequestError(details string) *StandardError {
	e := newError(ErrCodeInvalidRequest, "Invalid request", nil, false)
	e.Details = details
	return e
}

func NewNotFoundError(resource, id string) *StandardError {
	e := newError(ErrCodeNotFound, fmt.Sprintf("%s %s not found", resource, id), nil, false)
	e.Details = fmt.Sprintf("%s: %s", strings.ToLower(resource), id)
	return e
}

func NewForbiddenError(details string) *StandardError {
	e := newError(ErrCodeForbidden, "Forbidden", nil, false)
	e.Details = details
	return e
}

func NewUnsupportedToolError(tool string) *StandardError {
	e := newError(ErrCodeUnsupportedTool, "Unsupported tool", nil, false)
	e.Details = fmt.Sprintf("tool: %s", tool)
	return e
}

// ==========================
// 3. Error Conversion
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeLLMGatewayFailed:         http.StatusInternalServerError,
	ErrCodeLLMTimeout:               http.StatusInternalServerError,
	ErrCodeDatabaseConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeQueryExecutionFailed:     http.StatusInternalServerError,
	ErrCodeAdminOperationFailed:     http.StatusInternalServerError,
	ErrCodeSearchQueryFailed:        http.StatusInternalServerError,
	ErrCodeInvalidRequest:           http.StatusBadRequest,
	ErrCodeNotFound:                 http.StatusNotFound,
	ErrCodeForbidden:                http.StatusForbidden,
	ErrCodeUnsupportedTool:          http.StatusOK,
	ErrCodeInternal:                 http.StatusInternalServerError,
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

// ==========================
// 4. Utility Functions
// ==========================

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "ADMIN"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "FORBIDDEN"):
		return "CLIENT"
	case strings.Contains(codeStr, "TOOL"):
		return "TOOL"
	default:
		return "OTHER"
	}
}
