// Package errors provides the error taxonomy shared by the signal and idea pipelines.
package errors

import (
	stderrors "errors"
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
	// Source-degraded: one network source failed or yielded nothing. Never fatal.
	ErrCodeSourceDegraded ErrorCode = "SOURCE_DEGRADED"

	// Input-invalid: empty signal set presented to idea generation.
	ErrCodeInputInvalid ErrorCode = "INPUT_INVALID"

	ErrCodeUpstreamRateLimited    ErrorCode = "UPSTREAM_RATE_LIMITED"
	ErrCodeUpstreamQuotaExhausted ErrorCode = "UPSTREAM_QUOTA_EXHAUSTED"
	ErrCodeUpstreamFailure        ErrorCode = "UPSTREAM_FAILURE"
	ErrCodeResponseParseFailed    ErrorCode = "RESPONSE_PARSE_FAILED"

	ErrCodeConfigMissing  ErrorCode = "CONFIG_MISSING"
	ErrCodeRequestInvalid ErrorCode = "REQUEST_INVALID"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
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

// WithCause attaches the underlying error for errors.Is/As chains.
func (e *StandardError) WithCause(err error) *StandardError {
	e.cause = err
	if e.Details == "" && err != nil {
		e.Details = err.Error()
	}
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewSourceDegradedError describes a source that produced no usable signals.
func NewSourceDegradedError(source string, err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeSourceDegraded,
		Message:   fmt.Sprintf("Source '%s' degraded", source),
		Retryable: true,
		Metadata:  map[string]interface{}{"source": source},
		Timestamp: time.Now().UTC(),
	}
	return e.WithCause(err)
}

func NewInputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputInvalid,
		Message:   "No trend signals provided",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError is returned when the generation service answers 429.
func NewRateLimitedError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamRateLimited,
		Message:   "Rate limit exceeded, please try again later",
		Details:   fmt.Sprintf("service: %s, status: %d", service, http.StatusTooManyRequests),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQuotaExhaustedError is returned when the generation service answers 402.
func NewQuotaExhaustedError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamQuotaExhausted,
		Message:   "API credits exhausted, please add funds",
		Details:   fmt.Sprintf("service: %s, status: %d", service, http.StatusPaymentRequired),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFailureError covers unexpected statuses and transport errors.
func NewUpstreamFailureError(service string, status int, err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeUpstreamFailure,
		Message:   fmt.Sprintf("%s error: %d", service, status),
		Retryable: true,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
	if status == 0 {
		e.Message = fmt.Sprintf("%s request failed", service)
	}
	return e.WithCause(err)
}

func NewResponseParseFailedError(err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeResponseParseFailed,
		Message:   "Failed to parse AI response",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	return e.WithCause(err)
}

func NewConfigMissingError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   fmt.Sprintf("%s is not configured", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRequestInvalidError(err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Malformed request body",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	return e.WithCause(err)
}

// ==========================
// 3. Classification
// ==========================

// AsStandard finds a StandardError in err's chain, or wraps err as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the error code carried by err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandard(err).Code
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps an error code to the status the public API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUpstreamQuotaExhausted:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Workflow (BPMN) Integration
// ==========================

// BPMNError represents an error thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount returns how many times the workflow engine may re-run a job.
// The pipelines themselves never retry.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamFailure:
		return 2
	case ErrCodeUpstreamRateLimited:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "SOURCE"):
		return "SOURCE"
	case strings.HasPrefix(codeStr, "UPSTREAM") || strings.HasPrefix(codeStr, "RESPONSE"):
		return "GENERATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIGURATION"
	default:
		return "OTHER"
	}
}
