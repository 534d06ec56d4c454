package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies a generation failure for the caller.
type ErrorType string

const (
	// ErrorTypeConfig marks missing or rejected credentials and unknown
	// models. Not retryable without a configuration change.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeQuota marks rate limiting and exhausted quota. Retryable
	// after backoff; the caller decides.
	ErrorTypeQuota ErrorType = "quota"
	// ErrorTypeNetwork marks connection failures and timeouts. Retryable.
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeGeneration marks everything else; the report is simply not
	// produced. Not retryable.
	ErrorTypeGeneration ErrorType = "generation"
)

// Error represents a structured generation error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface so the retry
// package can check retryability without importing llm.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured generation error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error into the config/quota/network/generation
// buckets. Already-classified errors pass through unchanged.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	// Credential and model problems (not retryable without a config change)
	if strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "api key is required") {
		e := NewError(ErrorTypeConfig, "authentication failed", false, err)
		e.StatusCode = statusCode
		return e
	}
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")) {
		e := NewError(ErrorTypeConfig, "model not found", false, err)
		e.StatusCode = statusCode
		return e
	}

	// Rate limiting and quota (retryable after backoff)
	if strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "quota") {
		e := NewError(ErrorTypeQuota, "rate limited", true, err)
		e.StatusCode = statusCode
		return e
	}

	// Connection failures and timeouts (retryable)
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "connection reset") || strings.Contains(lower, "broken pipe") {
		e := NewError(ErrorTypeNetwork, "connection failed", true, err)
		e.StatusCode = statusCode
		return e
	}

	// 5xx server errors behave like transient network failures
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") {
		e := NewError(ErrorTypeNetwork, "server error", true, err)
		e.StatusCode = statusCode
		return e
	}

	e := NewError(ErrorTypeGeneration, "generation failed", false, err)
	e.StatusCode = statusCode
	return e
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeGeneration
}
