package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"

	"github.com/hrygo/duebot/plugin/ticktick"
)

// ErrorCode represents a specific error type for bot operations.
type ErrorCode string

const (
	// ErrCodeConfigInvalid indicates missing or malformed configuration.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ErrCodeTaskRejected indicates TickTick answered with a non-2xx status.
	ErrCodeTaskRejected ErrorCode = "TASK_REJECTED"
	// ErrCodeUpstreamUnavailable indicates TickTick could not be reached.
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	// ErrCodeRateLimitExceeded indicates a chat sent too many messages.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeStorageFailed indicates the task journal could not be written or read.
	ErrCodeStorageFailed ErrorCode = "STORAGE_FAILED"
)

// BotError represents a structured error for bot operations.
type BotError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BotError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *BotError) WithContext(key string, value any) *BotError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ConfigInvalid creates a configuration error.
func ConfigInvalid(msg string) *BotError {
	return &BotError{Code: ErrCodeConfigInvalid, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *BotError {
	return &BotError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// StorageFailed creates a journal error.
func StorageFailed(msg string, cause error) *BotError {
	return &BotError{Code: ErrCodeStorageFailed, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *BotError {
	return &BotError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if err, or any error it wraps, carries code.
func IsCode(err error, code ErrorCode) bool {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns defaultCode if the error is not a BotError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Code
	}
	return defaultCode
}

// Classify maps a task-creation failure to an error code. A nil error yields "".
func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Code
	}
	if _, ok := ticktick.AsAPIError(err); ok {
		return ErrCodeTaskRejected
	}
	if stderrors.Is(err, context.Canceled) {
		return ErrCodeContextCanceled
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return ErrCodeTimeout
	}
	return ErrCodeUpstreamUnavailable
}
