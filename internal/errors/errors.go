// Package errors provides unified error handling with structured codes.
package errors

import "fmt"

// ErrorCode classifies failures across the platform.
type ErrorCode string

const (
	Unknown         ErrorCode = "UNKNOWN"
	Internal        ErrorCode = "INTERNAL"
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	NotFound        ErrorCode = "NOT_FOUND"
	Unavailable     ErrorCode = "UNAVAILABLE"
	Timeout         ErrorCode = "TIMEOUT"
	Cancelled       ErrorCode = "CANCELLED"

	StoreInitFailed   ErrorCode = "STORE_INIT_FAILED"
	StoreInsertFailed ErrorCode = "STORE_INSERT_FAILED"
	StoreQueryFailed  ErrorCode = "STORE_QUERY_FAILED"
	StoreQueueFull    ErrorCode = "STORE_QUEUE_FULL"

	CaptureFailed       ErrorCode = "CAPTURE_FAILED"
	CaptureDecodeFailed ErrorCode = "CAPTURE_DECODE_FAILED"

	SummarizerNotConfigured ErrorCode = "SUMMARIZER_NOT_CONFIGURED"
	SummarizerAPIError      ErrorCode = "SUMMARIZER_API_ERROR"
	SummarizerRateLimited   ErrorCode = "SUMMARIZER_RATE_LIMITED"

	ConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     ErrorCode
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a new AppError with the given code and message.
func New(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// IsRetryable returns true if the error is potentially retryable.
func IsRetryable(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	switch appErr.Code {
	case Unavailable, Timeout, SummarizerRateLimited, StoreInsertFailed:
		return true
	default:
		return false
	}
}
