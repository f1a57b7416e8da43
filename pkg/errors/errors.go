// Package errors provides structured errors with stable machine-readable
// codes. Codes cross process boundaries (CLI exit paths, HTTP error
// envelopes) while the wrapped cause stays available to errors.Is/As.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of failure. Codes are part of the HTTP
// API surface and must not be renamed.
type ErrorCode string

const (
	// ErrCodeInvalidResource indicates a chart or repo spec that fails
	// structural validation (missing name, count mismatch, ...).
	ErrCodeInvalidResource ErrorCode = "INVALID_RESOURCE"

	// ErrCodeInvalidImageKey indicates an image key with an illegal shape.
	ErrCodeInvalidImageKey ErrorCode = "INVALID_IMAGE_KEY"

	// ErrCodeInvalidWorkspace indicates a workspace file that cannot be
	// decoded or carries the wrong apiVersion/kind header.
	ErrCodeInvalidWorkspace ErrorCode = "INVALID_WORKSPACE"

	// ErrCodeInvalidRequest indicates a malformed API request.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrCodeNotFound indicates a resource that is not registered.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAlreadyExists indicates a conflicting registration.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ErrCodeMethodNotAllowed indicates an unsupported HTTP method.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"

	// ErrCodeRateLimitExceeded indicates the caller was throttled.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// ErrCodeUnavailable indicates the host cannot be reached or is
	// not ready to accept registrations.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"

	// ErrCodeTimeout indicates an operation exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error is a coded error with optional wrapped cause and context.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

// New returns a coded error with the given message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf returns a coded error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a coded error wrapping cause. A nil cause behaves
// like New.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// WrapWithContext returns a coded error wrapping cause and carrying
// key/value context echoed into API error envelopes.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *Error {
	return &Error{Code: code, Message: message, Err: cause, Context: context}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors sharing the same code, so sentinel comparisons like
// errors.Is(err, hwerrors.New(hwerrors.ErrCodeNotFound, "")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the error code from err, walking the wrap chain.
// Unstructured errors map to ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// MessageOf extracts the structured message from err, or falls back to
// err.Error() for unstructured errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// ContextOf extracts the structured context from err, or nil.
func ContextOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Context
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its
// wrap chain.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
