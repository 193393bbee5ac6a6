package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err already carries an Error, the wrapper keeps its code and category.
// Otherwise, it creates a new Internal error wrapping the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var inner *Error
	if errors.As(err, &inner) {
		wrapped := &Error{
			code:     inner.code,
			category: inner.category,
			message:  message,
			cause:    err,
			metadata: inner.Metadata(),
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	// Context errors only come out of the transport.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(ErrCodeNetwork, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.code == code
	}
	return false
}

// IsCategory checks if any error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.category == category
	}
	return false
}

// IsInput checks if the error is an input error.
func IsInput(err error) bool {
	return IsCategory(err, CategoryInput)
}

// IsNetwork checks if the error is a network error.
func IsNetwork(err error) bool {
	return IsCategory(err, CategoryNetwork)
}

// IsFormat checks if the error is a format error.
func IsFormat(err error) bool {
	return IsCategory(err, CategoryFormat)
}

// IsConfig checks if the error is a config error.
func IsConfig(err error) bool {
	return IsCategory(err, CategoryConfig)
}

// Join combines multiple errors into a single error.
// If all errors are nil, returns nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
