// Package apperror defines the coded error type used across the watcher.
// Callers branch on the Code, logs get the full chain.
package apperror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// AppError is an error with a stable code, an optional free-form context
// string, and the wrapped cause.
type AppError struct {
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	cause error
	stack []uintptr
}

// Option mutates an AppError during construction.
type Option func(*AppError)

// WithContext attaches a free-form detail string to the error.
func WithContext(detail string) Option {
	return func(e *AppError) { e.Context = detail }
}

// WithCause records the underlying error for Unwrap.
func WithCause(cause error) Option {
	return func(e *AppError) { e.cause = cause }
}

// New builds an AppError for code, filling the message from the code's
// default text when the options set none.
func New(code Code, opts ...Option) *AppError {
	e := &AppError{
		Code:      code,
		Message:   messages[code],
		Timestamp: time.Now(),
		stack:     callerStack(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Message == "" {
		e.Message = string(code)
	}
	return e
}

func (e *AppError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (context: %s)", e.Code, e.Message, e.Context)
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches two AppErrors by code, so errors.Is works with sentinel
// instances built from the same code.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Stack renders the capture-time call stack, one frame per line, with
// runtime internals filtered out.
func (e *AppError) Stack() string {
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&b, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			return b.String()
		}
	}
}

// GetCode returns the code of the first AppError in err's chain, or
// CodeUnknownError when the chain has none.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

func callerStack() []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}
