// File: error.go
// Title: Core Error Implementation
// Description: Structured error carrying a code, a severity, the failed
//              operation and key/value details. Compatible with errors.Is and
//              errors.As through Unwrap.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-06
// Modified: 2025-02-06
//
// Change History:
// - 2025-02-06 v0.1.0: Initial implementation

package error

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error represents a structured error with context, code and details
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	operation string
	details   map[string]interface{}
}

// New creates a new error with the given message
func New(message string) *Error {
	return &Error{
		message:  message,
		code:     CodeUnknown,
		severity: SeverityMedium,
		details:  make(map[string]interface{}),
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context. Code, severity and
// details of a wrapped *Error are inherited.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := New(message)
	wrapped.cause = err

	var inner *Error
	if errors.As(err, &inner) {
		wrapped.code = inner.code
		wrapped.severity = inner.severity
		for k, v := range inner.details {
			wrapped.details[k] = v
		}
	}
	return wrapped
}

// Error implements the standard error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.operation != "" {
		b.WriteString(e.operation)
		b.WriteString(": ")
	}
	b.WriteString(e.message)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error unwrapping
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCode sets the error code and, unless set explicitly, the severity
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	if e.severity == SeverityMedium {
		e.severity = GetSeverityFromCode(code)
	}
	return e
}

// WithSeverity sets the severity level
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithDetail adds a detail key/value pair
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// WithOperation records the operation that failed
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

// Code returns the error code
func (e *Error) Code() Code {
	return e.code
}

// Severity returns the severity level
func (e *Error) Severity() Severity {
	return e.severity
}

// Operation returns the failed operation
func (e *Error) Operation() string {
	return e.operation
}

// Details returns a copy of the details map
func (e *Error) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// String returns a detailed representation for debugging
func (e *Error) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s/%s] %s", e.code, e.severity, e.Error())

	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.details[k])
		}
	}
	return b.String()
}

// HasCode checks if any error in the chain has a specific code
func HasCode(err error, code Code) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.code == code {
			return true
		}
		err = e.cause
	}
	return false
}

// GetCode returns the error code from an error, or CodeUnknown
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// GetSeverity returns the error severity, or SeverityMedium
func GetSeverity(err error) Severity {
	var e *Error
	if errors.As(err, &e) {
		return e.severity
	}
	return SeverityMedium
}
