// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     logging
// Description: Key/value logger facade used by transport code
// Author:      Mike Stoffels
// Created:     2025-02-07
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"strings"

	corelog "github.com/msto63/robolang/pkg/core/log"
)

// Logger is a named facade over the process default logger. The default is
// resolved on every call so package-level loggers created during init pick
// up the configuration applied later by the command.
type Logger struct {
	name string
}

// New creates a named logger
func New(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) base() *corelog.Logger {
	return corelog.GetDefault().WithName(l.name)
}

// Debug logs a debug message with key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.base().Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.base().Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.base().Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.base().Error(msg, toFields(keysAndValues...))
}

// Printf adapts the logger to printf-style consumers such as the JSON-RPC
// message tracer. Lines are logged at trace level.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.base().Trace(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// toFields converts key-value pairs to fields
func toFields(keysAndValues ...interface{}) corelog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(corelog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
