// File: logger.go
// Title: Core Logger Implementation
// Description: Structured logger with contextual fields, named loggers and
//              pluggable formatters. Structured errors from pkg/core/error
//              are logged at a level derived from their severity.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-05
// Modified: 2025-02-06
//
// Change History:
// - 2025-02-05 v0.1.0: Initial implementation with structured logging
// - 2025-02-06 v0.1.0: LogError maps error severity to log level

package log

import (
	"io"
	"os"
	"sync"

	coreerr "github.com/msto63/robolang/pkg/core/error"
)

// Logger represents a structured logger with contextual information
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string

	// Context fields that are added to all log entries
	contextFields Fields

	mutex sync.RWMutex

	// writeMu serializes writes of loggers derived from the same root so
	// that concurrent entries never interleave on the output.
	writeMu *sync.Mutex
}

// Config represents logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

// New creates a new logger with default settings
func New() *Logger {
	return NewWithConfig(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: os.Stdout,
	})
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stdout
	}
	return &Logger{
		level:         config.Level,
		formatter:     GetFormatter(config.Format),
		output:        output,
		name:          config.Name,
		contextFields: make(Fields),
		writeMu:       &sync.Mutex{},
	}
}

// Discard returns a logger that drops every entry
func Discard() *Logger {
	return NewWithConfig(Config{Level: LevelFatal + 1, Output: io.Discard})
}

// WithLevel creates a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

// WithFormat creates a new logger with the specified format
func (l *Logger) WithFormat(format Format) *Logger {
	c := l.clone()
	c.formatter = GetFormatter(format)
	return c
}

// WithOutput creates a new logger with the specified output
func (l *Logger) WithOutput(output io.Writer) *Logger {
	c := l.clone()
	c.output = output
	c.writeMu = &sync.Mutex{}
	return c
}

// WithName creates a new logger with the specified name
func (l *Logger) WithName(name string) *Logger {
	c := l.clone()
	c.name = name
	return c
}

// WithField creates a new logger with an additional context field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.contextFields[key] = value
	return c
}

// WithFields creates a new logger with additional context fields
func (l *Logger) WithFields(fields Fields) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.contextFields[k] = v
	}
	return c
}

// WithRequestID creates a new logger tagged with a request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithField("request_id", requestID)
}

// Trace logs a message at trace level
func (l *Logger) Trace(message string, fields ...Fields) {
	l.log(LevelTrace, message, nil, fields...)
}

// Debug logs a message at debug level
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, nil, fields...)
}

// Info logs a message at info level
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, nil, fields...)
}

// Warn logs a message at warning level
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, nil, fields...)
}

// Error logs a message at error level
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, nil, fields...)
}

// Fatal logs a message at fatal level and exits the program
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, fields...)
	os.Exit(1)
}

// ErrorWithErr logs an error message with an attached error
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// WarnWithErr logs a warning message with an attached error
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, fields...)
}

// LogError logs an error with automatic level detection
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	code := coreerr.GetCode(err)
	if code == coreerr.CodeUnknown {
		l.log(LevelError, err.Error(), err)
		return
	}

	fields := Fields{
		"error_code":     code.String(),
		"error_category": code.Category(),
		"error_severity": coreerr.GetSeverity(err).String(),
	}

	switch coreerr.GetSeverity(err) {
	case coreerr.SeverityLow:
		l.log(LevelInfo, err.Error(), err, fields)
	case coreerr.SeverityMedium:
		l.log(LevelWarn, err.Error(), err, fields)
	default:
		l.log(LevelError, err.Error(), err, fields)
	}
}

// IsLevelEnabled returns true if the given level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return level.ShouldLog(l.level)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.level
}

// SetLevel sets the log level in place
func (l *Logger) SetLevel(level Level) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.level = level
}

func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	l.mutex.RLock()
	if !level.ShouldLog(l.level) {
		l.mutex.RUnlock()
		return
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.Error = err

	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, fieldSet := range fields {
		for k, v := range fieldSet {
			entry.Fields[k] = v
		}
	}

	formatter := l.formatter
	output := l.output
	writeMu := l.writeMu
	l.mutex.RUnlock()

	formatted, formatErr := formatter.Format(entry)
	if formatErr != nil {
		return
	}

	writeMu.Lock()
	output.Write(formatted)
	writeMu.Unlock()
}

func (l *Logger) clone() *Logger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	fields := make(Fields, len(l.contextFields))
	for k, v := range l.contextFields {
		fields[k] = v
	}

	return &Logger{
		level:         l.level,
		formatter:     l.formatter,
		output:        l.output,
		name:          l.name,
		contextFields: fields,
		writeMu:       l.writeMu,
	}
}

var (
	defaultLogger *Logger
	defaultMutex  sync.RWMutex
)

// GetDefault returns the process-wide default logger
func GetDefault() *Logger {
	defaultMutex.RLock()
	if defaultLogger != nil {
		defer defaultMutex.RUnlock()
		return defaultLogger
	}
	defaultMutex.RUnlock()

	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	if defaultLogger == nil {
		defaultLogger = New()
	}
	return defaultLogger
}

// SetDefault replaces the process-wide default logger
func SetDefault(logger *Logger) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultLogger = logger
}
