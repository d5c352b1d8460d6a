// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from configuration
// Author:      Mike Stoffels
// Created:     2025-02-07
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	corelog "github.com/msto63/robolang/pkg/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "json", "text" or "console" (default: json)
	Format string

	// File, when set, receives a copy of every entry
	File string

	// Output defaults to stderr. stdout belongs to the LSP stdio transport.
	Output io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a new logger. The returned closer releases the log file
// and is never nil.
func NewLogger(cfg LoggerConfig) (*corelog.Logger, io.Closer, error) {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		output = io.MultiWriter(output, f)
		closer = f
	}

	format, err := corelog.ParseFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	logger := corelog.NewWithConfig(corelog.Config{
		Level:  parseLevel(cfg.Level),
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})

	return logger, closer, nil
}

// NewSimpleLogger creates a logger with default settings on stderr
func NewSimpleLogger(serviceName string) *corelog.Logger {
	logger, _, _ := NewLogger(DefaultLoggerConfig(serviceName))
	return logger
}

// parseLevel converts a string level, falling back to info
func parseLevel(level string) corelog.Level {
	parsed, err := corelog.ParseLevel(level)
	if err != nil {
		return corelog.LevelInfo
	}
	return parsed
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
