// File: codes.go
// Title: Error Code Definitions
// Description: Error codes for operational failures of the robolang tools:
//              configuration, storage, transport and input handling. Source
//              diagnostics are not errors of this kind and carry their own codes.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-06
// Modified: 2025-02-06
//
// Change History:
// - 2025-02-06 v0.1.0: Initial set of codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeCanceled     Code = "CANCELED"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// Service and network
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"
	CodeProtocolError      Code = "PROTOCOL_ERROR"

	// Configuration and environment
	CodeConfigError      Code = "CONFIG_ERROR"
	CodeMissingConfig    Code = "MISSING_CONFIG"
	CodeInvalidConfig    Code = "INVALID_CONFIG"
	CodeEnvironmentError Code = "ENVIRONMENT_ERROR"

	// Validation of source files
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeSourceRead       Code = "SOURCE_READ"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Category groups codes for metrics and log fields
func (c Code) Category() string {
	switch c {
	case CodeDatabaseError, CodeConnectionFailed:
		return "storage"
	case CodeServiceUnavailable, CodeNetworkError, CodeProtocolError:
		return "network"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig, CodeEnvironmentError:
		return "config"
	case CodeValidationFailed, CodeSourceRead, CodeInvalidInput:
		return "input"
	default:
		return "generic"
	}
}
