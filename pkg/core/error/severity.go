// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of an error.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-06
// Modified: 2025-02-06

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates bad user input or a missing optional resource
	SeverityLow Severity = iota

	// SeverityMedium indicates a failure with a workaround
	SeverityMedium

	// SeverityHigh indicates a failure of a required subsystem
	SeverityHigh

	// SeverityCritical indicates the process cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeEnvironmentError:
		return SeverityCritical
	case CodeDatabaseError, CodeConnectionFailed, CodeInternal, CodeServiceUnavailable:
		return SeverityHigh
	case CodeInvalidInput, CodeValidationFailed, CodeNotFound, CodeCanceled, CodeSourceRead:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
