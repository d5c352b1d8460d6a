// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes and severity.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-06
// Modified: 2025-02-06

package error

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("config file missing")

	if err.Error() != "config file missing" {
		t.Errorf("Error() = %q, want %q", err.Error(), "config file missing")
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		wantNil bool
		wantMsg string
	}{
		{
			name:    "wrap nil error",
			err:     nil,
			message: "ignored",
			wantNil: true,
		},
		{
			name:    "wrap standard error",
			err:     errors.New("disk full"),
			message: "write history",
			wantMsg: "write history: disk full",
		},
		{
			name:    "wrap structured error",
			err:     New("no such table").WithCode(CodeDatabaseError),
			message: "query runs",
			wantMsg: "query runs: no such table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Error("errors.Is() should find the wrapped cause")
			}
		})
	}
}

func TestWrapInheritsCode(t *testing.T) {
	inner := New("locked").WithCode(CodeDatabaseError).WithDetail("path", "/tmp/h.db")
	outer := Wrap(inner, "record run")

	if outer.Code() != CodeDatabaseError {
		t.Errorf("Code() = %v, want %v", outer.Code(), CodeDatabaseError)
	}
	if outer.Severity() != SeverityHigh {
		t.Errorf("Severity() = %v, want %v", outer.Severity(), SeverityHigh)
	}
	if outer.Details()["path"] != "/tmp/h.db" {
		t.Errorf("Details()[path] = %v", outer.Details()["path"])
	}
}

func TestWithOperation(t *testing.T) {
	err := New("bad port").WithOperation("config.Validate")
	if err.Error() != "config.Validate: bad port" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Operation() != "config.Validate" {
		t.Errorf("Operation() = %q", err.Operation())
	}
}

func TestHasCode(t *testing.T) {
	base := New("refused").WithCode(CodeConnectionFailed)
	wrapped := fmt.Errorf("dial: %w", Wrap(base, "connect").WithCode(CodeNetworkError))

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"outer code", wrapped, CodeNetworkError, true},
		{"inner code", wrapped, CodeConnectionFailed, true},
		{"absent code", wrapped, CodeConfigError, false},
		{"standard error", errors.New("x"), CodeUnknown, false},
		{"nil", nil, CodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverityFromCode(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeEnvironmentError, SeverityCritical},
		{CodeDatabaseError, SeverityHigh},
		{CodeInvalidInput, SeverityLow},
		{CodeConfigError, SeverityMedium},
	}

	for _, tt := range tests {
		if got := GetSeverityFromCode(tt.code); got != tt.want {
			t.Errorf("GetSeverityFromCode(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	err := New("bad value").WithCode(CodeInvalidConfig).WithDetail("key", "grpc.port").WithDetail("value", -1)
	got := err.String()
	if !strings.HasPrefix(got, "[INVALID_CONFIG/medium] bad value") {
		t.Errorf("String() = %q", got)
	}
	if !strings.Contains(got, "key=grpc.port value=-1") {
		t.Errorf("String() should list sorted details, got %q", got)
	}
}

func TestCodeCategory(t *testing.T) {
	if CodeDatabaseError.Category() != "storage" {
		t.Errorf("Category() = %q", CodeDatabaseError.Category())
	}
	if CodeUnknown.Category() != "generic" {
		t.Errorf("Category() = %q", CodeUnknown.Category())
	}
}
