// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     version
// Description: Central version management for the tools and the language
// Author:      Mike Stoffels
// Created:     2025-02-10
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants for the robolang components
const (
	// Platform version of the tool set
	Platform = "0.3.0"

	// Language is the version of the accepted grammar
	Language = "1.0.0"

	// Component versions
	LanguageServer = "0.3.0"
	Validator      = "0.2.0"
)

// Commit is injected at build time with -ldflags "-X ...version.Commit=..."
var Commit = "dev"

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "language":
		return Language
	case "lsp", "language-server":
		return LanguageServer
	case "validator", "grpc":
		return Validator
	default:
		return Platform
	}
}

// String returns a one-line version summary
func String() string {
	return fmt.Sprintf("robolang %s (language %s, commit %s)", Platform, Language, Commit)
}
