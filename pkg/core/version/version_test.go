package version

import (
	"regexp"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Platform", Platform},
		{"Language", Language},
		{"LanguageServer", LanguageServer},
		{"Validator", Validator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestComponentVersion(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"language", Language},
		{"lsp", LanguageServer},
		{"language-server", LanguageServer},
		{"grpc", Validator},
		{"unknown", Platform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComponentVersion(tt.name); got != tt.expected {
				t.Errorf("ComponentVersion(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "robolang "+Platform) {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, "commit "+Commit) {
		t.Errorf("String() = %q, missing commit", s)
	}
}
