package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// nodeNameRegex matches scene node names: identifiers with dashes and dots.
var nodeNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateNodeName validates a scene node name.
//
// Names are referenced from frame steps and HTTP routes, so the rules are
// intentionally conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - Identifier-like: letters, digits, '_', '-' and '.', not starting with a digit
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScene, "node name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidScene, "node name too long (max 128 characters)")
	}

	if !nodeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidScene, "invalid node name: %q", name)
	}

	return nil
}

// ValidatePath validates a scene file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed values.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
