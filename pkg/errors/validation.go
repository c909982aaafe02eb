package errors

import (
	"strings"
	"unicode"
)

// ValidateNodePath validates a device-graph node path from a manifest.
// Paths are absolute, slash-separated and must not contain traversal
// sequences or control characters.
func ValidateNodePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "node path cannot be empty")
	}

	if !strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "node path must be absolute: %q", path)
	}

	if len(path) > 512 {
		return New(ErrCodeInvalidPath, "node path too long (max 512 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "node path contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPath, "node path contains invalid sequence: %q", pattern)
		}
	}

	return nil
}
