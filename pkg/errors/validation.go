package errors

import (
	"strings"
	"unicode"
)

const maxIDLength = 256

// ValidateElementID validates a diagram element identifier.
//
// The rules are conservative so IDs can be used verbatim as graphviz node
// names and cache key material:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 bytes
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "element ID cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "element ID too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "element ID %q contains control characters", id)
		}
	}

	return nil
}

// ValidatePath validates a file path given on the command line or in a
// request.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) when relative is set
func ValidatePath(path string, relative bool) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if relative {
		if strings.HasPrefix(path, "/") {
			return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
		}
		if strings.Contains(path, "..") {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
