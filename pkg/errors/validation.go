package errors

import (
	"strings"
	"unicode"
)

// ValidateStableID validates a stable identifier supplied by a caller.
// It rejects values that could be used for injection or that the layout
// pipeline cannot process.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters (the tree uses a control byte as key separator)
//   - Maximum length of 256 characters
//
// Dataset-specific naming conventions are not enforced here.
func ValidateStableID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "stable ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "stable ID too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "stable ID contains control characters")
		}
	}

	return nil
}

// ValidateInstanceName validates a dataset instance name. Instance names are
// identity components, so the same rules as for stable IDs apply.
func ValidateInstanceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "instance name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "instance name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "instance name contains control characters")
		}
	}

	return nil
}

// ValidatePath validates a file path supplied on the command line or via the
// API. It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
