package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a hierarchy node identifier.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 characters
//
// Display labels are not validated here; they are escaped at render time.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidHierarchy, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidHierarchy, "node id too long (max 256 characters): %q", truncate(id, 32))
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidHierarchy, "node id contains control characters: %q", truncate(id, 32))
		}
	}

	return nil
}

// ValidateOutputPath validates an output file path.
// It rejects empty paths and paths ending in a separator.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidInput, "output path must be a file, not a directory: %q", path)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
