package errors

import (
	"strings"
	"unicode"
)

// ValidateStateID validates a state identifier for use as a map key and as
// the source component of transition identities.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - Maximum length of 256 characters
//
// Hyphens are allowed: transition identity parsing splits at the last hyphen,
// which stays unambiguous because the index suffix is purely numeric.
func ValidateStateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "state id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "state id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "state id contains control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "state id cannot contain whitespace")
		}
	}

	return nil
}

// ValidateWorkflowID validates a workflow document identifier for safety.
// It rejects identifiers that could be used for path traversal when the
// file-backed store maps them to file names.
func ValidateWorkflowID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "workflow id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "workflow id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "workflow id contains control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "workflow id contains invalid characters: %q", pattern)
		}
	}

	return nil
}
