package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateMoleculeName validates a molecule name used as a storage key and URL segment.
//
// The rules are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters or path separators
//   - No path traversal sequences
func ValidateMoleculeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "molecule name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "molecule name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "molecule name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "molecule name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// elementCodeRegex matches one to three letter element codes (C, Cl, Uue).
var elementCodeRegex = regexp.MustCompile(`^[A-Z][a-z]{0,2}$`)

// ValidateElementCode validates an element symbol.
func ValidateElementCode(code string) error {
	if !elementCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidElement, "invalid element code: %q", code)
	}
	return nil
}

var hexColourRegex = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// ValidateColour validates a six digit hex colour without the leading '#'.
func ValidateColour(colour string) error {
	if !hexColourRegex.MatchString(colour) {
		return New(ErrCodeInvalidElement, "invalid colour %q (want six hex digits)", colour)
	}
	return nil
}
