// Package validate provides input validation for request fields and
// configuration values.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrInvalidEncoding   = errors.New("string is not valid UTF-8")
	ErrEmpty             = errors.New("string is empty")
)

// Free-text limits for recipient profile fields, in characters.
const (
	MaxInterestsLength = 500
	MaxNotesLength     = 1000
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength     int  // Minimum length (0 = no minimum)
	MaxLength     int  // Maximum length (0 = no maximum)
	AllowEmpty    bool // Whether empty strings are allowed
	TrimSpace     bool // Whether to trim whitespace before validation
	RejectControl bool // Reject control characters other than tab and newline
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrInvalidEncoding
	}

	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}

	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.RejectControl {
		for _, r := range s {
			if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
				return "", fmt.Errorf("%w: control character %U", ErrInvalidCharacters, r)
			}
		}
	}

	return s, nil
}

// Interests validates the comma-separated interests field:
// - Optional (can be empty)
// - Max 500 characters
// - No control characters
func Interests(s string) (string, error) {
	return String(s, StringConstraints{
		MaxLength:     MaxInterestsLength,
		AllowEmpty:    true,
		TrimSpace:     true,
		RejectControl: true,
	})
}

// Notes validates the free-form notes field:
// - Optional (can be empty)
// - Max 1000 characters
func Notes(s string) (string, error) {
	return String(s, StringConstraints{
		MaxLength:     MaxNotesLength,
		AllowEmpty:    true,
		TrimSpace:     true,
		RejectControl: true,
	})
}
