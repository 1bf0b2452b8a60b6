package model

import (
	"strings"
	"unicode/utf8"
)

// NormalizeTitle trims a list title and checks emptiness and length.
// Uniqueness is the caller's concern since it depends on the collection.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", &ValidationError{Field: "title", Reason: ErrEmpty}
	}
	if utf8.RuneCountInString(t) > MaxTitleLen {
		return "", &ValidationError{Field: "title", Reason: ErrTooLong}
	}
	return t, nil
}

// NormalizeMessage trims a task message and checks emptiness and length.
func NormalizeMessage(msg string) (string, error) {
	m := strings.TrimSpace(msg)
	if m == "" {
		return "", &ValidationError{Field: "message", Reason: ErrEmpty}
	}
	if utf8.RuneCountInString(m) > MaxMessageLen {
		return "", &ValidationError{Field: "message", Reason: ErrTooLong}
	}
	return m, nil
}
