package model

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

const (
	MinTitleLength = 3
	MaxTitleLength = 100
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooShort = errors.New("title must be at least 3 characters")
	ErrTitleTooLong  = errors.New("title cannot exceed 100 characters")
)

// NormalizeTitle trims surrounding whitespace
func NormalizeTitle(s string) string {
	return strings.TrimSpace(s)
}

// PlainTitle strips terminal escape sequences and control characters so a
// title can only ever be shown as literal text
func PlainTitle(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
}

// ValidateTitle checks an already trimmed title
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		return ErrTitleRequired
	case n < MinTitleLength:
		return ErrTitleTooShort
	case n > MaxTitleLength:
		return ErrTitleTooLong
	}
	return nil
}

// IsValidationError reports whether err came from ValidateTitle
func IsValidationError(err error) bool {
	return errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrTitleTooShort) ||
		errors.Is(err, ErrTitleTooLong)
}
