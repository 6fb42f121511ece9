// Package validate holds the static field rules applied to user and task
// input before any store access. The predicates are intentionally shallow:
// length and placeholder checks only.
package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder is the value API explorers prefill string fields with.
const Placeholder = "string"

// Task statuses.
const (
	StatusNew       = "new"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

func Name(s string) bool {
	return s != Placeholder && !blank(s) && length(s) > 4
}

func Email(s string) bool {
	return strings.Count(s, "@") == 1 &&
		length(s) > 4 &&
		!strings.HasPrefix(s, "@") &&
		!strings.HasSuffix(s, "@")
}

func Password(s string) bool {
	return length(s) > 5 && !blank(s) && s != Placeholder
}

func Title(s string) bool {
	return s != Placeholder && !blank(s) && length(s) > 4
}

// Description shares the title rule.
func Description(s string) bool {
	return Title(s)
}

func Status(s string) bool {
	switch s {
	case StatusNew, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// Normalize folds s to the form used for uniqueness comparisons: first
// rune upper case, the rest lower case.
func Normalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return strings.ToLower(s)
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// blank reports whether s is non-empty and made only of white space.
func blank(s string) bool {
	return s != "" && strings.TrimFunc(s, unicode.IsSpace) == ""
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
