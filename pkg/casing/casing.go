// Package casing converts identifiers between naming conventions for code
// generators. Empty input always yields empty output.
package casing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Camel turns "user name" into "userName". A single word only has its first
// rune lowered, so "UserName" becomes "userName".
func Camel(s string) string {
	words := strings.Fields(s)
	if len(words) <= 1 {
		return LowerFirst(s)
	}
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)
	var sb strings.Builder
	sb.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}

// Pascal turns "user name" into "UserName". A single word only has its first
// rune raised.
func Pascal(s string) string {
	words := strings.Fields(s)
	if len(words) <= 1 {
		return UpperFirst(s)
	}
	title := cases.Title(language.Und)
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}

// PascalFromSnake turns CONSTANT_CASE or snake_case into PascalCase:
// "NOT_STARTED" becomes "NotStarted".
func PascalFromSnake(s string) string {
	return Pascal(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

func LowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

func UpperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// SnakeUpper turns "createdAt" into "CREATED_AT".
func SnakeUpper(s string) string { return strings.ToUpper(split(s, '_')) }

// SnakeLower turns "createdAt" into "created_at".
func SnakeLower(s string) string { return strings.ToLower(split(s, '_')) }

// KebabUpper turns "createdAt" into "CREATED-AT".
func KebabUpper(s string) string { return strings.ToUpper(split(s, '-')) }

// KebabLower turns "createdAt" into "created-at".
func KebabLower(s string) string { return strings.ToLower(split(s, '-')) }

// split inserts sep at every lower-to-upper transition.
func split(s string, sep rune) string {
	var sb strings.Builder
	var last rune
	for i, r := range s {
		if i > 0 && unicode.IsLower(last) && unicode.IsUpper(r) {
			sb.WriteRune(sep)
		}
		sb.WriteRune(r)
		last = r
	}
	return sb.String()
}

// Path turns a dotted package name into a slash separated path.
func Path(s string) string { return strings.ReplaceAll(s, ".", "/") }

// Package turns a slash separated path into a dotted package name.
func Package(s string) string { return strings.ReplaceAll(s, "/", ".") }
