package utils

import (
	"strings"
	"unicode/utf8"
)

var spaceRe = NewLazyRegex(`\s+`)

// Truncate truncates s to max runes, appending "..." if truncated.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// CollapseSpace replaces whitespace runs with one space and trims the ends.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.Re().ReplaceAllString(s, " "))
}

// SplitTrim splits s on sep and trims whitespace from every piece.
// An empty s yields no pieces.
func SplitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// FormatBools renders flags as a bracketed list, e.g. "[false true]".
func FormatBools(flags []bool) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range flags {
		if i > 0 {
			b.WriteByte(' ')
		}
		if f {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	}
	b.WriteByte(']')
	return b.String()
}
