package util

import (
	"time"
	"unicode/utf8"
)

// FormatDateHuman formats an RFC3339 timestamp string to human-readable format (Jan 2, 2006).
// Returns the original string if parsing fails.
func FormatDateHuman(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
