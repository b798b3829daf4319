package utils

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Truncate caps s at maxLen terminal cells and appends "..." when it was cut.
// Width is measured with ANSI escapes ignored, so styled strings and
// multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "") + "..."
}

// OneLine collapses every run of whitespace, newlines included, into a
// single space.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
