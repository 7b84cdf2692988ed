package strings

import (
	"strings"
)

// DefaultCommandMaxLen is the default maximum length for command lines in
// formatted output.
const DefaultCommandMaxLen = 60

// minTruncateLen leaves room for at least one character plus "...".
const minTruncateLen = 4

// TruncateLine collapses a string to a single line of at most maxLen
// characters, appending "..." when it had to cut. Whitespace runs
// (including newlines) become single spaces. Operates on runes so
// multi-byte characters are never split.
func TruncateLine(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
