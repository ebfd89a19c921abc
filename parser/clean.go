package parser

import (
	"regexp"
	"strings"
)

var zeroWidthPattern = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`)

// Clean normalizes raw model text before any parse attempt: it drops a
// leading byte-order mark and zero-width characters, converts CRLF and CR
// line endings to LF, and trims surrounding whitespace. Clean is idempotent.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = zeroWidthPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
