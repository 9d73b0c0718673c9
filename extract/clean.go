package extract

import (
	"regexp"
	"strings"
)

var markupTag = regexp.MustCompile(`<[^>]+>`)

// cleanText normalizes a purpose or use case literal.
// Escaped quotes are unescaped, escaped and raw newlines become single
// spaces, markup tags are removed and surrounding whitespace is trimmed.
// The replacements run in that order; no other escape is decoded.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = markupTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
