// Package phrase implements the boundary-aware phrase matcher used by every
// coverage score, plus an Aho-Corasick highlighter for locating feature spans.
package phrase

import (
	"regexp"
	"strings"
)

var lineBreaks = regexp.MustCompile(`\r?\n|\r`)

// Prepare lower-cases text, collapses each line break (CRLF, LF or CR) into a
// single space and trims surrounding whitespace.
func Prepare(text string) string {
	text = strings.ToLower(text)
	text = lineBreaks.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// isDelimiter reports whether b may border a phrase.
func isDelimiter(b byte) bool {
	return b == ' ' || b == ',' || b == '.'
}

// ContainsPhrase reports whether needle occurs in haystack, ignoring case,
// bordered on both sides by a space, comma, period or the end of the string.
// Only the first occurrence is checked: "hi" matches "arc hi tecture" but not
// "architecture", and not "chip and hi" either.
func ContainsPhrase(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	h := strings.ToLower(haystack)
	n := strings.ToLower(needle)

	start := strings.Index(h, n)
	if start < 0 {
		return false
	}
	return bounded(h, start, start+len(n))
}

// bounded checks the characters on either side of h[start:end].
func bounded(h string, start, end int) bool {
	if start > 0 && !isDelimiter(h[start-1]) {
		return false
	}
	if end < len(h) && !isDelimiter(h[end]) {
		return false
	}
	return true
}
