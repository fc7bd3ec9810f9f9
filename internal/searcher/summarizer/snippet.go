package summarizer

import (
	"strings"
	"unicode/utf8"
)

const DefaultSnippetWindow = 260

// Snippet returns a window of the whitespace-collapsed text around the
// earliest occurrence of any term, case-insensitively. The window starts a
// third of its width before the hit. Cut ends are marked with an ellipsis.
// With no hit the snippet is the start of the text.
func Snippet(text string, terms []string, window int) string {
	if window <= 0 {
		window = DefaultSnippetWindow
	}
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return ""
	}
	lower := asciiLower(flat)

	first := -1
	for _, t := range terms {
		if t == "" {
			continue
		}
		if pos := strings.Index(lower, asciiLower(t)); pos != -1 && (first == -1 || pos < first) {
			first = pos
		}
	}

	start := 0
	if first > window/3 {
		start = first - window/3
	}
	end := start + window
	if end > len(flat) {
		end = len(flat)
	}
	start, end = runeAligned(flat, start), runeAligned(flat, end)

	snip := flat[start:end]
	if start > 0 {
		snip = ellipsis + snip
	}
	if end < len(flat) {
		snip += ellipsis
	}
	return snip
}

// asciiLower folds A-Z only, so byte offsets in the result match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// runeAligned moves i back to the start of the rune containing it.
func runeAligned(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
