// Package tokencount estimates language-model token counts for the
// small-document bypass decision. The estimate only has to be stable and
// roughly proportional to a real tokeniser; the threshold it is compared
// against is a tuning knob.
package tokencount

import (
	"strings"
	"unicode/utf8"
)

// charsPerToken approximates BPE tokenisation of English prose.
const charsPerToken = 4

// Estimate returns an approximate token count for text. It takes the
// larger of the whitespace word count and a character-based estimate, so
// both dense prose and delimiter-heavy content (tables, CSV rows) are
// counted conservatively.
func Estimate(text string) int {
	if text == "" {
		return 0
	}

	words := len(strings.Fields(text))
	chars := utf8.RuneCountInString(text)
	byChars := (chars + charsPerToken - 1) / charsPerToken

	if words > byChars {
		return words
	}
	return byChars
}
