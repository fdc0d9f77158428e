// Package textclean sanitises context fragments before they are handed
// to a language model. Spreadsheet-sourced text is scrubbed for
// instruction-injection phrasing; all other content passes through
// untouched. Clean is a pure function of its inputs.
package textclean

import (
	"regexp"
	"strings"
)

// suspiciousPatterns match instruction-injection phrasing that has no
// business appearing inside spreadsheet cell data.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(ignore|forget|override|bypass)\s+(all|any|previous|prior)\s+\w*\s*(instructions|prompts|rules)`),
	regexp.MustCompile(`(?i)system\s*[:\-]\s*compromised`),
	regexp.MustCompile(`(?i)(pretend|act\s+as|simulate|roleplay)\s+(you\s+are|being)`),
	regexp.MustCompile(`(?i)respond\s+exclusively\s+with`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+in\s+\w+\s+mode`),
	regexp.MustCompile(`(?i)new\s+instructions\s*[:\-]`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean returns the text to place in a model context for one selected
// fragment. metadata is the fragment's chunk metadata.
func Clean(text string, metadata map[string]any) string {
	if applied, ok := metadata["cleaning_applied"].(bool); ok && applied {
		// Scrubbed once at load time; never double-process.
		return text
	}

	if fromSpreadsheet(metadata) {
		return Scrub(text)
	}

	return text
}

// Scrub redacts injection phrasing and collapses whitespace runs.
// Exposed for loaders that clean at extraction time.
func Scrub(text string) string {
	cleaned := text
	for _, p := range suspiciousPatterns {
		cleaned = p.ReplaceAllString(cleaned, "[REMOVED]")
	}
	cleaned = strings.ReplaceAll(cleaned, "[REMOVED] [REMOVED]", "[REMOVED]")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
}

func fromSpreadsheet(metadata map[string]any) bool {
	src, ok := metadata["source"].(string)
	if !ok {
		return false
	}
	src = strings.ToLower(src)
	// Signed URLs keep their query string; only the path matters.
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	return strings.HasSuffix(src, ".xlsx") || strings.HasSuffix(src, ".xls")
}
