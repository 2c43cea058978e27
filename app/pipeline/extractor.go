package pipeline

import (
	"html"
	"log/slog"
	"strings"

	"codeberg.org/readeck/go-readability"
)

// Extractor turns markup-bearing source text (RSS descriptions,
// embedded HTML) into plain text for enrichment and storage.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Run extracts readable text from an HTML string. Full documents go
// through readability; fragments and malformed markup fall back to a
// tolerant tag scrub. Never fails: worst case is an empty string.
func (e *Extractor) Run(htmlStr string) string {
	if strings.TrimSpace(htmlStr) == "" {
		return ""
	}

	if article, err := readability.FromReader(strings.NewReader(htmlStr), nil); err == nil {
		if text := collapseWhitespace(article.TextContent); text != "" {
			return text
		}
	} else {
		slog.Debug("Readability extraction failed, falling back to tag scrub", "error", err)
	}

	return collapseWhitespace(html.UnescapeString(stripTags(htmlStr)))
}

// stripTags removes anything between angle brackets. An unclosed tag
// swallows the rest of the string rather than crashing.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
