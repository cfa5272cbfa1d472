package content

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

var (
	titlePolicy = bluemonday.StrictPolicy()
	bodyPolicy  = bluemonday.UGCPolicy()

	emptyParagraph = regexp.MustCompile(`<p>\s*</p>`)
)

// SanitizeTitle strips all markup from a title.
func SanitizeTitle(s string) string {
	return titlePolicy.Sanitize(s)
}

// SanitizeBody cleans body HTML with a UGC policy and drops empty paragraphs.
func SanitizeBody(s string) string {
	return emptyParagraph.ReplaceAllString(bodyPolicy.Sanitize(s), "")
}

// NormalizeTags collapses a free-text tag string into space-joined tokens.
func NormalizeTags(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitTags splits a stored tag string into its tokens.
func SplitTags(s string) []string {
	return strings.Fields(s)
}

// SlugBase derives the URL-safe slug base from a title. Per-kind uniqueness
// suffixes are applied by the repository against live rows.
func SlugBase(title string) string {
	return slug.Make(title)
}

// Excerpt returns the first two sentences of body content. A sentence
// boundary is a '.', '?' or '!' followed by whitespace, matching how
// excerpts have always been derived for existing rows.
func Excerpt(content string) string {
	parts := splitSentences(content, 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, " ")
}

// splitSentences splits s at sentence boundaries into at most limit parts.
func splitSentences(s string, limit int) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if len(parts) >= limit-1 {
			break
		}
		switch s[i] {
		case '.', '?', '!':
			j := i + 1
			if j >= len(s) || !isSpace(s[j]) {
				continue
			}
			parts = append(parts, s[start:i+1])
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}
	return append(parts, s[start:])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
