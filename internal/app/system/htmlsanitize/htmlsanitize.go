// Package htmlsanitize cleans user-supplied rich text (question descriptions
// and answer bodies produced by the editor) before it is stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		ugc = bluemonday.UGCPolicy()
		ugc.AllowElements("u", "s", "mark")
		ugc.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
		ugc.RequireNoFollowOnLinks(true)
		ugc.AddTargetBlankToFullyQualifiedLinks(true)

		strict = bluemonday.StrictPolicy()
	})
	return ugc, strict
}

// Sanitize returns s with unsafe markup removed (scripts, event handlers,
// javascript: URLs, iframes, forms). Formatting, lists, code blocks, links
// and images survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(p.Sanitize(s))
}

// IsPlainText reports whether s contains no markup at all.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// Normalize prepares editor input for storage: plain text is escaped and
// wrapped in a paragraph with <br> line breaks, HTML is sanitized.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		escaped := html.EscapeString(s)
		escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
		return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
	}
	return Sanitize(s)
}

// TextLength is the number of characters a reader sees once all markup is
// stripped. Length rules on content are applied to this value.
func TextLength(s string) int {
	_, p := policies()
	text := html.UnescapeString(p.Sanitize(s))
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
