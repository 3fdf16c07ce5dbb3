// Package htmlsanitize cleans the rich-text bodies of announcements and
// assignments before they are stored.
package htmlsanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "mark", "sub", "sup")
	p.AllowAttrs("class").OnElements("table", "tr", "td", "th")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

var tagPattern = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)

// Sanitize strips scripts, event handlers, iframes and unsafe URLs, keeping
// ordinary formatting, lists, tables and links.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !tagPattern.MatchString(s)
}

// Body prepares a submitted body for storage. Plain text is escaped and its
// line breaks kept; anything that looks like HTML is sanitized.
func Body(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
	}
	return Sanitize(s)
}
