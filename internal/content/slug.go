// Package content holds the pure text helpers used to identify and present posts.
package content

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9_\-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a title into a URL-safe identifier.
//
// The result only contains [a-z0-9_-], never starts or ends with a hyphen and
// never holds two hyphens in a row, so Slugify(Slugify(s)) == Slugify(s).
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "&", "-and-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
