package content

import (
	"fmt"
	"regexp"
	"strings"
)

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// StripTags removes anything that looks like an HTML tag.
func StripTags(html string) string {
	return htmlTag.ReplaceAllString(html, "")
}

// ReadingTime estimates how long the post body takes to read, e.g. "3 min read".
// Any body, even an empty one, reads in at least one minute.
func ReadingTime(html string) string {
	words := len(strings.Fields(StripTags(html)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
