package blog

import (
	"regexp"
	"strings"
)

// Average adult reading speed used across the app.
const wordsPerMinute = 200

var (
	htmlTagPattern       = regexp.MustCompile(`<[^>]*>`)
	codeFencePattern     = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern    = regexp.MustCompile("`[^`]*`")
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	markdownLinkPattern  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownMarkPattern  = regexp.MustCompile(`[#*_~>]+`)
)

// StripMarkup removes HTML tags and markdown syntax so only prose words
// remain for counting.
func StripMarkup(content string) string {
	out := codeFencePattern.ReplaceAllString(content, " ")
	out = inlineCodePattern.ReplaceAllString(out, " ")
	out = markdownImagePattern.ReplaceAllString(out, " ")
	out = markdownLinkPattern.ReplaceAllString(out, "$1")
	out = htmlTagPattern.ReplaceAllString(out, " ")
	out = markdownMarkPattern.ReplaceAllString(out, " ")
	return out
}

// ReadingTime estimates reading minutes: word count divided by 200,
// rounded up, never below 1. Markup is stripped before counting.
func ReadingTime(content string) int {
	words := len(strings.Fields(StripMarkup(content)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
