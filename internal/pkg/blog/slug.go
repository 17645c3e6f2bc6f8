package blog

import (
	"strings"
)

// Transliteration table for characters that commonly show up in titles.
// Anything not covered here and not alphanumeric becomes a separator.
var translit = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "ae", 'å': "a",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "oe", 'ø': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "ue",
	'ý': "y", 'ÿ': "y",
	'ç': "c", 'ñ': "n", 'ß': "ss",
	'œ': "oe", 'æ': "ae",
	'&': "and", '@': "at",
}

// GenerateSlug turns a title into a lowercase hyphen-separated URL slug.
// Accented characters are transliterated and "&" becomes "and"; empty
// input yields an empty string.
func GenerateSlug(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(title) {
		var chunk string
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			chunk = string(r)
		default:
			if t, ok := translit[r]; ok {
				chunk = t
			} else {
				// separator
				if !lastHyphen {
					b.WriteByte('-')
					lastHyphen = true
				}
				continue
			}
		}
		if chunk == "and" || chunk == "at" {
			// words from symbol substitution get their own hyphens
			if !lastHyphen {
				b.WriteByte('-')
			}
			b.WriteString(chunk)
			b.WriteByte('-')
			lastHyphen = true
			continue
		}
		b.WriteString(chunk)
		lastHyphen = false
	}

	return strings.Trim(b.String(), "-")
}
