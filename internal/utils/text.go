package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var nonSlugChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Initials returns the uppercased first letters of up to the first two
// whitespace-separated words of name.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Slugify lowercases s and collapses every run of characters that are not
// letters or digits into a single hyphen. Letters outside ASCII are kept, so
// "Café Culture" becomes "café-culture" and "Use Cases & Inspiration"
// becomes "use-cases-inspiration".
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// Truncate shortens s to at most n runes for log lines.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
