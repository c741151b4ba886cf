package ssml

import (
	"regexp"
	"strings"
)

var (
	rootOpenRe  = regexp.MustCompile(`(?i)<speak(?:\s[^>]*)?/?>`)
	rootCloseRe = regexp.MustCompile(`(?i)</speak\s*>`)
	wrappedRe   = regexp.MustCompile(`(?is)^<speak(?:\s[^>]*)?>.*</speak\s*>$`)

	// A root tag cut off before its '>' leaves only the tag name behind.
	rootPartialRe = regexp.MustCompile(`(?i)</?speak\b/?`)
)

// CollapseWhitespace folds every whitespace run, line breaks included, into a
// single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsWrapped reports whether s, once collapsed, is a single root-wrapped block.
func IsWrapped(s string) bool {
	return wrappedRe.MatchString(CollapseWhitespace(s))
}

// Flatten reduces one fragment to its inner markup on a single line. Root
// tags are removed wherever they occur so a merged document can only ever
// carry the wrapper added at assembly time.
func Flatten(fragment string) string {
	s := CollapseWhitespace(fragment)
	if s == "" {
		return ""
	}
	if !strings.Contains(strings.ToLower(s), "speak") {
		return s
	}
	s = rootOpenRe.ReplaceAllString(s, " ")
	s = rootCloseRe.ReplaceAllString(s, " ")
	s = rootPartialRe.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}
