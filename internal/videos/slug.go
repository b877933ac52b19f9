package videos

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Mirrors ECMAScript \s, which also covers Unicode separators and the BOM.
	whitespaceRun = regexp.MustCompile(`[\s\v\pZ\x{FEFF}]+`)
	nonWord       = regexp.MustCompile(`[^\w-]+`)
	hyphenRun     = regexp.MustCompile(`--+`)
)

// Slugify turns a title into a URL path segment: diacritics are stripped
// after canonical decomposition, the result is lowercased and trimmed,
// whitespace runs become hyphens, anything outside [A-Za-z0-9_-] is dropped
// and repeated hyphens collapse. Slugify(Slugify(s)) == Slugify(s).
func Slugify(text string) string {
	s := norm.NFD.String(text)
	s = strings.Map(func(r rune) rune {
		if isCombiningDiacritic(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = strings.TrimFunc(s, isSpace)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	return hyphenRun.ReplaceAllString(s, "-")
}

// isCombiningDiacritic reports runes in the Combining Diacritical Marks block.
func isCombiningDiacritic(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// isSpace matches the same runes as whitespaceRun. U+0085 is not one of them.
func isSpace(r rune) bool {
	return strings.ContainsRune("\t\n\v\f\r ", r) || unicode.In(r, unicode.Z) || r == '\uFEFF'
}
