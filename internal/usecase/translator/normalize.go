package translator

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize trims and folds whitespace runs to a single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// cacheKey is compatibility-folded so width variants of the same line
// share one entry.
func cacheKey(lang, normalized string) string {
	return lang + "\x00" + norm.NFKC.String(normalized)
}
