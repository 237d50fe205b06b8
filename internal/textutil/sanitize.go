package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeFileName turns operator-entered text such as a participant ID into a
// portable file name component. Accents are folded to their base letters,
// path separators, colons and asterisks become dashes, whitespace becomes an
// underscore, and anything else outside letters, digits, dot, dash and
// underscore is dropped. Leading dots are removed so the result is never a
// hidden file or a relative path segment.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if folded, _, err := transform.String(foldAccents(), name); err == nil {
		name = folded
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

// foldAccents strips combining marks after canonical decomposition. A
// transformer is stateful, so each call builds a fresh chain.
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
