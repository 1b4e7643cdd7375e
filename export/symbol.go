package export

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SymbolName derives an identifier valid in C and both assembler dialects
// from a file name. Accents are stripped, anything else outside
// [A-Za-z0-9_] becomes an underscore.
func SymbolName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, base)
	if err != nil {
		s = base
	}

	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)

	if s == "" || s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}

	return s
}
