package taskmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes to NFD, drops combining marks, and
// recomposes. "JOÃO" and "JOAO" fold to the same string.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowers and strips diacritics for comparison. Operator names in
// exports come from at least three upstream systems with inconsistent
// accent handling. Fold does not trim; callers trim their own fields.
func Fold(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// foldAligned folds for fixed-width slicing: lower-cased, accents
// stripped, exactly one output rune per input rune. Plain folding
// shrinks accented characters ("Ã" is two bytes, "a" is one), which
// would shift every later column of a row against the header offsets;
// here byte offsets computed on a folded header stay valid for every
// folded row. A standalone combining mark becomes a space to keep the
// alignment.
func foldAligned(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) rune {
	if r < utf8.RuneSelf {
		return unicode.ToLower(r)
	}
	for _, d := range norm.NFD.String(string(r)) {
		if !unicode.Is(unicode.Mn, d) {
			return unicode.ToLower(d)
		}
	}
	return ' '
}
