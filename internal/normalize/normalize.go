// Package normalize implements spec.md §4.2: a pure function from raw bytes
// to a normalized Term plus its word tokenization. It is the one place in
// the core that touches Unicode; everything downstream (interner, indexes,
// query analyzer) only ever sees normalized ASCII.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMn removes the combining-diacritical-mark rune category left behind
// by an NFD decomposition, e.g. "é" -> "e" + U+0301 -> "e".
var stripMn = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// cyrillicGreekTransliteration covers the common Cyrillic and Greek letters
// that do not decompose to a base Latin letter under NFD, so they need an
// explicit table. Coverage is a calibration decision (spec.md §9), not a
// correctness one; this table favours the transliterations most likely to
// appear in UN/LOCODE and ISO-3166 source names.
var cyrillicGreekTransliteration = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'α': "a", 'β': "b", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z", 'η': "e",
	'θ': "th", 'ι': "i", 'κ': "k", 'λ': "l", 'μ': "m", 'ν': "n", 'ξ': "x",
	'ο': "o", 'π': "p", 'ρ': "r", 'σ': "s", 'ς': "s", 'τ': "t", 'υ': "y",
	'φ': "f", 'χ': "ch", 'ψ': "ps", 'ω': "o",
}

// isPlain reports whether r is already a plain ASCII lowercase letter or
// digit, i.e. it needs no transliteration.
func isPlain(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Normalize implements spec.md §4.2 steps 1-5 and returns the full
// normalized string. Idempotent: Normalize(Normalize(x)) == Normalize(x),
// since step 4/5 leave an already-normalized string untouched and steps 1-3
// are no-ops on pure lowercase ASCII.
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)
	folded, _, err := transform.String(stripMn, lowered)
	if err != nil {
		folded = lowered
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastWasSpace := true // trims leading whitespace for free
	for _, r := range folded {
		switch {
		case isPlain(r):
			b.WriteRune(r)
			lastWasSpace = false
		case r == ' ':
			if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
		default:
			if repl, ok := cyrillicGreekTransliteration[r]; ok {
				if repl == "" {
					continue
				}
				b.WriteString(repl)
				lastWasSpace = false
				continue
			}
			// Anything else not covered by the transliteration table
			// (step 3) or by [a-z0-9] (step 4) collapses to a separator.
			if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
		}
	}
	out := strings.TrimRight(b.String(), " ")
	return out
}

// Tokenize splits an already-normalized string on the single spaces that
// Normalize's step 4 produces.
func Tokenize(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// Result bundles the two products spec.md §4.2 says the normalizer exposes.
type Result struct {
	Normalized string
	Words      []string
}

// Run normalizes and tokenizes raw in one pass.
func Run(raw string) Result {
	n := Normalize(raw)
	return Result{Normalized: n, Words: Tokenize(n)}
}
