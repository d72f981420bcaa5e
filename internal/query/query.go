// Package query implements spec.md §4.5's QueryAnalyzer: it turns a raw
// query string plus request parameters into a QueryPlan the retriever can
// consume without touching Unicode or the corpus again. Grounded in the
// teacher's GeocodeOptions/Geocode entry point, generalized from a single
// free-text argument to the plan/partition structure spec.md requires.
package query

import (
	"github.com/flaxandteal/berlin/internal/index"
	"github.com/flaxandteal/berlin/internal/intern"
	"github.com/flaxandteal/berlin/internal/normalize"
)

// StopWords is the fixed set named in the glossary.
var StopWords = map[string]bool{
	"a": true, "an": true, "the": true, "in": true, "at": true, "on": true,
	"of": true, "for": true, "to": true, "and": true, "or": true,
}

// Term is one candidate search term together with the byte offsets it
// occupies in the raw query, carried through so the retriever's Candidate
// and the HTTP response's offset field need no re-derivation.
type Term struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Plan is spec.md §4.5's QueryPlan.
type Plan struct {
	Raw                 string `json:"raw"`
	Normalized          string `json:"normalized"`
	StopWords           []string `json:"stop_words"`
	Codes               []string `json:"codes"`
	ExactMatches        []Term `json:"exact_matches"`
	NotExactMatches     []Term `json:"not_exact_matches"`
	StateFilter         string `json:"state_filter,omitempty"`
	Limit               uint32 `json:"limit"`
	LevenshteinDistance int    `json:"levenshtein_distance"`
}

// Analyze builds a Plan from a raw query and the request parameters.
// levDistance is expected already clamped to {0,1,2} by the caller (the
// HTTP handler or embedded binding, per spec.md §7's QueryParamInvalid
// handling); Analyze clamps defensively too so a misuse from within the
// core cannot silently widen the fuzzy search.
func Analyze(raw, stateFilter string, limit uint32, levDistance int, idx *index.Index, in *intern.Interner) Plan {
	if levDistance < 0 {
		levDistance = 0
	}
	if levDistance > 2 {
		levDistance = 2
	}
	if limit == 0 {
		limit = 1
	}

	words := tokenizeWithOffsets(raw)

	plan := Plan{
		Raw:                 raw,
		Normalized:          normalize.Normalize(raw),
		StateFilter:         stateFilter,
		Limit:               limit,
		LevenshteinDistance: levDistance,
	}

	seenStop := make(map[string]bool)
	for _, w := range words {
		if StopWords[w.Text] && !seenStop[w.Text] {
			seenStop[w.Text] = true
			plan.StopWords = append(plan.StopWords, w.Text)
		}
	}

	seenCode := make(map[string]bool)
	for _, w := range words {
		if len(w.Text) < 2 || len(w.Text) > 3 {
			continue
		}
		if _, ok := idx.CodeMap[w.Text]; !ok {
			continue
		}
		if seenCode[w.Text] {
			continue
		}
		seenCode[w.Text] = true
		plan.Codes = append(plan.Codes, w.Text)
	}

	candidates := candidateTerms(words)

	for _, term := range candidates {
		if id, ok := in.Lookup(term.Text); ok {
			if keys, ok2 := idx.NameMap[id]; ok2 && len(keys) > 0 {
				plan.ExactMatches = append(plan.ExactMatches, term)
				continue
			}
		}
		plan.NotExactMatches = append(plan.NotExactMatches, term)
	}

	return plan
}

// tokenizeWithOffsets normalizes raw and splits it into words, recording
// each word's byte span in the raw input. Because normalization is a
// monotone left-to-right scan (spec.md §4.2 never reorders bytes), the
// normalized word's position can be recovered by re-normalizing raw
// word-by-word using the same whitespace/punctuation boundaries the
// original text carries, rather than re-deriving offsets from the folded
// string. Boundaries are ASCII bytes outside [A-Za-z0-9]; non-ASCII runes
// stay inside their word and are folded by Normalize.
func tokenizeWithOffsets(raw string) []Term {
	var words []Term
	start := -1
	for i := 0; i <= len(raw); i++ {
		var c byte
		if i < len(raw) {
			c = raw[i]
		}
		isBoundary := i == len(raw) || isSeparator(c)
		if isBoundary {
			if start >= 0 {
				norm := normalize.Normalize(raw[start:i])
				if norm != "" {
					words = append(words, Term{Text: norm, Start: start, End: i})
				}
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	return words
}

func isSeparator(c byte) bool {
	if c >= 0x80 {
		return false
	}
	return !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'))
}

// candidateTerms builds spec.md §4.5 step 4's search-term set: every single
// word plus every consecutive word pair, excluding terms that are solely a
// stop word. A word pair's offset spans from the first word's start to the
// second word's end.
func candidateTerms(words []Term) []Term {
	var out []Term
	for i, w := range words {
		if !StopWords[w.Text] {
			out = append(out, w)
		}
		if i+1 < len(words) {
			next := words[i+1]
			if !(StopWords[w.Text] && StopWords[next.Text]) {
				pair := w.Text + " " + next.Text
				out = append(out, Term{Text: pair, Start: w.Start, End: next.End})
			}
		}
	}
	return out
}
