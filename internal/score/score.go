// Package score implements spec.md §4.7: the per-candidate similarity
// blend, the per-path anchors, and the location-level aggregation with
// threshold discard. The Levenshtein half is grounded in the teacher's use
// of github.com/agnivade/levenshtein; no example repo carries a
// Jaro-Winkler implementation, so it is hand-rolled here following the
// textbook algorithm (see DESIGN.md for the out-of-pack justification).
package score

import (
	"github.com/agnivade/levenshtein"

	"github.com/flaxandteal/berlin/internal/config"
	"github.com/flaxandteal/berlin/internal/store"
)

// Path names the retrieval route a Candidate arrived by. The §4.7 anchor
// for that route is already baked into RawScore when the Candidate is
// built; Aggregate does not read Path.
type Path int

const (
	PathExact Path = iota
	PathPrefixFull
	PathPrefixPartial
	PathFuzzyDist1
	PathFuzzyDist2
)

// Candidate is spec.md §4.6's Candidate record.
type Candidate struct {
	LocationKey store.Key
	MatchedTerm string
	RawScore    float64
	OffsetStart int
	OffsetEnd   int
	Path        Path
}

// Similarity blends normalized Levenshtein similarity and Jaro-Winkler
// similarity per the configured weights, returning a value in [0, 1].
func Similarity(a, b string, w config.Weights) float64 {
	lev := levenshteinSimilarity(a, b)
	jw := jaroWinkler(a, b)
	return w.LevenshteinWeight*lev + w.JaroWinklerWeight*jw
}

func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// jaroWinkler is the standard Jaro-Winkler similarity, operating on bytes:
// every string reaching the scorer has already passed through
// internal/normalize, so it is pure ASCII and byte indexing is safe.
func jaroWinkler(a, b string) float64 {
	j := jaro(a, b)
	prefix := 0
	maxPrefix := 4
	for prefix < len(a) && prefix < len(b) && prefix < maxPrefix && a[prefix] == b[prefix] {
		prefix++
	}
	return j + float64(prefix)*0.1*(1-j)
}

func jaro(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	matchDist := la
	if lb > la {
		matchDist = lb
	}
	matchDist = matchDist/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	aMatches := make([]bool, la)
	bMatches := make([]bool, lb)
	matches := 0

	for i := 0; i < la; i++ {
		start := i - matchDist
		if start < 0 {
			start = 0
		}
		end := i + matchDist + 1
		if end > lb {
			end = lb
		}
		for j := start; j < end; j++ {
			if bMatches[j] || a[i] != b[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := 0; i < la; i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}
	transpositions /= 2

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions))/m) / 3
}

// ExactScore is the ceiling raw score spec.md §4.7 assigns to exact
// (NameMap/CodeMap) matches: full anchor plus the floor bonus that
// guarantees exact always outranks fuzzy.
func ExactScore(w config.Weights) float64 {
	return w.AnchorExact*1000 + w.ExactFloorBonus
}

// PrefixScore scores a prefix-path match. fullTokenMatch is true when the
// matched stored name equals the query term (i.e. the term is the whole
// stored name, not just a leading substring of it).
func PrefixScore(term, name string, fullTokenMatch bool, w config.Weights) float64 {
	anchor := w.AnchorPrefixPartial
	if fullTokenMatch {
		anchor = w.AnchorPrefixFull
	}
	return anchor * Similarity(term, name, w) * 1000
}

// FuzzyScore scores a fuzzy-path match at the given edit distance (1 or 2).
func FuzzyScore(term, name string, dist int, w config.Weights) float64 {
	anchor := w.AnchorFuzzyDist2
	if dist <= 1 {
		anchor = w.AnchorFuzzyDist1
	}
	return anchor * Similarity(term, name, w) * 1000
}

// Aggregate implements spec.md §4.7's aggregation: for each Location, sum
// its Candidates' scores keeping at most one (the best) Candidate per
// matched term, then discard Locations below the configured threshold.
func Aggregate(candidates []Candidate, w config.Weights) map[store.Key]float64 {
	type bestKey struct {
		loc  store.Key
		term string
	}
	best := make(map[bestKey]float64)
	for _, c := range candidates {
		k := bestKey{loc: c.LocationKey, term: c.MatchedTerm}
		if existing, ok := best[k]; !ok || c.RawScore > existing {
			best[k] = c.RawScore
		}
	}

	totals := make(map[store.Key]float64)
	for k, v := range best {
		totals[k.loc] += v
	}

	out := make(map[store.Key]float64, len(totals))
	for key, total := range totals {
		if total >= w.InclusionThreshold {
			out[key] = total
		}
	}
	return out
}
