// Package retrieve implements spec.md §4.6's Retriever: three independent
// retrieval paths over a QueryPlan, unioned and de-duplicated into a flat
// Candidate list. Grounded in the teacher's Geocode/fuzzyMatchLocation
// dispatch (exact lookup first, then a name-index scan), generalized from
// a single best-match return value into the full Candidate list spec.md
// requires so the Scorer can aggregate per-Location.
package retrieve

import (
	"github.com/flaxandteal/berlin/internal/config"
	"github.com/flaxandteal/berlin/internal/index"
	"github.com/flaxandteal/berlin/internal/intern"
	"github.com/flaxandteal/berlin/internal/query"
	"github.com/flaxandteal/berlin/internal/score"
	"github.com/flaxandteal/berlin/internal/store"
)

// Retrieve runs the exact, prefix and fuzzy paths against plan and returns
// the unioned, de-duplicated Candidate list. s is consulted only for the
// state filter (a Candidate's Location must be resolved to read its
// state.code).
func Retrieve(plan query.Plan, idx *index.Index, s *store.Store, in *intern.Interner, w config.Weights) []score.Candidate {
	var out []score.Candidate

	out = append(out, exactPath(plan, idx, in, w)...)
	out = append(out, codePath(plan, idx, w)...)
	out = append(out, prefixPath(plan, idx, w)...)
	out = append(out, fuzzyPath(plan, idx, w)...)

	out = dedupe(out)
	if plan.StateFilter != "" {
		out = filterByState(out, s, plan.StateFilter)
	}
	return out
}

// exactPath implements §4.6.1 for name terms: every exact_matches term
// gets the ceiling raw score against every Location its interned form
// names. The analyzer already proved NameMap holds a non-empty set for
// each of these terms, so the only failure mode here is the term having
// been evicted between analysis and retrieval, which cannot happen within
// a single query against an immutable Index.
func exactPath(plan query.Plan, idx *index.Index, in *intern.Interner, w config.Weights) []score.Candidate {
	var out []score.Candidate
	for _, term := range plan.ExactMatches {
		id, ok := in.Lookup(term.Text)
		if !ok {
			continue
		}
		keys, ok := idx.NameMap[id]
		if !ok {
			continue
		}
		for _, key := range keys {
			out = append(out, score.Candidate{
				LocationKey: key,
				MatchedTerm: term.Text,
				RawScore:    score.ExactScore(w),
				OffsetStart: term.Start,
				OffsetEnd:   term.End,
				Path:        score.PathExact,
			})
		}
	}
	return out
}

// codePath resolves each high-confidence code token from the QueryPlan
// directly through CodeMap, also at the ceiling raw score.
func codePath(plan query.Plan, idx *index.Index, w config.Weights) []score.Candidate {
	var out []score.Candidate
	for _, code := range plan.Codes {
		keys, ok := idx.CodeMap[code]
		if !ok {
			continue
		}
		for _, key := range keys {
			out = append(out, score.Candidate{
				LocationKey: key,
				MatchedTerm: code,
				RawScore:    score.ExactScore(w),
				Path:        score.PathExact,
			})
		}
	}
	return out
}

// prefixPath implements §4.6.2: every not_exact_matches term asks
// PrefixFST for stored names beginning with it, yielding one Candidate per
// expanded LocationKey.
func prefixPath(plan query.Plan, idx *index.Index, w config.Weights) []score.Candidate {
	var out []score.Candidate
	for _, term := range plan.NotExactMatches {
		for _, m := range idx.PrefixSearch(term.Text) {
			fullToken := m.Name == term.Text
			s := score.PrefixScore(term.Text, m.Name, fullToken, w)
			for _, key := range m.Keys {
				out = append(out, score.Candidate{
					LocationKey: key,
					MatchedTerm: term.Text,
					RawScore:    s,
					OffsetStart: term.Start,
					OffsetEnd:   term.End,
					Path:        pathFor(fullToken),
				})
			}
		}
	}
	return out
}

func pathFor(fullToken bool) score.Path {
	if fullToken {
		return score.PathPrefixFull
	}
	return score.PathPrefixPartial
}

// fuzzyPath implements §4.6.3: not_exact_matches terms longer than 3 bytes
// run through FuzzyFST at the plan's requested edit distance (already
// clamped to {0,1,2} by the analyzer).
func fuzzyPath(plan query.Plan, idx *index.Index, w config.Weights) []score.Candidate {
	var out []score.Candidate
	if plan.LevenshteinDistance <= 0 {
		return out
	}
	for _, term := range plan.NotExactMatches {
		if len(term.Text) <= 3 {
			continue
		}
		for _, m := range idx.FuzzySearch(term.Text, plan.LevenshteinDistance) {
			s := score.FuzzyScore(term.Text, m.Name, m.Dist, w)
			path := score.PathFuzzyDist2
			if m.Dist <= 1 {
				path = score.PathFuzzyDist1
			}
			for _, key := range m.Keys {
				out = append(out, score.Candidate{
					LocationKey: key,
					MatchedTerm: term.Text,
					RawScore:    s,
					OffsetStart: term.Start,
					OffsetEnd:   term.End,
					Path:        path,
				})
			}
		}
	}
	return out
}

// dedupe collapses Candidates sharing (LocationKey, MatchedTerm), keeping
// the highest RawScore, per spec.md §4.6's "duplicate ... pairs from
// different paths are de-duplicated keeping the highest raw score."
func dedupe(cands []score.Candidate) []score.Candidate {
	type key struct {
		loc  store.Key
		term string
	}
	best := make(map[key]int) // index into a compacted slice
	out := make([]score.Candidate, 0, len(cands))
	for _, c := range cands {
		k := key{loc: c.LocationKey, term: c.MatchedTerm}
		if i, ok := best[k]; ok {
			if c.RawScore > out[i].RawScore {
				out[i] = c
			}
			continue
		}
		best[k] = len(out)
		out = append(out, c)
	}
	return out
}

// filterByState drops Candidates whose Location's state code differs from
// filter, unless the Location itself is that state — spec.md §4.6's "to
// allow queries like gb" exception.
func filterByState(cands []score.Candidate, s *store.Store, filter string) []score.Candidate {
	out := make([]score.Candidate, 0, len(cands))
	for _, c := range cands {
		loc := s.Get(c.LocationKey)
		if loc == nil {
			continue
		}
		if loc.Encoding == store.ISO31661 && loc.ID == filter {
			out = append(out, c)
			continue
		}
		if loc.State != nil && loc.State.Code == filter {
			out = append(out, c)
		}
	}
	return out
}
