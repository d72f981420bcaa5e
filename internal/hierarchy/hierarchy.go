// Package hierarchy implements spec.md §4.8's HierarchyBooster: a transient
// containment graph built per query over the Locations that survived
// scoring, plus the final ordering and truncation. Grounded in
// _examples/original_source/berlin-core/src/graph.rs, whose
// GRAPH_EDGE_THRESHOLD gates which scored nodes are strong enough to act as
// a containment anchor for another node — reproduced here as the stricter
// of the two configured thresholds (config.Weights.GraphEdgeThreshold vs.
// the softer InclusionThreshold a node needs merely to survive scoring).
package hierarchy

import (
	"sort"

	"github.com/flaxandteal/berlin/internal/config"
	"github.com/flaxandteal/berlin/internal/query"
	"github.com/flaxandteal/berlin/internal/store"
)

// Boost applies containment boosts and the state-filter bonus to base (a
// Location's aggregated pre-boost score, already filtered to
// config.Weights.InclusionThreshold by score.Aggregate), returning a new
// map of post-boost scores. base itself is left untouched, since the
// ancestor/descendant boost for every node must be computed against the
// same pre-boost snapshot (spec.md §8's containment-boost-monotonicity
// property would not hold if an earlier boost fed into a later one).
func Boost(base map[store.Key]float64, s *store.Store, plan query.Plan, w config.Weights) map[store.Key]float64 {
	boosted := make(map[store.Key]float64, len(base))
	for k, v := range base {
		boosted[k] = v
	}

	for key := range base {
		loc := s.Get(key)
		if loc == nil {
			continue
		}
		applyContainmentBoost(boosted, base, key, loc.State, w)
		applyContainmentBoost(boosted, base, key, loc.Subdiv, w)

		if plan.StateFilter == "" {
			continue
		}
		if loc.State != nil && loc.State.Code == plan.StateFilter {
			boosted[key] += w.StateFilterBonus
		}
		if loc.Encoding == store.ISO31661 && loc.ID == plan.StateFilter {
			boosted[key] += w.StateFilterBonus
		}
	}
	return boosted
}

// Rank applies Boost, the supedup drop rule, and final ordering to base,
// then truncates to plan.Limit.
func Rank(base map[store.Key]float64, s *store.Store, plan query.Plan, w config.Weights) []store.Key {
	boosted := Boost(base, s, plan, w)
	dropSuperseded(boosted, s)
	return order(boosted, s, plan.Limit)
}

// applyContainmentBoost adds the ancestor-confirmation boost to child (if
// its ancestor ref is present in the result set and strong enough to act
// as an anchor) and the symmetric, weaker descendant boost to that
// ancestor.
func applyContainmentBoost(boosted, base map[store.Key]float64, child store.Key, ref *store.ParentRef, w config.Weights) {
	if ref == nil {
		return
	}
	ancestorScore, ok := base[ref.Key]
	if !ok {
		return
	}
	if ancestorScore >= w.GraphEdgeThreshold {
		boosted[child] += w.AncestorBoost * ancestorScore
	}
	if childScore := base[child]; childScore >= w.GraphEdgeThreshold {
		boosted[ref.Key] += w.DescendantBoost * childScore
	}
}

// dropSuperseded removes any Location whose Supersedes key is itself
// present in the result set, per spec.md §4.8's supedup rule.
func dropSuperseded(boosted map[store.Key]float64, s *store.Store) {
	for key := range boosted {
		loc := s.Get(key)
		if loc == nil || loc.Supersedes == "" {
			continue
		}
		if _, ok := boosted[loc.Supersedes]; ok {
			delete(boosted, key)
		}
	}
}

// order sorts by score descending, then encoding priority, then LocationKey
// lexicographically (spec.md §4.8's tie-break), and truncates to limit.
func order(boosted map[store.Key]float64, s *store.Store, limit uint32) []store.Key {
	keys := make([]store.Key, 0, len(boosted))
	for k := range boosted {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if boosted[a] != boosted[b] {
			return boosted[a] > boosted[b]
		}
		la, lb := s.Get(a), s.Get(b)
		if la != nil && lb != nil && la.Encoding != lb.Encoding {
			return store.Less(la.Encoding, lb.Encoding)
		}
		return a < b
	})
	if int(limit) < len(keys) {
		keys = keys[:limit]
	}
	return keys
}
