// Package index builds spec.md §4.4's four sub-indexes once at load time:
// NameMap and CodeMap for exact lookups, and a shared PrefixFST/FuzzyFST
// pair over every interned name for approximate search. The trie half is
// grounded in bastiangx-wordserve's pkg/suggest/trie.go (VisitSubtree over a
// github.com/tchap/go-patricia trie); the fuzzy half is grounded in the
// teacher's fuzzyMatchLocation, which scans a name index and calls
// agnivade/levenshtein rather than composing a Levenshtein automaton —
// spec.md §9 explicitly allows "any... hand-built structure" satisfying
// prefix and edit-distance search, so the two sub-indexes share one sorted
// key set (fstKeys) instead of two separate automatons.
package index

import (
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/flaxandteal/berlin/internal/intern"
	"github.com/flaxandteal/berlin/internal/store"
)

// Index is the immutable, read-only-after-Build set of search structures
// shared across all queries (spec.md §5's "shared, read-only" resource
// model — no locking is needed once Build returns).
type Index struct {
	NameMap map[intern.ID][]store.Key
	CodeMap map[string][]store.Key

	trie    *patricia.Trie
	fstKeys []string     // sorted, unique interned-name strings
	fstOut  [][]store.Key // parallel to fstKeys: locations named by that string
}

// Build walks every Location in s and constructs the four sub-indexes.
// Iteration order follows s.All(), which is itself deterministic, so two
// Builds over the same Store produce byte-identical structures.
func Build(s *store.Store, in *intern.Interner) *Index {
	idx := &Index{
		NameMap: make(map[intern.ID][]store.Key),
		CodeMap: make(map[string][]store.Key),
		trie:    patricia.NewTrie(),
	}

	nameOut := make(map[string][]store.Key)

	for _, loc := range s.All() {
		for _, nameID := range loc.Names {
			idx.NameMap[nameID] = appendUnique(idx.NameMap[nameID], loc.Key)
			name, ok := in.Resolve(nameID)
			if !ok {
				continue
			}
			nameOut[name] = appendUnique(nameOut[name], loc.Key)
			// Supplement: constituent words of a multi-word name also
			// register in NameMap, grounded in
			// berlin-core/src/locations_db.rs's insert, which indexes
			// every word of a name (not just the whole string) so a
			// partial query term like "vegas" reaches "las vegas".
			for _, word := range splitWords(name) {
				if len(word) <= 3 {
					continue
				}
				wordID := in.Intern(word)
				idx.NameMap[wordID] = appendUnique(idx.NameMap[wordID], loc.Key)
				nameOut[word] = appendUnique(nameOut[word], loc.Key)
			}
		}
		for _, codeID := range loc.Codes {
			code, ok := in.Resolve(codeID)
			if !ok {
				continue
			}
			idx.CodeMap[code] = appendUnique(idx.CodeMap[code], loc.Key)
			// A subdivision's own code also registers under its
			// "<state>:<subdiv>" compound form, matching the UN/LOCODE
			// compound-code convention (spec.md §4.4's "CodeMap... for
			// <state>:<subdiv> composites").
			if loc.Encoding == store.ISO31662 && loc.State != nil {
				composite := loc.State.Code + ":" + code
				idx.CodeMap[composite] = appendUnique(idx.CodeMap[composite], loc.Key)
			}
		}
	}

	idx.fstKeys = make([]string, 0, len(nameOut))
	for k := range nameOut {
		idx.fstKeys = append(idx.fstKeys, k)
	}
	sort.Strings(idx.fstKeys)
	idx.fstOut = make([][]store.Key, len(idx.fstKeys))
	for i, k := range idx.fstKeys {
		idx.fstOut[i] = nameOut[k]
		idx.trie.Insert(patricia.Prefix(k), i)
	}

	return idx
}

func appendUnique(keys []store.Key, key store.Key) []store.Key {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}

// splitWords tokenizes an already-normalized name on ASCII spaces without
// importing internal/normalize's Tokenize, to keep this package free of a
// dependency cycle risk should normalize ever need index-side data; the
// name arriving here is already normalized by the store loader.
func splitWords(name string) []string {
	var words []string
	start := -1
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			if start >= 0 {
				words = append(words, name[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, name[start:])
	}
	return words
}

// Match is one hit from the prefix or fuzzy sub-index: the stored name that
// matched and the LocationKeys registered under it.
type Match struct {
	Name string
	Dist int // 0 for prefix hits
	Keys []store.Key
}

// PrefixSearch returns every stored name beginning with term, in sorted
// order, alongside the LocationKeys registered under each.
func (idx *Index) PrefixSearch(term string) []Match {
	if term == "" {
		return nil
	}
	var out []Match
	_ = idx.trie.VisitSubtree(patricia.Prefix(term), func(p patricia.Prefix, item patricia.Item) error {
		outID, ok := item.(int)
		if !ok {
			return nil
		}
		out = append(out, Match{Name: string(p), Dist: 0, Keys: idx.fstOut[outID]})
		return nil
	})
	return out
}

// FuzzySearch scans the shared key set for stored names within maxDist
// edits of term, length-filtering first the way the teacher's
// fuzzyMatchLocation does before paying for a full Levenshtein computation.
func (idx *Index) FuzzySearch(term string, maxDist int) []Match {
	if maxDist <= 0 || term == "" {
		return nil
	}
	var out []Match
	for i, name := range idx.fstKeys {
		if abs(len(name)-len(term)) > maxDist {
			continue
		}
		dist := levenshtein.ComputeDistance(term, name)
		if dist > maxDist {
			continue
		}
		out = append(out, Match{Name: name, Dist: dist, Keys: idx.fstOut[i]})
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
