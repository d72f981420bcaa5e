// Package intern implements spec.md §4.1: a bidirectional, append-only
// mapping between normalized Terms and dense integer InternIds. The
// generic, mutex-guarded design is adapted from the teacher codebase's
// stringInterner[T], generalized from a uint16 index used for two small
// lookup tables to a uint32 ID space sized for an entire name corpus.
package intern

import "sync"

// ID is an opaque dense integer identifying a normalized string. Once
// assigned it is never reused, even if the corresponding Location is later
// removed from the store (in practice, no deletion occurs after load).
type ID uint32

// Interner assigns stable, monotonically increasing IDs to normalized
// terms. Safe for concurrent use: ingestion may intern from multiple
// goroutines while building the corpus.
type Interner struct {
	mu     sync.RWMutex
	lookup []string     // ID -> canonical bytes
	index  map[string]ID // canonical bytes -> ID
}

// New creates an Interner with room for capacity terms before it needs to
// grow its backing slice/map.
func New(capacity int) *Interner {
	return &Interner{
		lookup: make([]string, 0, capacity),
		index:  make(map[string]ID, capacity),
	}
}

// Intern returns the existing ID for term if already interned, otherwise it
// assigns the next dense ID and stores the canonical bytes. Deterministic:
// for a fixed sequence of Intern calls the resulting ID assignment is
// stable across runs.
func (in *Interner) Intern(term string) ID {
	in.mu.RLock()
	if id, ok := in.index[term]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[term]; ok {
		return id
	}
	id := ID(len(in.lookup))
	in.lookup = append(in.lookup, term)
	in.index[term] = id
	return id
}

// Resolve returns the canonical bytes for id. Total on issued IDs; a
// caller passing an ID it never received from Intern gets ("", false).
func (in *Interner) Resolve(id ID) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) < len(in.lookup) {
		return in.lookup[id], true
	}
	return "", false
}

// Lookup returns the ID for term without interning it — the hot path for
// exact-match detection in the query analyzer, where a query token that was
// never seen at load time must not silently grow the corpus.
func (in *Interner) Lookup(term string) (ID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.index[term]
	return id, ok
}

// Len returns the number of interned terms.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.lookup)
}
