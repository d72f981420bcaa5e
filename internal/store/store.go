// Store owns every Location keyed by its stable Key (spec.md §4.3) and the
// three-pass load that turns dataset JSON into validated records: states
// first (no dependencies), then subdivisions (resolve their state parent),
// then UN/LOCODEs (resolve state and, optionally, subdivision parents).
// Grounded in the sequential load shape of
// berlin-web/src/main.rs::parse_json_files, adapted from the original's
// "decode everything, panic on the first bad record" to returning a
// DatasetInvalid error spec.md §7 says must abort initialization.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/flaxandteal/berlin/internal/berrs"
	"github.com/flaxandteal/berlin/internal/intern"
	"github.com/flaxandteal/berlin/internal/normalize"
)

// Store is the read-only, post-load view of every Location in the corpus.
type Store struct {
	byKey map[Key]*Location
	order []Key // insertion order, for deterministic iteration
}

// New returns an empty Store. Exported for callers outside this package
// that build a Store from in-memory Locations directly, such as other
// components' unit tests exercising graph and ordering logic without a
// dataset directory on disk.
func New() *Store {
	return &Store{byKey: make(map[Key]*Location)}
}

// Get returns the Location for key, or nil if key is unknown.
func (s *Store) Get(key Key) *Location {
	return s.byKey[key]
}

// Insert adds or replaces l in the Store, exported for the same
// test-fixture use case as New.
func (s *Store) Insert(l *Location) {
	s.insert(l)
}

// All iterates every Location in a fixed (insertion) order: states, then
// subdivisions, then locodes, each group walked in sorted natural-id order.
// Two loads of the same dataset therefore produce identical downstream
// index iteration order.
func (s *Store) All() []*Location {
	out := make([]*Location, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

func (s *Store) insert(l *Location) {
	if _, exists := s.byKey[l.Key]; !exists {
		s.order = append(s.order, l.Key)
	}
	s.byKey[l.Key] = l
}

// Build loads state.json, subdivision.json and locode.json from dir,
// interning every name and code through in, and returns the assembled
// Store. Any malformed record or broken parent reference is a
// berrs.DatasetInvalid error, which the caller (Load, in berlin.go) treats
// as fatal per spec.md §7.
func Build(dir string, in *intern.Interner) (*Store, error) {
	s := &Store{byKey: make(map[Key]*Location)}

	states, err := readFile(dir, "state.json", ISO31661)
	if err != nil {
		return nil, err
	}
	stateByCode := make(map[string]*Location, len(states))
	for _, id := range sortedKeys(states) {
		loc, code, err := decodeState(id, states[id], in)
		if err != nil {
			return nil, err
		}
		s.insert(loc)
		stateByCode[code] = loc
	}

	subdivs, err := readFile(dir, "subdivision.json", ISO31662)
	if err != nil {
		return nil, err
	}
	subdivByCompositeCode := make(map[string]*Location, len(subdivs))
	for _, id := range sortedKeys(subdivs) {
		loc, compositeCode, err := decodeSubdivision(id, subdivs[id], stateByCode, in)
		if err != nil {
			return nil, err
		}
		s.insert(loc)
		subdivByCompositeCode[compositeCode] = loc
	}

	locodes, err := readFile(dir, "locode.json", UNLOCODE)
	if err != nil {
		return nil, err
	}
	for _, id := range sortedKeys(locodes) {
		loc, err := decodeLocode(id, locodes[id], stateByCode, subdivByCompositeCode, in)
		if err != nil {
			return nil, err
		}
		s.insert(loc)
	}

	return s, nil
}

// readFile reads and decodes one dataset file, treating a missing
// state.json/subdivision.json/locode.json as an empty corpus rather than an
// error — a directory need not carry every encoding (e.g. a test fixture
// with only locodes).
func readFile(dir, name string, want Encoding) (map[string]rawLocation, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]rawLocation{}, nil
	}
	if err != nil {
		return nil, berrs.Dataset(fmt.Sprintf("reading %s", path), err)
	}
	return decodeFile(data, want)
}

// sortedKeys returns m's keys in lexical order so Build's iteration, and
// therefore the InternId assignment order (spec.md §4.1's determinism
// property), does not depend on Go's randomized map iteration.
func sortedKeys(m map[string]rawLocation) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// internAll interns each of vals (already normalized by the caller),
// skipping blanks and de-duplicating by interned ID, preserving first-seen
// order.
func internAll(in *intern.Interner, vals ...string) []intern.ID {
	seen := make(map[intern.ID]bool, len(vals))
	out := make([]intern.ID, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		id := in.Intern(v)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func decodeState(id string, rl rawLocation, in *intern.Interner) (loc *Location, code string, err error) {
	var r rawState
	if jsonErr := json.Unmarshal(rl.D, &r); jsonErr != nil {
		return nil, "", berrs.Dataset(fmt.Sprintf("state %q", id), jsonErr)
	}
	name, err := normalizeNonEmpty("name", r.Name)
	if err != nil {
		return nil, "", err
	}
	short, err := normalizeNonEmpty("short", r.Short)
	if err != nil {
		return nil, "", err
	}
	alpha2, err := normalizeNonEmpty("alpha2", r.Alpha2)
	if err != nil {
		return nil, "", err
	}
	alpha3 := normalize.Normalize(r.Alpha3)

	loc = &Location{
		Key:      NewKey(ISO31661, id),
		Encoding: ISO31661,
		ID:       id,
		Names:    internAll(in, name, short, alpha2, alpha3),
		Codes:    internAll(in, short, alpha2, alpha3),
	}
	if lat, ok := parseOptionalFloat(r.Lat); ok {
		if lon, ok2 := parseOptionalFloat(r.Lon); ok2 {
			loc.Lat, loc.Lon, loc.HasCoords = lat, lon, true
		}
	}
	return loc, alpha2, nil
}

func decodeSubdivision(id string, rl rawLocation, stateByCode map[string]*Location, in *intern.Interner) (*Location, string, error) {
	var r rawSubdivision
	if err := json.Unmarshal(rl.D, &r); err != nil {
		return nil, "", berrs.Dataset(fmt.Sprintf("subdivision %q", id), err)
	}
	name, err := normalizeNonEmpty("name", r.Name)
	if err != nil {
		return nil, "", err
	}
	supercode, err := normalizeNonEmpty("supercode", r.Supercode)
	if err != nil {
		return nil, "", err
	}
	subcode, err := normalizeNonEmpty("subcode", r.Subcode)
	if err != nil {
		return nil, "", err
	}

	parent, ok := stateByCode[supercode]
	if !ok {
		return nil, "", berrs.Dataset(
			fmt.Sprintf("subdivision %q: unknown country code %q", id, supercode), nil)
	}

	loc := &Location{
		Key:      NewKey(ISO31662, id),
		Encoding: ISO31662,
		ID:       id,
		Names:    internAll(in, name, subcode),
		Codes:    internAll(in, subcode),
		State:    &ParentRef{Code: supercode, Name: parent.CanonicalName(), Key: parent.Key},
	}
	return loc, supercode + ":" + subcode, nil
}

func decodeLocode(id string, rl rawLocation, stateByCode, subdivByCompositeCode map[string]*Location, in *intern.Interner) (*Location, error) {
	var r rawLocode
	if err := json.Unmarshal(rl.D, &r); err != nil {
		return nil, berrs.Dataset(fmt.Sprintf("locode %q", id), err)
	}
	name, err := normalizeNonEmpty("name", r.Name)
	if err != nil {
		return nil, err
	}
	supercode, err := normalizeNonEmpty("supercode", r.Supercode)
	if err != nil {
		return nil, err
	}
	subcode, err := normalizeNonEmpty("subcode", r.Subcode)
	if err != nil {
		return nil, err
	}

	parent, ok := stateByCode[supercode]
	if !ok {
		return nil, berrs.Dataset(
			fmt.Sprintf("locode %q: unknown country code %q", id, supercode), nil)
	}

	loc := &Location{
		Key:      NewKey(UNLOCODE, id),
		Encoding: UNLOCODE,
		ID:       id,
		Names:    internAll(in, name),
		Codes:    internAll(in, subcode),
		State:    &ParentRef{Code: supercode, Name: parent.CanonicalName(), Key: parent.Key},
	}

	if r.SubdivisionCode != "" {
		subCode := normalize.Normalize(r.SubdivisionCode)
		composite := supercode + ":" + subCode
		subdiv, ok := subdivByCompositeCode[composite]
		if !ok {
			return nil, berrs.Dataset(
				fmt.Sprintf("locode %q: unknown subdivision %q", id, composite), nil)
		}
		loc.Subdiv = &ParentRef{Code: subCode, Name: subdiv.CanonicalName(), Key: subdiv.Key}
	}

	if r.Supedup != "" {
		loc.Supersedes = Key(r.Supedup)
	}
	if lat, ok := parseOptionalFloat(r.Lat); ok {
		if lon, ok2 := parseOptionalFloat(r.Lon); ok2 {
			loc.Lat, loc.Lon, loc.HasCoords = lat, lon, true
		}
	}
	return loc, nil
}
