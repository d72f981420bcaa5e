// Package store owns Location records and the dataset decoder that builds
// them (spec.md §3, §4.3, §6.3). It is grounded in the tagged-union decode
// shape of _examples/original_source/berlin-core/src/location.rs and
// json_decode.rs, translated into Go structs plus a check of each record's
// "<c>" tag against the encoding its dataset file holds.
package store

import (
	"github.com/flaxandteal/berlin/internal/intern"
)

// Encoding is the closed set of location standards spec.md §3 names.
type Encoding string

const (
	UNLOCODE Encoding = "UN-LOCODE"
	ISO31661 Encoding = "ISO-3166-1"
	ISO31662 Encoding = "ISO-3166-2"
)

func (e Encoding) valid() bool {
	switch e {
	case UNLOCODE, ISO31661, ISO31662:
		return true
	default:
		return false
	}
}

// priority implements the encoding tie-break rule from spec.md §4.8:
// ISO-3166-1 > ISO-3166-2 > UN-LOCODE.
func (e Encoding) priority() int {
	switch e {
	case ISO31661:
		return 0
	case ISO31662:
		return 1
	case UNLOCODE:
		return 2
	default:
		return 3
	}
}

// Less orders two encodings per the spec.md §4.8 tie-break priority.
func Less(a, b Encoding) bool { return a.priority() < b.priority() }

// Key is a human-readable, corpus-unique key of the form
// "<encoding>-<id>", e.g. "UN-LOCODE-gb:lon", "ISO-3166-1-gb".
type Key string

// NewKey builds a Key from an encoding and its natural id.
func NewKey(enc Encoding, id string) Key {
	return Key(string(enc) + "-" + id)
}

// ParentRef names a containing location by its short code plus the interned
// canonical name of that location — spec.md §3's "(code, InternId_of_name)"
// pair, used for both the state and subdiv fields.
type ParentRef struct {
	Code string
	Name intern.ID
	Key  Key
}

// Location is spec.md §3's record. Names and Codes are ordered sets of
// InternIds; the first entry of Names is the canonical name.
type Location struct {
	Key      Key
	Encoding Encoding
	ID       string
	Names    []intern.ID
	Codes    []intern.ID

	// State is set iff Encoding is UN-LOCODE or ISO-3166-2 (spec.md §3
	// invariant). It is nil for ISO-3166-1 records (a country has no
	// containing state).
	State *ParentRef

	// Subdiv is set only for UN-LOCODE records whose source data names a
	// subdivision. When set there must exist a Location with
	// Encoding=ISO-3166-2 and ID == "<State.Code>:<Subdiv.Code>".
	Subdiv *ParentRef

	// Supersedes, when non-empty, names a preferred record. A Location with
	// Supersedes set is only returned when targeted directly (spec.md §3,
	// §4.8's supedup rule).
	Supersedes Key

	// Lat/Lon are optional and carried only for round-tripping through the
	// JSON envelope (spec.md §6.3's "optional coordinates"); no query-path
	// component reads them, since Berlin explicitly disclaims geocoding
	// (spec.md §1 Non-goals). HasCoords reports whether they were present.
	Lat, Lon  float64
	HasCoords bool
}

// CanonicalName returns the first (canonical) name InternId. Names is
// invariantly non-empty for any Location that passed decode validation.
func (l *Location) CanonicalName() intern.ID { return l.Names[0] }

// CodeMatch reports whether code (already normalized) equals one of l's
// interned codes, resolving through in. This is the Go equivalent of each
// per-standard code_match in the original location.rs.
func (l *Location) CodeMatch(in *intern.Interner, code string) bool {
	for _, cid := range l.Codes {
		if resolved, ok := in.Resolve(cid); ok && resolved == code {
			return true
		}
	}
	return false
}
