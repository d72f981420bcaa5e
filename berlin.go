// Package berlin is the embedded binding surface of spec.md §6.2: Load a
// dataset directory once, then run any number of read-only Query calls
// against the resulting Db. Grounded in the teacher's NewGeobed/Geocode
// entry points, restructured around the multi-component pipeline
// (Interner, Store, Index, QueryAnalyzer, Retriever, Scorer,
// HierarchyBooster) spec.md §2 names instead of geobed's single flat type.
package berlin

import (
	charmlog "github.com/charmbracelet/log"

	"github.com/flaxandteal/berlin/internal/berlog"
	"github.com/flaxandteal/berlin/internal/berrs"
	"github.com/flaxandteal/berlin/internal/config"
	"github.com/flaxandteal/berlin/internal/hierarchy"
	"github.com/flaxandteal/berlin/internal/index"
	"github.com/flaxandteal/berlin/internal/intern"
	"github.com/flaxandteal/berlin/internal/query"
	"github.com/flaxandteal/berlin/internal/retrieve"
	"github.com/flaxandteal/berlin/internal/score"
	"github.com/flaxandteal/berlin/internal/store"
)

// defaultInternerCapacity sizes the initial Interner backing slice/map; the
// corpus this ships against runs to tens of thousands of names, so a
// generous starting capacity avoids repeated slice growth during load.
const defaultInternerCapacity = 1 << 15

// Db is the immutable, shared handle spec.md §9 calls for: "pass the Index
// + LocationStore + Interner as an explicit shared handle into each query
// invocation." Safe for concurrent use by any number of goroutines once
// Load returns.
type Db struct {
	interner *intern.Interner
	store    *store.Store
	index    *index.Index
	weights  config.Weights
	log      *charmlog.Logger
}

// Load reads state.json, subdivision.json and locode.json from dir,
// validates and interns every record, and builds the search indexes.
// Returns a berrs.DatasetInvalid error on any malformed record or broken
// parent reference, per spec.md §7 — ingestion failure is fatal and the
// caller must refuse to serve.
func Load(dir string) (*Db, error) {
	return LoadWithConfig(dir, config.Default())
}

// LoadWithConfig is Load with an explicit configuration, letting a host
// override the scoring weights (spec.md §9's "centralized... so property
// tests can sweep them").
func LoadWithConfig(dir string, cfg *config.Config) (*Db, error) {
	log := berlog.Default("berlin")

	in := intern.New(defaultInternerCapacity)
	s, err := store.Build(dir, in)
	if err != nil {
		log.Error("dataset load failed", "dir", dir, "err", err)
		return nil, err
	}
	idx := index.Build(s, in)

	log.Info("dataset loaded", "locations", len(s.All()), "terms", in.Len())

	return &Db{
		interner: in,
		store:    s,
		index:    idx,
		weights:  cfg.Weights,
		log:      log,
	}, nil
}

// Result pairs a matched Location with the score and query offset it was
// ranked at, mirroring the HTTP surface's per-result envelope (spec.md
// §6.1) minus the JSON-specific wrapping, which lives in cmd/berlin-server.
type Result struct {
	Location *store.Location
	Score    float64
	Offset   Offset
}

// Offset is the byte span in the raw query that produced a match.
type Offset struct {
	Start int
	End   int
}

// Query runs the full C5-C8 pipeline for a single request and returns the
// ranked Location list, per spec.md §6.2's `Db.query(q, state, limit)`.
// levDistance is clamped to {0,1,2}; malformed values are the caller's
// (HTTP handler's) responsibility to reject with QueryParamInvalid before
// reaching here.
func (db *Db) Query(q, stateFilter string, limit uint32, levDistance int) []Result {
	plan := query.Analyze(q, stateFilter, limit, levDistance, db.index, db.interner)
	return db.run(plan)
}

// Plan exposes the QueryAnalyzer's output directly, for callers (like the
// HTTP handler) that need to serialize the QueryPlan alongside results.
func (db *Db) Plan(q, stateFilter string, limit uint32, levDistance int) query.Plan {
	return query.Analyze(q, stateFilter, limit, levDistance, db.index, db.interner)
}

// QueryPlan runs retrieval, scoring and hierarchy boosting for an
// already-built Plan (e.g. one obtained from Plan, for a caller that wants
// to inspect the plan before running it).
func (db *Db) QueryPlan(plan query.Plan) []Result {
	return db.run(plan)
}

func (db *Db) run(plan query.Plan) []Result {
	candidates := retrieve.Retrieve(plan, db.index, db.store, db.interner, db.weights)
	aggregated := score.Aggregate(candidates, db.weights)
	boosted := hierarchy.Boost(aggregated, db.store, plan, db.weights)
	// Rank recomputes Boost internally to also apply the supedup drop and
	// ordering; the result sets here are small enough per query that this
	// is cheaper than widening Rank's signature to accept a precomputed map.
	ranked := hierarchy.Rank(aggregated, db.store, plan, db.weights)

	offsets := bestOffsets(candidates)

	out := make([]Result, 0, len(ranked))
	for _, key := range ranked {
		loc := db.store.Get(key)
		if loc == nil {
			db.log.Warn("ranked key missing from store", "key", key)
			berrs.HandleInternal(berrs.InternalErr("ranked key missing from store", nil))
			continue
		}
		out = append(out, Result{
			Location: loc,
			Score:    boosted[key],
			Offset:   offsets[key],
		})
	}
	return out
}

// bestOffsets picks, for each LocationKey, the offset of its
// highest-scoring Candidate — the span reported in the HTTP/embedded
// result envelope.
func bestOffsets(candidates []score.Candidate) map[store.Key]Offset {
	best := make(map[store.Key]float64)
	out := make(map[store.Key]Offset)
	for _, c := range candidates {
		if prev, ok := best[c.LocationKey]; !ok || c.RawScore > prev {
			best[c.LocationKey] = c.RawScore
			out[c.LocationKey] = Offset{Start: c.OffsetStart, End: c.OffsetEnd}
		}
	}
	return out
}

// ResolveName resolves an InternId to its normalized bytes, exposed so a
// host binding can render a Location's names without reaching into
// internal packages.
func (db *Db) ResolveName(id intern.ID) (string, bool) {
	return db.interner.Resolve(id)
}

// Err classifies an error returned by this package's exported functions
// into spec.md §7's Kind taxonomy, for a host that wants to branch on
// failure category rather than string-match error text.
func Err(err error) berrs.Kind {
	var be *berrs.Error
	if e, ok := err.(*berrs.Error); ok {
		be = e
	}
	if be == nil {
		return berrs.Internal
	}
	return be.Kind
}
