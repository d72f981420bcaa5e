package hierarchy

import (
	"testing"

	"github.com/flaxandteal/berlin/internal/config"
	"github.com/flaxandteal/berlin/internal/intern"
	"github.com/flaxandteal/berlin/internal/query"
	"github.com/flaxandteal/berlin/internal/store"
)

func TestContainmentBoostMonotonicity(t *testing.T) {
	in := intern.New(4)
	nameID := in.Intern("lincolnshire")

	stateKey := store.NewKey(store.ISO31661, "gb")
	subdivKey := store.NewKey(store.ISO31662, "gb:lin")

	stateLoc := &store.Location{Key: stateKey, Encoding: store.ISO31661, ID: "gb"}
	subdivLoc := &store.Location{
		Key: subdivKey, Encoding: store.ISO31662, ID: "gb:lin",
		Names: []intern.ID{nameID},
		State: &store.ParentRef{Code: "gb", Key: stateKey},
	}

	fixture := newFixtureStore(stateLoc, subdivLoc)
	w := config.DefaultWeights()
	plan := query.Plan{Limit: 10}

	baseSubdivScore := 700.0
	withoutAncestor := map[store.Key]float64{subdivKey: baseSubdivScore}
	withAncestor := map[store.Key]float64{subdivKey: baseSubdivScore, stateKey: 700}

	boostedWithout := Boost(withoutAncestor, fixture, plan, w)
	boostedWith := Boost(withAncestor, fixture, plan, w)

	if boostedWith[subdivKey] <= boostedWithout[subdivKey] {
		t.Errorf("adding ancestor A should only increase descendant score: with-ancestor %v, without %v",
			boostedWith[subdivKey], boostedWithout[subdivKey])
	}
}

func TestSupedupDropsRecord(t *testing.T) {
	in := intern.New(4)
	nameID := in.Intern("old-name")

	supersededKey := store.Key("UN-LOCODE-xx:old")
	supersedingKey := store.Key("UN-LOCODE-xx:new")

	superseded := &store.Location{
		Key: supersededKey, Encoding: store.UNLOCODE, ID: "xx:old",
		Names: []intern.ID{nameID}, Supersedes: supersedingKey,
	}
	superseding := &store.Location{
		Key: supersedingKey, Encoding: store.UNLOCODE, ID: "xx:new",
		Names: []intern.ID{nameID},
	}

	fixture := newFixtureStore(superseded, superseding)
	w := config.DefaultWeights()
	plan := query.Plan{Limit: 10}

	base := map[store.Key]float64{supersededKey: 900, supersedingKey: 800}
	ranked := Rank(base, fixture, plan, w)

	for _, k := range ranked {
		if k == supersededKey {
			t.Errorf("Rank() kept superseded key %v, want it dropped in favor of %v", supersededKey, supersedingKey)
		}
	}
}

func TestOrderTieBreaksByEncodingThenKey(t *testing.T) {
	a := &store.Location{Key: store.Key("ISO-3166-1-aa"), Encoding: store.ISO31661, ID: "aa"}
	b := &store.Location{Key: store.Key("UN-LOCODE-aa:bbb"), Encoding: store.UNLOCODE, ID: "aa:bbb"}

	fixture := newFixtureStore(a, b)
	w := config.DefaultWeights()
	plan := query.Plan{Limit: 10}

	base := map[store.Key]float64{a.Key: 500, b.Key: 500}
	ranked := Rank(base, fixture, plan, w)

	if len(ranked) != 2 || ranked[0] != a.Key {
		t.Errorf("Rank() = %v, want ISO-3166-1 ahead of UN-LOCODE on a score tie", ranked)
	}
}

func TestRankTruncatesToLimit(t *testing.T) {
	a := &store.Location{Key: store.Key("ISO-3166-1-aa"), Encoding: store.ISO31661, ID: "aa"}
	b := &store.Location{Key: store.Key("ISO-3166-1-bb"), Encoding: store.ISO31661, ID: "bb"}

	fixture := newFixtureStore(a, b)
	w := config.DefaultWeights()
	plan := query.Plan{Limit: 1}

	base := map[store.Key]float64{a.Key: 900, b.Key: 500}
	ranked := Rank(base, fixture, plan, w)
	if len(ranked) != 1 {
		t.Fatalf("Rank() returned %d results, want 1", len(ranked))
	}
	if ranked[0] != a.Key {
		t.Errorf("Rank()[0] = %v, want the higher-scoring location %v", ranked[0], a.Key)
	}
}

// newFixtureStore builds a minimal *store.Store from explicit Locations,
// bypassing Build's file-loading for pure unit tests of the boost/order
// logic, which only ever calls Store.Get.
func newFixtureStore(locs ...*store.Location) *store.Store {
	s := store.New()
	for _, l := range locs {
		s.Insert(l)
	}
	return s
}
