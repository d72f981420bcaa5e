package berlin

import (
	"testing"

	"github.com/flaxandteal/berlin/internal/store"
)

func mustLoad(t *testing.T) *Db {
	t.Helper()
	db, err := Load("testdata/dataset")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return db
}

// Scenario 1: "house prices in londo", state=gb, limit=1 -> London, with the
// fuzzy term "londo" spanning [16,21) in the raw query, and "in" recognized
// as a stop word.
func TestScenarioFuzzyWithStopWord(t *testing.T) {
	db := mustLoad(t)

	plan := db.Plan("house prices in londo", "gb", 1, 2)
	if len(plan.StopWords) != 1 || plan.StopWords[0] != "in" {
		t.Errorf("Plan.StopWords = %v, want [\"in\"]", plan.StopWords)
	}

	results := db.QueryPlan(plan)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Location.Key != store.NewKey(store.UNLOCODE, "gb:lon") {
		t.Errorf("top result = %v, want UN-LOCODE-gb:lon", results[0].Location.Key)
	}
	if results[0].Offset.Start != 16 || results[0].Offset.End != 21 {
		t.Errorf("Offset = %+v, want {16,21}", results[0].Offset)
	}
}

// Scenario 2: "vegas", state=None, limit=1 -> Las Vegas, reached only via
// the name-word sub-indexing of "las vegas".
func TestScenarioNameWordTokenization(t *testing.T) {
	db := mustLoad(t)

	results := db.Query("vegas", "", 1, 2)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Location.Key != store.NewKey(store.UNLOCODE, "us:lvs") {
		t.Errorf("top result = %v, want UN-LOCODE-us:lvs", results[0].Location.Key)
	}
}

// Scenario 3: "new york UK", state=gb, limit=1 -> New York in Lincolnshire:
// the state filter removes New York, NY, and the gb country record matched
// by "uk" adds a containment boost to its UN/LOCODE child.
func TestScenarioStateFilterAndContainmentBoost(t *testing.T) {
	db := mustLoad(t)

	results := db.Query("new york uk", "gb", 1, 2)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Location.Key != store.NewKey(store.UNLOCODE, "gb:nyo") {
		t.Errorf("top result = %v, want UN-LOCODE-gb:nyo", results[0].Location.Key)
	}
}

// Scenario 4: "manchester population", state=gb, limit=1 -> Manchester, with
// the offset covering only "manchester".
func TestScenarioExtraTermIgnored(t *testing.T) {
	db := mustLoad(t)

	plan := db.Plan("manchester population", "gb", 1, 2)
	results := db.QueryPlan(plan)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Location.Key != store.NewKey(store.UNLOCODE, "gb:man") {
		t.Errorf("top result = %v, want UN-LOCODE-gb:man", results[0].Location.Key)
	}
	raw := "manchester population"
	if got := raw[results[0].Offset.Start:results[0].Offset.End]; got != "manchester" {
		t.Errorf("Offset covers %q, want \"manchester\"", got)
	}
}

// Scenario 5: "gb", state=None, limit=1 -> ISO-3166-1-gb, via the code path.
func TestScenarioCodePath(t *testing.T) {
	db := mustLoad(t)

	results := db.Query("gb", "", 1, 2)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Location.Key != store.NewKey(store.ISO31661, "gb") {
		t.Errorf("top result = %v, want ISO-3166-1-gb", results[0].Location.Key)
	}
}

// Scenario 6: "xyzzyqq", state=None, limit=5 -> empty list.
func TestScenarioNoMatchIsEmptyNotError(t *testing.T) {
	db := mustLoad(t)

	results := db.Query("xyzzyqq", "", 5, 2)
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 for an unmatched query", len(results))
	}
}

// Universal property: determinism. Running the same query twice against the
// same Db must return byte-identical Location order.
func TestQueryIsDeterministic(t *testing.T) {
	db := mustLoad(t)

	a := db.Query("new york", "", 5, 2)
	b := db.Query("new york", "", 5, 2)
	if len(a) != len(b) {
		t.Fatalf("got %d and %d results across two identical calls", len(a), len(b))
	}
	for i := range a {
		if a[i].Location.Key != b[i].Location.Key {
			t.Errorf("result[%d] differs across calls: %v vs %v", i, a[i].Location.Key, b[i].Location.Key)
		}
	}
}

// Universal property: state filter soundness. Every returned Location
// either belongs to the filtered state, or is the ISO-3166-1 record for
// that state itself.
func TestStateFilterSoundnessAcrossResultSet(t *testing.T) {
	db := mustLoad(t)

	results := db.Query("new", "gb", 10, 2)
	for _, r := range results {
		loc := r.Location
		isStateItself := loc.Encoding == store.ISO31661 && loc.ID == "gb"
		isInState := loc.State != nil && loc.State.Code == "gb"
		if !isStateItself && !isInState {
			t.Errorf("result %v violates state filter soundness for state=gb", loc.Key)
		}
	}
}

// Universal property: limit correctness.
func TestLimitTruncatesResultCount(t *testing.T) {
	db := mustLoad(t)

	results := db.Query("new york", "", 1, 2)
	if len(results) > 1 {
		t.Errorf("got %d results, want at most limit=1", len(results))
	}
}
