package query

import (
	"testing"

	"github.com/flaxandteal/berlin/internal/index"
	"github.com/flaxandteal/berlin/internal/intern"
	"github.com/flaxandteal/berlin/internal/store"
)

func buildFixture(t *testing.T) (*index.Index, *intern.Interner) {
	t.Helper()
	in := intern.New(64)
	s, err := store.Build("../../testdata/dataset", in)
	if err != nil {
		t.Fatalf("store.Build() error = %v", err)
	}
	return index.Build(s, in), in
}

func TestAnalyzeStopWords(t *testing.T) {
	idx, in := buildFixture(t)
	plan := Analyze("house prices in londo", "gb", 1, 2, idx, in)

	if len(plan.StopWords) != 1 || plan.StopWords[0] != "in" {
		t.Errorf("StopWords = %v, want [\"in\"]", plan.StopWords)
	}
}

func TestAnalyzeExactMatch(t *testing.T) {
	idx, in := buildFixture(t)
	plan := Analyze("house prices in london", "gb", 1, 2, idx, in)

	foundLondon := false
	for _, term := range plan.ExactMatches {
		if term.Text == "london" {
			foundLondon = true
		}
	}
	if !foundLondon {
		t.Errorf("ExactMatches = %v, want to include \"london\"", plan.ExactMatches)
	}
}

func TestAnalyzeCodes(t *testing.T) {
	idx, in := buildFixture(t)
	plan := Analyze("gb", "", 1, 2, idx, in)

	if len(plan.Codes) != 1 || plan.Codes[0] != "gb" {
		t.Errorf("Codes = %v, want [\"gb\"]", plan.Codes)
	}
}

func TestAnalyzeClampsLevenshteinDistance(t *testing.T) {
	idx, in := buildFixture(t)
	plan := Analyze("vegas", "", 1, 9, idx, in)
	if plan.LevenshteinDistance != 2 {
		t.Errorf("LevenshteinDistance = %d, want clamped to 2", plan.LevenshteinDistance)
	}
}

func TestAnalyzeDefaultsLimit(t *testing.T) {
	idx, in := buildFixture(t)
	plan := Analyze("vegas", "", 0, 2, idx, in)
	if plan.Limit != 1 {
		t.Errorf("Limit = %d, want default of 1", plan.Limit)
	}
}

func TestCandidateTermsExcludesStopWordSingles(t *testing.T) {
	words := []Term{{Text: "in", Start: 0, End: 2}, {Text: "london", Start: 3, End: 9}}
	terms := candidateTerms(words)
	for _, term := range terms {
		if term.Text == "in" {
			t.Error("candidateTerms should exclude solely-stop-word single terms")
		}
	}
}

func TestCandidateTermsExcludesStopWordPairs(t *testing.T) {
	words := []Term{{Text: "in", Start: 0, End: 2}, {Text: "the", Start: 3, End: 6}}
	terms := candidateTerms(words)
	for _, term := range terms {
		if term.Text == "in the" {
			t.Error("candidateTerms should exclude a pair composed solely of stop words")
		}
	}
}

func TestOffsetsRecoverableFromRawQuery(t *testing.T) {
	raw := "house prices in londo"
	words := tokenizeWithOffsets(raw)
	for _, w := range words {
		if raw[w.Start:w.End] == "" {
			t.Errorf("term %q has an empty raw span", w.Text)
		}
	}
	last := words[len(words)-1]
	if raw[last.Start:last.End] != "londo" {
		t.Errorf("last term span = %q, want \"londo\"", raw[last.Start:last.End])
	}
}
