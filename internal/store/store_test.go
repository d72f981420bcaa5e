package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flaxandteal/berlin/internal/berrs"
	"github.com/flaxandteal/berlin/internal/intern"
)

func TestBuildFixtureDataset(t *testing.T) {
	in := intern.New(64)
	s, err := Build("../../testdata/dataset", in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if s.Get(NewKey(ISO31661, "gb")) == nil {
		t.Error("expected ISO-3166-1 gb in store")
	}
	if s.Get(NewKey(UNLOCODE, "gb:lon")) == nil {
		t.Error("expected UN-LOCODE gb:lon in store")
	}
	if s.Get(NewKey(ISO31662, "gb:lin")) == nil {
		t.Error("expected ISO-3166-2 gb:lin in store")
	}
}

func TestBuildResolvesStateParent(t *testing.T) {
	in := intern.New(64)
	s, err := Build("../../testdata/dataset", in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	london := s.Get(NewKey(UNLOCODE, "gb:lon"))
	if london == nil {
		t.Fatal("expected gb:lon in store")
	}
	if london.State == nil || london.State.Code != "gb" {
		t.Errorf("London.State = %+v, want Code=gb", london.State)
	}
}

func TestBuildResolvesSubdivParent(t *testing.T) {
	in := intern.New(64)
	s, err := Build("../../testdata/dataset", in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	newYorkUK := s.Get(NewKey(UNLOCODE, "gb:nyo"))
	if newYorkUK == nil {
		t.Fatal("expected gb:nyo in store")
	}
	if newYorkUK.Subdiv == nil || newYorkUK.Subdiv.Code != "lin" {
		t.Errorf("New York UK.Subdiv = %+v, want Code=lin", newYorkUK.Subdiv)
	}
	if newYorkUK.State == nil || newYorkUK.State.Code != "gb" {
		t.Errorf("New York UK.State = %+v, want Code=gb", newYorkUK.State)
	}
}

func TestBuildUnknownCountryIsDatasetInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "state.json", `{}`)
	writeFile(t, dir, "subdivision.json", `{
		"zz:aaa": {"<c>":"ISO-3166-2","i":"zz:aaa","d":{"name":"Nowhere","supercode":"zz","subcode":"aaa","level":"region"}}
	}`)

	in := intern.New(4)
	_, err := Build(dir, in)
	if err == nil {
		t.Fatal("Build() expected an error for an unknown country code, got nil")
	}
	if kind := kindOf(err); kind != berrs.DatasetInvalid {
		t.Errorf("Build() error kind = %v, want DatasetInvalid", kind)
	}
}

func TestEncodingPriority(t *testing.T) {
	if !Less(ISO31661, ISO31662) {
		t.Error("ISO-3166-1 should sort before ISO-3166-2")
	}
	if !Less(ISO31662, UNLOCODE) {
		t.Error("ISO-3166-2 should sort before UN-LOCODE")
	}
}

func kindOf(err error) berrs.Kind {
	be, ok := err.(*berrs.Error)
	if !ok {
		return berrs.Internal
	}
	return be.Kind
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}
