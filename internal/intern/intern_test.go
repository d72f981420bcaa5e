package intern

import "testing"

func TestInternReturnsStableID(t *testing.T) {
	in := New(4)
	id1 := in.Intern("london")
	id2 := in.Intern("london")
	if id1 != id2 {
		t.Errorf("Intern(\"london\") returned different IDs: %d, %d", id1, id2)
	}
}

func TestInternMonotonic(t *testing.T) {
	in := New(4)
	terms := []string{"a", "b", "c", "a", "d"}
	var lastNewID ID
	seenFirst := false
	for _, term := range terms {
		before := in.Len()
		id := in.Intern(term)
		if in.Len() > before { // a genuinely new term
			if seenFirst && id <= lastNewID {
				t.Errorf("new term %q got ID %d, not strictly greater than previous new ID %d", term, id, lastNewID)
			}
			lastNewID = id
			seenFirst = true
		}
	}
	if got := in.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4 distinct terms", got)
	}
}

func TestResolveRoundTrip(t *testing.T) {
	in := New(4)
	id := in.Intern("manchester")
	got, ok := in.Resolve(id)
	if !ok || got != "manchester" {
		t.Errorf("Resolve(%d) = (%q, %v), want (\"manchester\", true)", id, got, ok)
	}
}

func TestResolveUnknownID(t *testing.T) {
	in := New(4)
	in.Intern("a")
	if _, ok := in.Resolve(ID(99)); ok {
		t.Errorf("Resolve(99) = ok, want not-ok for an ID never issued")
	}
}

func TestLookupUnseenTerm(t *testing.T) {
	in := New(4)
	in.Intern("a")
	if _, ok := in.Lookup("never-interned"); ok {
		t.Errorf("Lookup of an unseen term reported found")
	}
}

func TestLookupDoesNotGrowTable(t *testing.T) {
	in := New(4)
	in.Intern("a")
	before := in.Len()
	in.Lookup("b")
	in.Lookup("c")
	if after := in.Len(); after != before {
		t.Errorf("Lookup grew the interner from %d to %d terms", before, after)
	}
}
