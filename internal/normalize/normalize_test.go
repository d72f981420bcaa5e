package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "LONDON", "london"},
		{"diacritic", "México", "mexico"},
		{"punctuation collapses", "St. Paul's", "st paul s"},
		{"cyrillic", "Москва", "moskva"},
		{"greek", "Αθήνα", "athena"},
		{"leading/trailing whitespace", "  gb:lon  ", "gb lon"},
		{"already normalized", "las vegas", "las vegas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"London", "São Paulo", "Москва", "  multi   space  ", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize(Normalize("New York City"))
	want := []string{"new", "york", "city"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize(""); got != nil {
		t.Errorf("Tokenize(\"\") = %v, want nil", got)
	}
}
