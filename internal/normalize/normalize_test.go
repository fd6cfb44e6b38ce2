package normalize

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Jacob Wehr", "Jacob Wehr"},
		{"  Jacob   Wehr ", "Jacob Wehr"},
		{"Jacob\tWehr\n", "Jacob Wehr"},
		{"Jacob\u00a0Wehr", "Jacob Wehr"},
		{"\uff26\uff4f\uff4e\uff54\uff49", "Fonti"},
		{"Gen.\u2003Forward", "Gen. Forward"},
		{"Cafe\u0301", "Caf\u00e9"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", " a ", "Ｂａｉｌｅｙ  Smith", "x  y", "ﬁsh", "Mid-Forward ", "Ⅵ", "Café\t",
	}
	for _, s := range inputs {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestNormalizeAll(t *testing.T) {
	in := []string{" a", "b  c"}
	got := NormalizeAll(in)
	if len(got) != 2 || got[0] != "a" || got[1] != "b c" {
		t.Errorf("NormalizeAll = %q", got)
	}
	if in[0] != " a" {
		t.Error("NormalizeAll mutated its input")
	}
	if !Equal("Bailey Smith", " Bailey Smith") {
		t.Error("expected Equal to fold whitespace variants")
	}
}
