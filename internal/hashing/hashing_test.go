package hashing

import "testing"

func TestNormalizeDropsShortTokensAndStopwords(t *testing.T) {
	got := Normalize("The Lakers, and the Celtics! played ok.")
	for _, tok := range []string{"the", "and", "ok"} {
		if contains(got, tok) {
			t.Errorf("Normalize(%q) retained short/stopword token %q: %q", "...", tok, got)
		}
	}
	if !contains(got, "lakers") || !contains(got, "celtics") || !contains(got, "played") {
		t.Errorf("Normalize() dropped meaningful tokens: %q", got)
	}
}

func contains(haystack, tok string) bool {
	for _, w := range splitFields(haystack) {
		if w == tok {
			return true
		}
	}
	return false
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

func TestContentHashDeterministic(t *testing.T) {
	h1 := ContentHash("Lakers win", "The Lakers beat the Celtics tonight.")
	h2 := ContentHash("Lakers win", "The Lakers beat the Celtics tonight.")
	if h1 != h2 {
		t.Fatalf("ContentHash not deterministic: %q != %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 256-bit hex digest (64 chars), got %d", len(h1))
	}
}

func TestShinglesFallbackWhenShortText(t *testing.T) {
	got := Shingles("one two", 3)
	if len(got) != 1 || got[0] != "one two" {
		t.Fatalf("expected single fallback shingle, got %v", got)
	}
}

func TestShinglesOverlapping(t *testing.T) {
	got := Shingles("a b c d", 3)
	want := []string{"a b c", "b c d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMinHashSimilarTextsHighJaccard(t *testing.T) {
	a := Shingles(Normalize("The Lakers beat the Celtics in a thrilling overtime finish last night."), DefaultShingleSize)
	b := Shingles(Normalize("The Lakers beat the Celtics in a thrilling overtime finish yesterday."), DefaultShingleSize)
	c := Shingles(Normalize("Completely unrelated article about tennis championships in Paris."), DefaultShingleSize)

	simAB := JaccardEstimate(MinHash(a), MinHash(b))
	simAC := JaccardEstimate(MinHash(a), MinHash(c))

	if simAB <= simAC {
		t.Fatalf("expected near-duplicate similarity %f to exceed unrelated similarity %f", simAB, simAC)
	}
}
