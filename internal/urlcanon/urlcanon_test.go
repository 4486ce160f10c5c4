package urlcanon

import "testing"

func TestCanonicalizeStripsTrackingAndSortsParams(t *testing.T) {
	got := Canonicalize("https://WWW.Example.com/path/?utm_source=x&b=2&a=1#frag")
	want := "https://example.com/path?a=1&b=2"
	if got != want {
		t.Fatalf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://WWW.Example.com/path/?utm_source=x&b=2&a=1#frag",
		"HTTPS://example.com/",
		"https://example.com/story/42?gclid=abc&z=9&a=1",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCanonicalizeMalformedReturnsInputUnchanged(t *testing.T) {
	raw := "://not a url"
	if got := Canonicalize(raw); got != raw {
		t.Fatalf("Canonicalize(%q) = %q, want unchanged input", raw, got)
	}
}

func TestResolveCanonicalHint(t *testing.T) {
	got := ResolveCanonicalHint("https://example.com/x?utm_medium=y", "/story/42")
	want := "https://example.com/story/42"
	if got != want {
		t.Fatalf("ResolveCanonicalHint() = %q, want %q", got, want)
	}
}

func TestCanonicalizeEmptyPathBecomesRoot(t *testing.T) {
	got := Canonicalize("https://example.com")
	if got != "https://example.com/" {
		t.Fatalf("Canonicalize() = %q, want trailing root slash", got)
	}
}
