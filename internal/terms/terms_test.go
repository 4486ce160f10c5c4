package terms

import "testing"

func TestNormalize(t *testing.T) {
	got := Normalize("Lakers' Trade!! Deal -- Big")
	want := "lakers trade deal big"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestExtractKeywordsAndEntities(t *testing.T) {
	lex := Lexicon{
		Teams: map[string]bool{"lakers": true},
	}
	ex := Extract("Lakers trade news", "The Lakers completed a trade today.", []string{"Lakers"}, lex)
	if len(ex.Keywords) != 1 || ex.Keywords[0] != "lakers" {
		t.Fatalf("Keywords = %v", ex.Keywords)
	}
	if len(ex.Entities.Teams) != 1 {
		t.Fatalf("Entities.Teams = %v", ex.Entities.Teams)
	}
}

func TestSignificantPhrases(t *testing.T) {
	phrases := significantPhrases(Normalize("the lakers trade rumors are heating up before the season opener"))
	found := false
	for _, p := range phrases {
		if p == "lakers trade" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'lakers trade' phrase, got %v", phrases)
	}
}

func TestExtractAllDeduplicates(t *testing.T) {
	lex := Lexicon{Teams: map[string]bool{"lakers": true}}
	ex := Extract("Lakers", "Lakers Lakers Lakers", []string{"Lakers"}, lex)
	all := ex.All()
	count := 0
	for _, t := range all {
		if t == "lakers" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected 'lakers' deduplicated once, got %d times in %v", count, all)
	}
}
