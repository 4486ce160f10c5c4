package dedupe

import "testing"

func TestAddRejectsSubsequentNearDuplicate(t *testing.T) {
	idx := New(DefaultThreshold, 100)

	text := "The Lakers beat the Celtics in a thrilling overtime finish last night at home."
	unique := idx.Add("hash-1", "Lakers win", text)
	if !unique {
		t.Fatal("expected first Add to report unique")
	}

	nearDup := "The Lakers beat the Celtics in a thrilling overtime finish last night at home arena."
	unique2 := idx.Add("hash-2", "Lakers win", nearDup)
	if unique2 {
		t.Fatal("expected near-duplicate Add to report not-unique")
	}
}

func TestAddAcceptsUnrelatedContent(t *testing.T) {
	idx := New(DefaultThreshold, 100)

	idx.Add("hash-1", "Lakers win", "The Lakers beat the Celtics in overtime at home last night.")
	unique := idx.Add("hash-2", "Tennis final", "Completely unrelated coverage of the Paris tennis championship final.")
	if !unique {
		t.Fatal("expected unrelated content to be reported unique")
	}
}

func TestEvictOldestBoundsSize(t *testing.T) {
	idx := New(DefaultThreshold, 3)
	for i := 0; i < 10; i++ {
		idx.Add(string(rune('a'+i)), "title", "completely distinct article body number "+string(rune('a'+i)))
	}
	idx.EvictOldest(3)
	if idx.Len() > 3 {
		t.Fatalf("expected index to be bounded at 3, got %d", idx.Len())
	}
}
