package worker

import (
	"testing"
	"time"
)

func TestBackoffForClampsAtSixtySeconds(t *testing.T) {
	cases := []struct {
		streak int
		want   time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{6, 60 * time.Second}, // 2^6=64, clamped to 60
	}
	for _, c := range cases {
		if got := backoffFor(c.streak); got != c.want {
			t.Fatalf("backoffFor(%d) = %v, want %v", c.streak, got, c.want)
		}
	}
}

func TestBackoffForNeverExceedsSixty(t *testing.T) {
	if got := backoffFor(20); got != 60*time.Second {
		t.Fatalf("backoffFor(20) = %v, want 60s", got)
	}
}

func TestRingAverageRollsOver(t *testing.T) {
	r := newRingAverage(3)
	r.observe(10)
	r.observe(20)
	r.observe(30)
	if got := r.average(); got != 20 {
		t.Fatalf("average = %v, want 20", got)
	}

	r.observe(60) // evicts the first 10
	if got := r.average(); got != (20.0+30.0+60.0)/3 {
		t.Fatalf("average after rollover = %v, want %v", got, (20.0+30.0+60.0)/3)
	}
}

func TestRingAverageEmptyIsZero(t *testing.T) {
	r := newRingAverage(5)
	if got := r.average(); got != 0 {
		t.Fatalf("average of empty ring = %v, want 0", got)
	}
}

func TestDefaultKeywordTiersIncludesCuratedKeywords(t *testing.T) {
	tiers := DefaultKeywordTiers()
	if !tiers.High["touchdown"] {
		t.Fatal("expected touchdown to be in the high tier")
	}
}
