package reputation

import (
	"testing"

	"sportsfeed/internal/core"
)

func TestUpdateDecaysTowardCeiling(t *testing.T) {
	m := NewManager(Bounds{Min: 0, Max: 1})
	src := core.NewSource("example.com", "Example", "https://example.com", core.SourceKindHTML)

	rep, tier, priority := m.Update(src, []float64{1, 1, 1, 1}, 0)
	if diff := rep - 0.95; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("reputation = %v, want the 0.95 ceiling", rep)
	}
	if tier != core.TierPremium {
		t.Fatalf("tier = %v, want premium", tier)
	}
	if diff := priority - 0.975; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("priority = %v, want 0.975 (1.0 * (0.5 + 0.5*0.95))", priority)
	}
}

func TestUpdatePenalizesErrorRate(t *testing.T) {
	m := NewManager(Bounds{Min: 0, Max: 1})
	src := core.NewSource("flaky.com", "Flaky", "https://flaky.com", core.SourceKindHTML)

	rep, tier, _ := m.Update(src, []float64{0.9, 0.9}, 0.8)
	// 0.8*0.5 = 0.4 clamps at 0.3, so rep = 0.9*0.95 - 0.3
	want := 0.9*0.95 - 0.3
	if diff := rep - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("reputation = %v, want %v", rep, want)
	}
	if tier != core.TierDiscovery {
		t.Fatalf("tier = %v, want discovery (error rate too high)", tier)
	}
}

func TestCrawlPriorityLowestInBounds(t *testing.T) {
	m := NewManager(Bounds{Min: 0, Max: 1})
	src := core.NewSource("new.com", "New", "https://new.com", core.SourceKindHTML)
	_, _, priority := m.Update(src, []float64{0}, 0.9)
	// reputation clamps to 0, tier 3: 0.4 * (0.5 + 0.5*0) = 0.2, above the 0.1 floor
	if priority != 0.2 {
		t.Fatalf("priority = %v, want 0.2", priority)
	}
}
