package trending

import (
	"testing"
	"time"

	"sportsfeed/internal/core"
)

func TestBurstDetection(t *testing.T) {
	d := New(Config{MinBurstRatio: 3, MinTrendScore: 0.3, MinOccurrences: 5, CooldownHours: 6})

	now := time.Now().UTC()
	d.now = func() time.Time { return now }

	// Seed 24 background mentions spanning the trailing day, aged from
	// 23h47m down to 1h10m. The margin on both ends keeps every occurrence
	// clear of the 1h and 24h window cutoffs below, so the window-boundary
	// semantics (inclusive of an occurrence exactly `window` old) don't
	// change which occurrences land in which bucket.
	for h := 0; h < 24; h++ {
		age := time.Duration(70+59*(23-h)) * time.Minute
		t := now.Add(-age)
		d.now = func(t time.Time) func() time.Time { return func() time.Time { return t } }(t)
		d.Observe("lakers trade", core.TermTypeGeneric, "nba")
	}

	// Then 40 mentions in the last hour.
	d.now = func() time.Time { return now }
	var last core.TrendingTerm
	for i := 0; i < 40; i++ {
		last = d.Observe("lakers trade", core.TermTypeGeneric, "nba")
	}

	if last.Count1h != 40 {
		t.Fatalf("count_1h = %d, want 40", last.Count1h)
	}
	if last.Count24h != 64 {
		t.Fatalf("count_24h = %d, want 64", last.Count24h)
	}
	if !last.IsTrending {
		t.Fatalf("expected term to be trending: %+v", last)
	}
	if last.BurstRatio < 8 {
		t.Fatalf("burst_ratio = %v, want >= 8", last.BurstRatio)
	}
}

func TestGenerateQueriesAndCooldown(t *testing.T) {
	d := New(Config{MinBurstRatio: 1, MinTrendScore: 0.1, MinOccurrences: 1, CooldownHours: 6})
	now := time.Now().UTC()
	d.now = func() time.Time { return now }
	for i := 0; i < 3; i++ {
		d.Observe("lakers trade", core.TermTypeTeam, "nba")
	}

	queries := d.GenerateQueries(10)
	if len(queries) == 0 {
		t.Fatalf("expected queries to be generated")
	}

	foundBase, foundNews := false, false
	for _, q := range queries {
		if q.Query == "nba lakers trade" {
			foundBase = true
		}
		if q.Query == "nba lakers trade news" {
			foundNews = true
		}
	}
	if !foundBase || !foundNews {
		t.Fatalf("missing expected queries: %+v", queries)
	}

	// Term should now be in cooldown and produce no further queries.
	more := d.GenerateQueries(10)
	if len(more) != 0 {
		t.Fatalf("expected no queries while in cooldown, got %+v", more)
	}
}
