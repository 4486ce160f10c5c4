package core

import (
	"testing"
	"time"
)

func TestNewSourceDefaults(t *testing.T) {
	s := NewSource("example.com", "Example", "https://example.com", SourceKindFeed)

	if s.ID == "" {
		t.Fatal("expected a generated id")
	}
	if s.Tier != TierDiscovery {
		t.Errorf("expected new source to start at TierDiscovery, got %v", s.Tier)
	}
	if s.Reputation != 0.5 {
		t.Errorf("expected default reputation 0.5, got %f", s.Reputation)
	}
	if !s.Active {
		t.Error("expected new source to be active")
	}
}

func TestNewContentItem(t *testing.T) {
	c := NewContentItem("source-1", "https://example.com/a")

	if c.ID == "" {
		t.Fatal("expected a generated id")
	}
	if c.SourceID != "source-1" {
		t.Errorf("expected source id to be propagated, got %s", c.SourceID)
	}
	if !c.IsActive {
		t.Error("expected new content item to be active by default")
	}
	if c.IsDuplicate || c.IsSpam {
		t.Error("expected new content item to be neither duplicate nor spam")
	}
}

func TestIngestionJobLifecycle(t *testing.T) {
	j := NewIngestionJob("source-1", SourceKindSitemap)
	if j.Status != JobPending {
		t.Fatalf("expected new job to be pending, got %v", j.Status)
	}

	j.Status = JobRunning
	if j.Status != JobRunning {
		t.Fatal("expected status to transition to running")
	}

	now := time.Now().UTC()
	j.Status = JobCompleted
	j.CompletedAt = &now
	if j.Status != JobCompleted || j.CompletedAt == nil {
		t.Fatal("expected status to transition to completed with a timestamp")
	}
}

func TestTrendingTermCountInvariant(t *testing.T) {
	tt := TrendingTerm{
		Term:           "lakers trade",
		NormalisedTerm: "lakers trade",
		Count1h:        40,
		Count6h:        55,
		Count24h:       64,
	}

	if !(tt.Count1h <= tt.Count6h && tt.Count6h <= tt.Count24h) {
		t.Fatalf("expected count_1h <= count_6h <= count_24h, got %d %d %d", tt.Count1h, tt.Count6h, tt.Count24h)
	}
}
