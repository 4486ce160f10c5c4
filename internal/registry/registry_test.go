package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	r, err := New(tmpDir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = r.Close() }()

	dbPath := filepath.Join(tmpDir, "registry.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected registry db file to be created")
	}
}

func TestSetGetExpiry(t *testing.T) {
	ctx := context.Background()
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = r.Close() }()

	if err := r.Set(ctx, "k", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := r.Get(ctx, "k")
	if err != nil || !ok || string(value) != "v" {
		t.Fatalf("Get = %q, %v, %v", value, ok, err)
	}

	time.Sleep(75 * time.Millisecond)
	_, ok, err = r.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if ok {
		t.Fatal("expected key to have expired")
	}
}

func TestHeartbeatRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = r.Close() }()

	hb := Heartbeat{WorkerID: "w1", State: "running", ItemsProcessed: 10}
	if err := r.PutHeartbeat(ctx, hb); err != nil {
		t.Fatalf("PutHeartbeat failed: %v", err)
	}

	got, ok, err := r.GetHeartbeat(ctx, "w1")
	if err != nil || !ok {
		t.Fatalf("GetHeartbeat = %v, %v, %v", got, ok, err)
	}
	if got.State != "running" || got.ItemsProcessed != 10 {
		t.Fatalf("unexpected heartbeat: %+v", got)
	}

	workers, err := r.ListWorkers(ctx)
	if err != nil {
		t.Fatalf("ListWorkers failed: %v", err)
	}
	if len(workers) != 1 || workers[0] != "w1" {
		t.Fatalf("ListWorkers = %v", workers)
	}
}

func TestFeatureFlagDefaultsFalse(t *testing.T) {
	ctx := context.Background()
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = r.Close() }()

	enabled, err := r.FeatureFlag(ctx, "unset_flag")
	if err != nil || enabled {
		t.Fatalf("FeatureFlag unset = %v, %v, want false, nil", enabled, err)
	}

	if err := r.SetFeatureFlag(ctx, "enforce_gate", true); err != nil {
		t.Fatalf("SetFeatureFlag failed: %v", err)
	}
	enabled, err = r.FeatureFlag(ctx, "enforce_gate")
	if err != nil || !enabled {
		t.Fatalf("FeatureFlag = %v, %v, want true, nil", enabled, err)
	}
}

func TestSearchCacheKeyStable(t *testing.T) {
	a := SearchCacheKey("q=lakers&sort=relevance")
	b := SearchCacheKey("q=lakers&sort=relevance")
	if a != b {
		t.Fatalf("expected stable cache key, got %q vs %q", a, b)
	}
	if SearchCacheKey("q=celtics") == a {
		t.Fatal("expected different queries to produce different keys")
	}
}
