package proxy

import "testing"

func TestNextRoundRobins(t *testing.T) {
	m := NewManager([]Endpoint{{Host: "p1"}, {Host: "p2"}}, 0, 0)

	e1, ok := m.Next()
	if !ok || e1.Host != "p1" {
		t.Fatalf("expected p1 first, got %+v ok=%v", e1, ok)
	}
	e2, ok := m.Next()
	if !ok || e2.Host != "p2" {
		t.Fatalf("expected p2 second, got %+v ok=%v", e2, ok)
	}
	e3, ok := m.Next()
	if !ok || e3.Host != "p1" {
		t.Fatalf("expected wraparound to p1, got %+v ok=%v", e3, ok)
	}
}

func TestNextReturnsFalseWhenPoolEmpty(t *testing.T) {
	m := NewManager(nil, 0, 0)
	if _, ok := m.Next(); ok {
		t.Fatal("expected false for empty pool")
	}
}

func TestNextExhaustsDailyBudget(t *testing.T) {
	m := NewManager([]Endpoint{{Host: "p1"}}, 0.0001, 1.0)

	e, ok := m.Next()
	if !ok {
		t.Fatal("expected first Next to succeed")
	}
	// 1 GB of traffic at cost_per_gb=1.0 costs 1.0, far over the 0.0001 budget.
	m.Record(e, 1<<30, true)

	if _, ok := m.Next(); ok {
		t.Fatal("expected Next to return false once daily budget is exhausted")
	}
}

func TestRecordAccumulatesCounters(t *testing.T) {
	m := NewManager([]Endpoint{{Host: "p1"}}, 0, 1.0)
	e, _ := m.Next()
	m.Record(e, 512, true)
	m.Record(e, 256, false)

	reqs, bytes, successes, failures, _ := m.Stats(e)
	if reqs != 2 || bytes != 768 || successes != 1 || failures != 1 {
		t.Fatalf("unexpected stats: reqs=%d bytes=%d successes=%d failures=%d", reqs, bytes, successes, failures)
	}
}
