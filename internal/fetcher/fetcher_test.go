package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sportsfeed/internal/ratelimit"
)

func newTestFetcher(cfg Config) *Fetcher {
	cfg.RobotsDisabled = true
	return New(cfg, nil, ratelimit.New(time.Millisecond), nil)
}

func TestFetchReturnsRecordOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(DefaultConfig())
	rec, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Status)
	}
}

func TestFetchReturnsRecordOn4xxWithoutRetrying(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.MaxRetries = 3
	f := newTestFetcher(cfg)

	rec, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected non-nil record for 4xx, got error: %v", err)
	}
	if rec.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Status)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt for an HTTP-level 404, got %d calls", calls)
	}
}

func TestFetchRetriesTransportErrorsThenFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	cfg.RetryDelay = time.Millisecond
	f := newTestFetcher(cfg)

	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	if err == nil {
		t.Fatal("expected an error after exhausting retries and the direct fallback")
	}
}

func TestFetchEnforcesMaxContentSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 1024))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.MaxContentSize = 10
	cfg.MaxRetries = 0
	f := newTestFetcher(cfg)

	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected oversize body to produce an error")
	}
}
