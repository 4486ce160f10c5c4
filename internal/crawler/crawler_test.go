package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sportsfeed/internal/fetcher"
	"sportsfeed/internal/ratelimit"
)

func TestFetchUpdatesStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	cfg := fetcher.DefaultConfig()
	cfg.RobotsDisabled = true
	limiter := ratelimit.New(time.Millisecond)

	c := New(cfg, nil, limiter, nil)

	rec, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if rec.Status != http.StatusOK {
		t.Fatalf("status = %d", rec.Status)
	}

	stats := c.Stats()
	if stats.PagesCrawled != 1 {
		t.Fatalf("PagesCrawled = %d, want 1", stats.PagesCrawled)
	}
	if stats.BytesFetched != int64(len("hello world")) {
		t.Fatalf("BytesFetched = %d", stats.BytesFetched)
	}
	if stats.FetchErrors != 0 {
		t.Fatalf("FetchErrors = %d, want 0", stats.FetchErrors)
	}
}

func TestFetchRecordsErrorsOnUnreachableHost(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	cfg.RobotsDisabled = true
	cfg.MaxRetries = 0
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = 200 * time.Millisecond
	limiter := ratelimit.New(time.Millisecond)

	c := New(cfg, nil, limiter, nil)

	_, err := c.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	if err == nil {
		t.Fatal("expected an error fetching an unreachable host")
	}
	if c.Stats().FetchErrors != 1 {
		t.Fatalf("FetchErrors = %d, want 1", c.Stats().FetchErrors)
	}
}
