package robots

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanFetchRespectsDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	}))
	defer srv.Close()

	c := New(srv.Client(), "sportsfeed-bot")

	if !c.CanFetch(srv.URL + "/public/article") {
		t.Error("expected /public/article to be allowed")
	}
	if c.CanFetch(srv.URL + "/private/secret") {
		t.Error("expected /private/secret to be disallowed")
	}
}

func TestCanFetchFailsOpenOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.Client(), "sportsfeed-bot")
	if !c.CanFetch(srv.URL + "/anything") {
		t.Error("expected fail-open (allowed) on non-200 robots.txt response")
	}
}

func TestCanFetchFailsOpenOnTransportError(t *testing.T) {
	c := New(http.DefaultClient, "sportsfeed-bot")
	if !c.CanFetch("http://127.0.0.1:1/anything") {
		t.Error("expected fail-open (allowed) on transport error")
	}
}

func TestCrawlDelayRequiresCacheEntry(t *testing.T) {
	c := New(http.DefaultClient, "sportsfeed-bot")
	if _, ok := c.CrawlDelay("https://example.com/x"); ok {
		t.Error("expected CrawlDelay to report no entry before any fetch")
	}
}
