package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseFeedRSS(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<rss><channel>
  <item><link>https://example.com/a</link></item>
  <item><link>https://example.com/b</link></item>
</channel></rss>`)
	links, err := parseFeed(body)
	if err != nil {
		t.Fatalf("parseFeed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("links = %v, want 2", links)
	}
}

func TestParseFeedAtom(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry><link href="https://example.com/c" rel="alternate"/></entry>
</feed>`)
	links, err := parseFeed(body)
	if err != nil {
		t.Fatalf("parseFeed: %v", err)
	}
	if len(links) != 1 || links[0] != "https://example.com/c" {
		t.Fatalf("links = %v", links)
	}
}

func TestDiscoverSitemapRecursesNestedIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<sitemapindex><sitemap><loc>` + "SITEMAP_URL" + `/sitemap1.xml</loc></sitemap></sitemapindex>`))
	})
	mux.HandleFunc("/sitemap1.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<urlset><url><loc>https://example.com/1</loc></url><url><loc>https://example.com/2</loc></url></urlset>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/sitemap_index_real.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<sitemapindex><sitemap><loc>` + srv.URL + `/sitemap1.xml</loc></sitemap></sitemapindex>`))
	})

	e := New(srv.Client())
	urls, err := e.DiscoverSitemap(context.Background(), srv.URL+"/sitemap_index_real.xml")
	if err != nil {
		t.Fatalf("DiscoverSitemap: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("urls = %v, want 2", urls)
	}
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b"}
	out := Deduplicate(in)
	want := []string{"a", "b", "c"}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v, want %v", out, want)
		}
	}
}
