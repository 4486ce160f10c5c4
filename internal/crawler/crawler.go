// Package crawler is the facade that orchestrates the fetcher, discovery
// engine, and robots/rate-limit/proxy machinery for one worker's
// pipeline, per spec §4.9/§4.17 orchestration.
package crawler

import (
	"context"
	"net/http"
	"sync"

	"sportsfeed/internal/core"
	"sportsfeed/internal/discovery"
	"sportsfeed/internal/fetcher"
	"sportsfeed/internal/proxy"
	"sportsfeed/internal/ratelimit"
	"sportsfeed/internal/robots"
)

// Stats is a snapshot of the crawler's running counters.
type Stats struct {
	PagesCrawled   int64
	FetchErrors    int64
	BytesFetched   int64
	DiscoveryCalls int64
}

// Crawler wires together one worker's private fetcher and discovery
// engine instances; per spec §9's shared-resource policy, a Crawler
// (and everything it owns) belongs to exactly one worker.
type Crawler struct {
	fetcher   *fetcher.Fetcher
	discovery *discovery.Engine

	mu    sync.Mutex
	stats Stats
}

// New builds a Crawler from the shared per-host machinery: a robots
// checker, a rate limiter, and an optional proxy manager.
func New(cfg fetcher.Config, robotsChecker *robots.Checker, limiter *ratelimit.Limiter, proxies *proxy.Manager) *Crawler {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Crawler{
		fetcher:   fetcher.New(cfg, robotsChecker, limiter, proxies),
		discovery: discovery.New(httpClient),
	}
}

// Discover runs every configured discovery method for source, deduplicated
// and capped at maxURLs.
func (c *Crawler) Discover(ctx context.Context, source *core.Source, provider discovery.SearchProvider, maxURLs int) []string {
	c.mu.Lock()
	c.stats.DiscoveryCalls++
	c.mu.Unlock()
	return c.discovery.DiscoverAll(ctx, source, provider, maxURLs)
}

// Fetch performs one resilient fetch and updates the running stats.
func (c *Crawler) Fetch(ctx context.Context, rawURL string) (*fetcher.Record, error) {
	rec, err := c.fetcher.Fetch(ctx, rawURL)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stats.FetchErrors++
		return nil, err
	}
	c.stats.PagesCrawled++
	c.stats.BytesFetched += int64(len(rec.Body))
	return rec, nil
}

// Stats returns a snapshot of the running counters.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// DiscoverFeedURL probes a bare domain for an RSS/Atom feed, used by the
// sources-onboarding CLI command to pre-populate a Source's RSSURL.
func (c *Crawler) DiscoverFeedURL(ctx context.Context, domain string) (string, bool) {
	return c.discovery.DiscoverFeedURL(ctx, domain)
}

// Search runs one ad-hoc query against provider, used by the worker to
// drain trending-generated queries (spec §4.17 step 6) outside of any
// one source's configured search_queries.
func (c *Crawler) Search(ctx context.Context, provider discovery.SearchProvider, query string, maxResults int) ([]string, error) {
	c.mu.Lock()
	c.stats.DiscoveryCalls++
	c.mu.Unlock()
	return c.discovery.DiscoverSearch(ctx, provider, query, maxResults)
}
