// Package robots implements a cached robots.txt checker keyed by
// scheme://host, per spec §4.5.
package robots

import (
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"sportsfeed/internal/logger"
)

// TTL is how long a parsed robots.txt stays cached.
const TTL = 24 * time.Hour

type entry struct {
	group     *robotstxt.Group
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// Checker caches robots.txt documents per host and answers can_fetch and
// crawl_delay queries against them.
type Checker struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]entry
}

// New creates a Checker. client is used for the (short-timeout) robots.txt
// fetch; userAgent selects the applicable rule group.
func New(client *http.Client, userAgent string) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Checker{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]entry),
	}
}

func robotsURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/robots.txt"
}

// CanFetch reports whether agent may fetch u. On cache miss it fetches
// robots.txt with a short timeout; on HTTP 200 it parses and caches the
// result. On any other status or a transport error, it fails open
// (returns true) and does not cache.
func (c *Checker) CanFetch(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		logger.Warn("robots: malformed url", "url", rawURL, "error", err.Error())
		return true
	}

	key := u.Scheme + "://" + u.Host
	c.mu.Lock()
	e, ok := c.cache[key]
	c.mu.Unlock()

	if !ok || time.Since(e.fetchedAt) > TTL {
		e, ok = c.fetchAndCache(u, key)
		if !ok {
			return true
		}
	}

	if e.group == nil {
		return true
	}
	return e.group.Test(u.Path)
}

func (c *Checker) fetchAndCache(u *url.URL, key string) (entry, bool) {
	resp, err := c.client.Get(robotsURL(u))
	if err != nil {
		logger.Warn("robots: fetch failed, failing open", "host", u.Host, "error", err.Error())
		return entry{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("robots: non-200 status, failing open", "host", u.Host, "status", resp.StatusCode)
		return entry{}, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		logger.Warn("robots: read failed, failing open", "host", u.Host, "error", err.Error())
		return entry{}, false
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		logger.Warn("robots: parse failed, failing open", "host", u.Host, "error", err.Error())
		return entry{}, false
	}

	e := entry{
		group:     data.FindGroup(c.userAgent),
		data:      data,
		fetchedAt: time.Now(),
	}

	c.mu.Lock()
	c.cache[key] = e
	c.mu.Unlock()

	return e, true
}

// CrawlDelay returns the parsed crawl-delay for u's host only if a cache
// entry already exists; it never initiates a network call.
func (c *Checker) CrawlDelay(rawURL string) (time.Duration, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	e, ok := c.cache[key]
	c.mu.Unlock()

	if !ok || e.group == nil {
		return 0, false
	}
	return e.group.CrawlDelay, true
}
