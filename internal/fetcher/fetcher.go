// Package fetcher implements the resilient HTTP fetch described in spec
// §4.8: robots-gated, rate-limited, proxy-rotating, with retry and a
// direct-connection fallback.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"sportsfeed/internal/logger"
	"sportsfeed/internal/proxy"
	"sportsfeed/internal/ratelimit"
	"sportsfeed/internal/robots"
)

// UserAgent is the single fixed user-agent string set on every request
// the Fetcher issues, per §6. Discovery and robots.txt requests are made
// by other clients and do not use this constant.
const UserAgent = "sportsfeed-bot/1.0 (+https://sportsfeed.example/bot)"

// Config holds the tunables enumerated in spec §6's crawling section.
type Config struct {
	MaxRetries      int
	RetryDelay      time.Duration
	Timeout         time.Duration
	MaxContentSize  int64
	MaxRedirects    int

	// RobotsDisabled exists only for tests; production defaults to
	// false so robots.txt is always consulted (spec §9 open question a).
	RobotsDisabled bool
}

// DefaultConfig matches the teacher's conservative defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		RetryDelay:     time.Second,
		Timeout:        15 * time.Second,
		MaxContentSize: 5 << 20,
		MaxRedirects:   5,
	}
}

// Record is the result of a single fetch, successful or not.
type Record struct {
	FinalURL string
	Status   int
	Headers  http.Header
	Body     []byte
	Encoding string
	Elapsed  time.Duration
	Proxy    string
}

// Fetcher ties together robots checking, rate limiting, proxy rotation,
// and the retry/direct-fallback fetch loop.
type Fetcher struct {
	cfg     Config
	robots  *robots.Checker
	limiter *ratelimit.Limiter
	proxies *proxy.Manager

	client       *http.Client
	directClient *http.Client
}

// New creates a Fetcher. proxies may be nil, in which case every fetch
// goes direct.
func New(cfg Config, robotsChecker *robots.Checker, limiter *ratelimit.Limiter, proxies *proxy.Manager) *Fetcher {
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= cfg.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
		}
		return nil
	}

	return &Fetcher{
		cfg:     cfg,
		robots:  robotsChecker,
		limiter: limiter,
		proxies: proxies,
		client: &http.Client{
			Timeout:       cfg.Timeout,
			CheckRedirect: checkRedirect,
		},
		directClient: &http.Client{
			Timeout:       cfg.Timeout,
			CheckRedirect: checkRedirect,
		},
	}
}

// ErrBlockedByRobots is returned when the URL is disallowed by
// robots.txt.
var ErrBlockedByRobots = fmt.Errorf("blocked by robots.txt")

// ErrOversizeBody is returned when the response exceeds MaxContentSize.
var ErrOversizeBody = fmt.Errorf("response body exceeds max content size")

// Fetch performs the full resilient fetch sequence for rawURL. A nil
// Record with a nil error never happens. Fetch returns (nil, err) when
// robots.txt disallows the URL, the URL does not parse, the rate limiter
// or ctx is cancelled, or every path (proxied attempts and the direct
// fallback) failed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Record, error) {
	if !f.cfg.RobotsDisabled && f.robots != nil {
		if !f.robots.CanFetch(rawURL) {
			return nil, ErrBlockedByRobots
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetcher: invalid url: %w", err)
	}
	host := u.Host

	if f.limiter != nil {
		if err := f.limiter.Acquire(ctx, host); err != nil {
			return nil, fmt.Errorf("fetcher: rate limiter: %w", err)
		}
		if f.robots != nil {
			if delay, ok := f.robots.CrawlDelay(rawURL); ok && delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}
	}

	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		var proxyEndpoint proxy.Endpoint
		var proxyOK bool
		if f.proxies != nil {
			proxyEndpoint, proxyOK = f.proxies.Next()
		}

		rec, err := f.attempt(ctx, rawURL, host, proxyEndpoint, proxyOK)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		logger.Warn("fetcher: attempt failed", "url", rawURL, "attempt", attempt, "error", err.Error())

		if attempt == f.cfg.MaxRetries {
			break
		}
		backoff := time.Duration(1<<uint(attempt)) * f.cfg.RetryDelay
		jitter := time.Duration(rand.Int63n(int64(backoff)/5 + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Direct fallback: one attempt without a proxy.
	rec, err := f.attempt(ctx, rawURL, host, proxy.Endpoint{}, false)
	if err == nil {
		return rec, nil
	}
	logger.Warn("fetcher: direct fallback failed", "url", rawURL, "error", err.Error())
	return nil, fmt.Errorf("fetcher: all attempts failed, last error: %w", lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, rawURL, host string, proxyEndpoint proxy.Endpoint, useProxy bool) (*Record, error) {
	client := f.directClient
	proxyLabel := ""
	if useProxy {
		transport := &http.Transport{}
		if proxyURL, err := url.Parse(proxyEndpoint.URL()); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		client = &http.Client{
			Timeout:       f.cfg.Timeout,
			Transport:     transport,
			CheckRedirect: f.client.CheckRedirect,
		}
		proxyLabel = proxyEndpoint.URL()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if f.limiter != nil {
			f.limiter.Observe(host, 0)
		}
		return nil, fmt.Errorf("fetcher: transport error: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > 0 && resp.ContentLength > f.cfg.MaxContentSize {
		if f.limiter != nil {
			f.limiter.Observe(host, resp.StatusCode)
		}
		return nil, ErrOversizeBody
	}

	limited := io.LimitReader(resp.Body, f.cfg.MaxContentSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("fetcher: reading body: %w", err)
	}
	if int64(len(body)) > f.cfg.MaxContentSize {
		if f.limiter != nil {
			f.limiter.Observe(host, resp.StatusCode)
		}
		return nil, ErrOversizeBody
	}

	elapsed := time.Since(start)

	if f.limiter != nil {
		f.limiter.Observe(host, resp.StatusCode)
	}
	if f.proxies != nil && useProxy {
		f.proxies.Record(proxyEndpoint, int64(len(body)), resp.StatusCode < 400)
	}

	return &Record{
		FinalURL: resp.Request.URL.String(),
		Status:   resp.StatusCode,
		Headers:  resp.Header,
		Body:     body,
		Encoding: resp.Header.Get("Content-Encoding"),
		Elapsed:  elapsed,
		Proxy:    proxyLabel,
	}, nil
}
