// Package ratelimit implements a per-host token bucket with adaptive
// backoff, per spec §4.6.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 300 * time.Second
)

// Limiter throttles requests per host at a configured default rate and
// layers an adaptive backoff table on top, driven by observed HTTP
// statuses.
type Limiter struct {
	defaultDelay time.Duration

	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	backoffs map[string]time.Duration
}

// New creates a Limiter with one token per defaultDelay and burst 1.
func New(defaultDelay time.Duration) *Limiter {
	if defaultDelay <= 0 {
		defaultDelay = time.Second
	}
	return &Limiter{
		defaultDelay: defaultDelay,
		buckets:      make(map[string]*rate.Limiter),
		backoffs:     make(map[string]time.Duration),
	}
}

func (l *Limiter) bucketFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[host]
	if !ok {
		b = rate.NewLimiter(rate.Every(l.defaultDelay), 1)
		l.buckets[host] = b
	}
	return b
}

// Acquire blocks until a token is available for host, then sleeps any
// pending backoff for that host.
func (l *Limiter) Acquire(ctx context.Context, host string) error {
	if err := l.bucketFor(host).Wait(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	backoff := l.backoffs[host]
	l.mu.Unlock()

	if backoff <= 0 {
		return nil
	}
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Observe updates the adaptive backoff for host based on the fetch
// outcome. HTTP 429 doubles the backoff, clamped to 300s. A success
// (status < 400) halves it, clamped to a floor of 1s; below 1s the host
// is removed from the backoff table entirely.
func (l *Limiter) Observe(host string, status int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.backoffs[host]

	switch {
	case status == 429:
		next := current * 2
		if next < minBackoff {
			next = minBackoff
		}
		if next > maxBackoff {
			next = maxBackoff
		}
		l.backoffs[host] = next
	case status < 400:
		if current == 0 {
			return
		}
		next := current / 2
		if next < minBackoff {
			delete(l.backoffs, host)
			return
		}
		l.backoffs[host] = next
	}
}

// CurrentBackoff reports the current backoff duration for host (0 if
// none).
func (l *Limiter) CurrentBackoff(host string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backoffs[host]
}

// EffectiveDelay is the minimum spacing currently enforced between
// fetches of host: the default per-token delay plus any active backoff.
func (l *Limiter) EffectiveDelay(host string) time.Duration {
	return l.defaultDelay + l.CurrentBackoff(host)
}
