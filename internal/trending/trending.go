// Package trending implements the windowed trend detector of spec §4.14
// and the discovery-query generation loop of §4.15.
package trending

import (
	"math"
	"sort"
	"sync"
	"time"

	"sportsfeed/internal/core"
	"sportsfeed/internal/terms"
)

// Config holds the detector's tunables, per spec §6.
type Config struct {
	MinBurstRatio  float64
	MinTrendScore  float64
	MinOccurrences int
	CooldownHours  int
}

type termState struct {
	term        core.TrendingTerm
	occurrences []time.Time // pruned to the trailing 24h
}

// Detector maintains windowed occurrence counts per normalised term and
// derives burst ratio, trend score, and the is_trending flag. Counts are
// eventually consistent across detector passes, per spec §5: a missed
// Observe never violates §3's invariants because the windows are
// recomputed from the occurrence log on every call.
type Detector struct {
	cfg Config

	mu    sync.Mutex
	terms map[string]*termState
	now   func() time.Time
}

// New creates a Detector with the given configuration.
func New(cfg Config) *Detector {
	return &Detector{
		cfg:   cfg,
		terms: make(map[string]*termState),
		now:   time.Now,
	}
}

// Observe records one occurrence of term (already-normalised form is
// derived internally) at the current time and recomputes its windowed
// state.
func (d *Detector) Observe(term string, termType core.TermType, sportsContext string) core.TrendingTerm {
	normalized := terms.Normalize(term)
	now := d.now().UTC()

	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.terms[normalized]
	if !ok {
		st = &termState{term: core.TrendingTerm{
			ID:             "",
			Term:           term,
			NormalisedTerm: normalized,
			TermType:       termType,
		}}
		d.terms[normalized] = st
	}
	st.term.LastSeen = now
	if sportsContext != "" {
		st.term.SportsContext = sportsContext
	}
	st.occurrences = append(st.occurrences, now)
	st.occurrences = pruneOlderThan(st.occurrences, now, 24*time.Hour)

	d.evaluateLocked(st, now)
	return st.term
}

// the window boundary is inclusive: an occurrence exactly `window` old
// still counts, matching spec §8 scenario 5's worked example (24 hourly
// background observations plus a burst yields count_24h=64, not 63).
func pruneOlderThan(times []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := times[:0]
	for _, t := range times {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func countWithin(times []time.Time, now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	count := 0
	for _, t := range times {
		if !t.Before(cutoff) {
			count++
		}
	}
	return count
}

func (d *Detector) evaluateLocked(st *termState, now time.Time) {
	count1h := countWithin(st.occurrences, now, time.Hour)
	count6h := countWithin(st.occurrences, now, 6*time.Hour)
	count24h := countWithin(st.occurrences, now, 24*time.Hour)

	st.term.Count1h = count1h
	st.term.Count6h = count6h
	st.term.Count24h = count24h

	count2h := 2 * count1h
	if count6h < count2h {
		count2h = count6h
	}

	rate2h := float64(count2h) / 2.0
	rate24h := float64(count24h) / 24.0

	var burst float64
	if rate24h > 0 {
		burst = rate2h / rate24h
	}
	st.term.BurstRatio = burst

	hoursSinceSeen := now.Sub(st.term.LastSeen).Hours()
	recencyComponent := 1 - hoursSinceSeen/6
	if recencyComponent < 0 {
		recencyComponent = 0
	}
	sportsComponent := 0.0
	if st.term.SportsContext != "" {
		sportsComponent = 1.0
	}

	trendScore := 0.4*math.Min(1, burst/10) +
		0.3*math.Min(1, math.Log10(math.Max(1, float64(count1h)))/3) +
		0.2*recencyComponent +
		0.1*sportsComponent
	st.term.TrendScore = trendScore

	inCooldown := !st.term.CooldownUntil.IsZero() && now.Before(st.term.CooldownUntil)
	wasTrending := st.term.IsTrending
	isTrending := burst >= d.cfg.MinBurstRatio &&
		trendScore >= d.cfg.MinTrendScore &&
		count1h >= d.cfg.MinOccurrences &&
		!inCooldown

	st.term.IsTrending = isTrending
	if isTrending && !wasTrending {
		t := now
		st.term.TrendStart = &t
	}
	if isTrending {
		t := now
		st.term.TrendPeak = &t
	}
}

// Trending returns the currently-trending terms sorted by descending
// trend score.
func (d *Detector) Trending() []core.TrendingTerm {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []core.TrendingTerm
	for _, st := range d.terms {
		if st.term.IsTrending {
			out = append(out, st.term)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrendScore > out[j].TrendScore })
	return out
}

// Get returns the current state for a normalised term, if tracked.
func (d *Detector) Get(normalizedTerm string) (core.TrendingTerm, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.terms[normalizedTerm]
	if !ok {
		return core.TrendingTerm{}, false
	}
	return st.term, true
}

// Cooldown suppresses further trending-query emission for normalizedTerm
// for the configured CooldownHours, called after the discovery loop
// consumes it.
func (d *Detector) Cooldown(normalizedTerm string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.terms[normalizedTerm]; ok {
		st.term.CooldownUntil = d.now().UTC().Add(time.Duration(d.cfg.CooldownHours) * time.Hour)
		st.term.IsTrending = false
	}
}

// SetRelatedTerms attaches weak (non-owning) related-term references to
// normalizedTerm, used by the discovery loop's related-term combinations.
func (d *Detector) SetRelatedTerms(normalizedTerm string, related []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.terms[normalizedTerm]; ok {
		st.term.RelatedTerms = related
	}
}
