// Package worker implements the cycle-orchestration state machine of
// spec §4.17: one worker owns one logical crawl pipeline, discovering
// and processing URLs in batches, publishing heartbeats, and running
// the trending discovery loop, until a shutdown signal drains it.
package worker

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"sportsfeed/internal/crawler"
	"sportsfeed/internal/dedupe"
	"sportsfeed/internal/discovery"
	"sportsfeed/internal/logger"
	"sportsfeed/internal/persistence"
	"sportsfeed/internal/quality"
	"sportsfeed/internal/registry"
	"sportsfeed/internal/reputation"
	"sportsfeed/internal/terms"
	"sportsfeed/internal/trending"
)

// queryBudget caps how many trending-generated queries one cycle will
// drain into ad-hoc discovery, keeping a burst of trending terms from
// monopolising a single cycle's discovery budget.
const queryBudget = 20

// State is one position in the worker's lifecycle state machine.
type State string

const (
	StateInitializing State = "initializing"
	StateRunning       State = "running"
	StateCycling       State = "cycling"
	StateIdle          State = "idle"
	StateDraining      State = "draining"
	StateStopped       State = "stopped"
)

// Config holds the per-worker tunables of spec §6's crawling section
// plus the background-task intervals of §4.17.
type Config struct {
	ID                    string
	BatchSize             int
	MaxConcurrentRequests int
	CycleDelay            time.Duration
	MaxURLsPerCycle       int

	// MaxTerms caps how many trending terms one trending pass turns into
	// discovery queries, per spec §4.15. Zero means uncapped.
	MaxTerms int

	HeartbeatInterval time.Duration
	TrendingInterval  time.Duration
	DrainTimeout      time.Duration
}

// DefaultHeartbeatInterval and DefaultTrendingInterval match spec §4.17.
const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultTrendingInterval  = 5 * time.Minute
	DefaultDrainTimeout      = 30 * time.Second
)

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.TrendingInterval <= 0 {
		c.TrendingInterval = DefaultTrendingInterval
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
	return c
}

// Worker ties together one process's private crawling, quality, and
// trending machinery, per spec §9's shared-resource policy: every field
// here is owned by this worker alone.
type Worker struct {
	cfg Config

	store      persistence.Store
	crawler    *crawler.Crawler
	dedupe     *dedupe.Index
	gate       *quality.Gate
	scorer     *quality.Scorer
	reputation *reputation.Manager
	trending   *trending.Detector
	registry   *registry.Registry
	lexicon    terms.Lexicon
	tiers      quality.KeywordTiers
	search     discovery.SearchProvider

	state atomic.Value // State

	mu             sync.Mutex
	counters       Counters
	errorStreak    int
	pendingQueries []trending.DiscoveryQuery

	fetchAvg   *ringAverage
	extractAvg *ringAverage
}

// Counters is the worker's running statistics, published on every
// heartbeat.
type Counters struct {
	PagesCrawled     int64
	ContentExtracted int64
	DuplicatesFound  int64
	QualityFiltered  int64
	Errors           int64
}

// New assembles a Worker from its dependencies. Every dependency is
// constructed by the caller (cmd wiring) so that it can be shared or
// swapped per deployment without this package knowing about config
// file formats.
func New(cfg Config, store persistence.Store, crawl *crawler.Crawler, dedupeIndex *dedupe.Index, gate *quality.Gate, scorer *quality.Scorer, repMgr *reputation.Manager, trendDetector *trending.Detector, reg *registry.Registry, lexicon terms.Lexicon, tiers quality.KeywordTiers, search discovery.SearchProvider) *Worker {
	w := &Worker{
		cfg:        cfg.withDefaults(),
		store:      store,
		crawler:    crawl,
		dedupe:     dedupeIndex,
		gate:       gate,
		scorer:     scorer,
		reputation: repMgr,
		trending:   trendDetector,
		registry:   reg,
		lexicon:    lexicon,
		tiers:      tiers,
		search:     search,
		fetchAvg:   newRingAverage(100),
		extractAvg: newRingAverage(100),
	}
	w.setState(StateInitializing)
	return w
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return w.state.Load().(State)
}

func (w *Worker) setState(s State) {
	w.state.Store(s)
	logger.Info("worker: state transition", "worker_id", w.cfg.ID, "state", string(s))
}

// Snapshot returns a copy of the worker's running counters.
func (w *Worker) Snapshot() Counters {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counters
}

func (w *Worker) incr(field *int64, n int64) {
	w.mu.Lock()
	*field += n
	w.mu.Unlock()
}

// Run drives the worker's lifecycle until ctx is cancelled: it starts
// the heartbeat and trending background tasks, then loops discover →
// process cycles, transitioning to draining on cancellation and
// returning once every in-flight task has finished.
func (w *Worker) Run(ctx context.Context) error {
	drainCtx, cancelBackground := context.WithCancel(ctx)
	defer cancelBackground()

	var bg sync.WaitGroup
	bg.Add(2)
	go func() {
		defer bg.Done()
		w.heartbeatLoop(drainCtx)
	}()
	go func() {
		defer bg.Done()
		w.trendingLoop(drainCtx)
	}()

	w.setState(StateRunning)

	for {
		select {
		case <-ctx.Done():
			w.setState(StateDraining)
			cancelBackground()
			bg.Wait()
			w.setState(StateStopped)
			return nil
		default:
		}

		w.setState(StateCycling)
		if err := w.runCycle(ctx); err != nil {
			w.mu.Lock()
			w.errorStreak++
			streak := w.errorStreak
			w.mu.Unlock()
			w.incr(&w.counters.Errors, 1)
			logger.Error("worker: cycle failed", err, "worker_id", w.cfg.ID)
			if !sleepFor(ctx, backoffFor(streak)) {
				w.setState(StateDraining)
				cancelBackground()
				bg.Wait()
				w.setState(StateStopped)
				return nil
			}
			continue
		}

		w.mu.Lock()
		w.errorStreak = 0
		w.mu.Unlock()

		w.setState(StateIdle)
		if !sleepFor(ctx, w.cfg.CycleDelay) {
			w.setState(StateDraining)
			cancelBackground()
			bg.Wait()
			w.setState(StateStopped)
			return nil
		}
	}
}

// backoffFor implements the min(60, 2^min(errors,6)) seconds schedule
// of spec §4.17 step 4.
func backoffFor(streak int) time.Duration {
	exp := streak
	if exp > 6 {
		exp = 6
	}
	seconds := math.Pow(2, float64(exp))
	if seconds > 60 {
		seconds = 60
	}
	return time.Duration(seconds * float64(time.Second))
}

// sleepFor waits for d or ctx cancellation, returning false if ctx was
// cancelled first.
func sleepFor(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
