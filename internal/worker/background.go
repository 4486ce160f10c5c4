package worker

import (
	"context"
	"time"

	"sportsfeed/internal/logger"
	"sportsfeed/internal/registry"
)

// heartbeatLoop publishes the worker's counters every HeartbeatInterval
// until ctx is cancelled, per spec §4.17 step 5. It completes the
// current iteration before returning, per spec §9's background-task
// cancellation note.
func (w *Worker) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	w.publishHeartbeat(ctx)
	for {
		select {
		case <-ticker.C:
			w.publishHeartbeat(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) publishHeartbeat(ctx context.Context) {
	if w.registry == nil {
		return
	}
	snap := w.Snapshot()
	hb := registry.Heartbeat{
		WorkerID:         w.cfg.ID,
		State:            string(w.State()),
		ItemsProcessed:   snap.PagesCrawled,
		ItemsSuccessful:  snap.ContentExtracted,
		ItemsFailed:      snap.Errors,
		AvgFetchMillis:   w.fetchAvg.average(),
		AvgExtractMillis: w.extractAvg.average(),
		LastHeartbeat:    time.Now().UTC(),
	}
	if err := w.registry.PutHeartbeat(ctx, hb); err != nil {
		logger.Warn("worker: heartbeat publish failed", "worker_id", w.cfg.ID, "error", err.Error())
	}
}

// trendingLoop runs the discovery-query generation pass of spec §4.15
// every TrendingInterval, appending emitted queries to the worker's
// pending-query list; later cycles drain that list through the worker's
// search provider (drainTrendingQueries), if one is configured.
func (w *Worker) trendingLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.TrendingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runTrendingPass()
		case <-ctx.Done():
			return
		}
	}
}

// drainTrendingQueries pops up to queryBudget pending trending queries
// (highest priority first, since GenerateQueries already sorts
// descending) and resolves each through the search provider, per spec
// §4.17 step 6's "appended to the worker's discovery feed".
func (w *Worker) drainTrendingQueries(ctx context.Context) []string {
	if w.search == nil {
		return nil
	}

	w.mu.Lock()
	n := len(w.pendingQueries)
	if n > queryBudget {
		n = queryBudget
	}
	batch := w.pendingQueries[:n]
	w.pendingQueries = w.pendingQueries[n:]
	w.mu.Unlock()

	var urls []string
	for _, q := range batch {
		found, err := w.crawler.Search(ctx, w.search, q.Query, 10)
		if err != nil {
			logger.Warn("worker: trending query search failed", "query", q.Query, "error", err.Error())
			continue
		}
		urls = append(urls, found...)
	}
	return urls
}

func (w *Worker) runTrendingPass() {
	queries := w.trending.GenerateQueries(w.cfg.MaxTerms)
	if len(queries) == 0 {
		return
	}

	w.mu.Lock()
	w.pendingQueries = append(w.pendingQueries, queries...)
	w.mu.Unlock()

	logger.Info("worker: trending pass generated queries", "worker_id", w.cfg.ID, "count", len(queries))
}
