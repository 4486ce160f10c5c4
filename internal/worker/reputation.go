package worker

import (
	"context"
	"sync"

	"sportsfeed/internal/logger"
)

// sourceOutcomes accumulates the per-source quality scores and error
// count observed during one cycle, feeding the end-of-cycle reputation
// update of spec §4.12.
type sourceOutcomes struct {
	mu     sync.Mutex
	scores map[string][]float64
	errors map[string]int
	total  map[string]int
}

func newSourceOutcomes() *sourceOutcomes {
	return &sourceOutcomes{
		scores: make(map[string][]float64),
		errors: make(map[string]int),
		total:  make(map[string]int),
	}
}

func (o *sourceOutcomes) recordAttempt(sourceID string) {
	if sourceID == "" {
		return
	}
	o.mu.Lock()
	o.total[sourceID]++
	o.mu.Unlock()
}

func (o *sourceOutcomes) recordError(sourceID string) {
	if sourceID == "" {
		return
	}
	o.mu.Lock()
	o.errors[sourceID]++
	o.mu.Unlock()
}

func (o *sourceOutcomes) recordScore(sourceID string, score float64) {
	if sourceID == "" {
		return
	}
	o.mu.Lock()
	o.scores[sourceID] = append(o.scores[sourceID], score)
	o.mu.Unlock()
}

// applyReputation recomputes and persists reputation/tier for every
// source with at least one attempt this cycle.
func (w *Worker) applyReputation(ctx context.Context, outcomes *sourceOutcomes) {
	outcomes.mu.Lock()
	sourceIDs := make([]string, 0, len(outcomes.total))
	for id := range outcomes.total {
		sourceIDs = append(sourceIDs, id)
	}
	outcomes.mu.Unlock()

	for _, id := range sourceIDs {
		source, err := w.store.Sources().Get(ctx, id)
		if err != nil || source == nil {
			continue
		}

		outcomes.mu.Lock()
		total := outcomes.total[id]
		errCount := outcomes.errors[id]
		scores := append([]float64(nil), outcomes.scores[id]...)
		outcomes.mu.Unlock()

		errorRate := 0.0
		if total > 0 {
			errorRate = float64(errCount) / float64(total)
		}

		w.reputation.Apply(source, scores, errorRate)
		if err := w.store.Sources().Update(ctx, source); err != nil {
			logger.Warn("worker: reputation update failed", "source_id", id, "error", err.Error())
		}
	}
}
