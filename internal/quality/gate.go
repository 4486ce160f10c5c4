package quality

import (
	"fmt"
	"sync"
)

// Mode selects the gate's decision behaviour, per spec §4.11.
type Mode string

const (
	ModeShadow  Mode = "shadow"
	ModeEnforce Mode = "enforce"
)

// Decision is the gate's verdict for one item.
type Decision struct {
	Accepted    bool
	WouldReject bool // only meaningful in shadow mode
	Reason      string
	Score       float64
}

// Gate implements the shadow/enforce quality gate of spec §4.11: in
// shadow mode it always accepts but records what enforce would have
// done; in enforce mode it rejects anything scoring below MinScore.
type Gate struct {
	mode     Mode
	minScore float64

	mu         sync.Mutex
	total      int
	accepted   int
	rejected   int
	wouldReject int
	histogram  [10]int // buckets of width 0.1 over [0,1]
}

// NewGate creates a Gate in the given mode with the given minimum
// acceptable score.
func NewGate(mode Mode, minScore float64) *Gate {
	return &Gate{mode: mode, minScore: minScore}
}

// Evaluate applies the gate to score and updates statistics.
func (g *Gate) Evaluate(score float64) Decision {
	passes := score >= g.minScore

	g.mu.Lock()
	defer g.mu.Unlock()

	g.total++
	bucket := int(score * 10)
	if bucket > 9 {
		bucket = 9
	}
	if bucket < 0 {
		bucket = 0
	}
	g.histogram[bucket]++

	switch g.mode {
	case ModeShadow:
		g.accepted++
		if !passes {
			g.wouldReject++
			return Decision{
				Accepted:    true,
				WouldReject: true,
				Reason:      fmt.Sprintf("shadow_mode_would_reject_%.2f", score),
				Score:       score,
			}
		}
		return Decision{
			Accepted: true,
			Reason:   fmt.Sprintf("shadow_mode_accepted_%.2f", score),
			Score:    score,
		}
	default: // ModeEnforce
		if passes {
			g.accepted++
			return Decision{
				Accepted: true,
				Reason:   fmt.Sprintf("quality_accepted_%.2f", score),
				Score:    score,
			}
		}
		g.rejected++
		return Decision{
			Accepted: false,
			Reason:   fmt.Sprintf("quality_too_low_%.2f", score),
			Score:    score,
		}
	}
}

// Stats is a snapshot of the gate's accumulated statistics.
type Stats struct {
	Total       int
	Accepted    int
	Rejected    int
	WouldReject int
	Histogram   [10]int
}

// Stats returns a snapshot of the gate's accumulated counters.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Stats{
		Total:       g.total,
		Accepted:    g.accepted,
		Rejected:    g.rejected,
		WouldReject: g.wouldReject,
		Histogram:   g.histogram,
	}
}
