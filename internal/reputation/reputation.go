// Package reputation implements the rolling source-reputation update and
// tier assignment of spec §4.12.
package reputation

import (
	"sportsfeed/internal/core"
)

// Bounds clamps computed reputation to the configured range.
type Bounds struct {
	Min float64
	Max float64
}

// Manager recomputes a Source's reputation and tier from a batch of
// recent quality scores and the source's measured error rate.
//
// The update formula is avg_quality * 0.95 - min(0.3, error_rate * 0.5),
// clamped to Bounds. This is implemented as decay, not
// regression-to-mean: a source scoring a perfect 1.0 on every recent item
// gets 0.95, never 1.0, and the previous reputation is not blended in (it
// stands in for the average only when no recent scores are given), so
// sustained quality is required to sustain a high score (spec §9 open
// question c).
type Manager struct {
	bounds Bounds
}

// NewManager creates a Manager with the given reputation bounds.
func NewManager(bounds Bounds) *Manager {
	if bounds.Max <= bounds.Min {
		bounds = Bounds{Min: 0, Max: 1}
	}
	return &Manager{bounds: bounds}
}

func (m *Manager) clamp(v float64) float64 {
	if v < m.bounds.Min {
		return m.bounds.Min
	}
	if v > m.bounds.Max {
		return m.bounds.Max
	}
	return v
}

// Update computes a new reputation from recentScores (the last N quality
// scores for the source) and errorRate (fraction of recent requests that
// failed), and returns the new reputation, tier, and crawl priority. It
// does not mutate source; the caller persists the result.
func (m *Manager) Update(source *core.Source, recentScores []float64, errorRate float64) (reputation float64, tier core.QualityTier, priority float64) {
	avgQuality := average(recentScores)
	if len(recentScores) == 0 {
		avgQuality = source.Reputation
	}

	penalty := errorRate * 0.5
	if penalty > 0.3 {
		penalty = 0.3
	}
	reputation = m.clamp(avgQuality*0.95 - penalty)

	tier = assignTier(reputation, errorRate)
	priority = crawlPriority(tier, reputation)
	return reputation, tier, priority
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func assignTier(reputation, errorRate float64) core.QualityTier {
	switch {
	case reputation >= 0.8 && errorRate < 0.05:
		return core.TierPremium
	case reputation >= 0.6 && errorRate < 0.15:
		return core.TierQuality
	default:
		return core.TierDiscovery
	}
}

var tierPriority = map[core.QualityTier]float64{
	core.TierPremium:   1.0,
	core.TierQuality:   0.7,
	core.TierDiscovery: 0.4,
}

func crawlPriority(tier core.QualityTier, reputation float64) float64 {
	p := tierPriority[tier] * (0.5 + 0.5*reputation)
	if p < 0.1 {
		return 0.1
	}
	return p
}

// Apply mutates source in place with the result of Update, also
// refreshing SuccessRate from 1-errorRate. Callers that persist through
// the store should call this and then upsert source.
func (m *Manager) Apply(source *core.Source, recentScores []float64, errorRate float64) {
	reputation, tier, _ := m.Update(source, recentScores, errorRate)
	source.Reputation = reputation
	source.Tier = tier
	source.SuccessRate = 1 - errorRate
}
