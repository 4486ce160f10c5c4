package quality

import (
	"time"

	"sportsfeed/internal/core"
)

// Thresholds holds the classification boundaries of spec §4.10 and the
// gate's accept/reject boundary of §4.11.
type Thresholds struct {
	MinScore         float64
	DefaultThreshold float64
	PremiumThreshold float64
}

// Class is the quality classification bucket assigned by Classify.
type Class string

const (
	ClassPremium    Class = "premium"
	ClassGood       Class = "good"
	ClassAcceptable Class = "acceptable"
	ClassPoor       Class = "poor"
)

// Classify buckets a score per spec §4.10: >= premium_threshold ->
// premium; >= default_threshold -> good; >= min_score -> acceptable;
// else -> poor.
func (t Thresholds) Classify(score float64) Class {
	switch {
	case score >= t.PremiumThreshold:
		return ClassPremium
	case score >= t.DefaultThreshold:
		return ClassGood
	case score >= t.MinScore:
		return ClassAcceptable
	default:
		return ClassPoor
	}
}

// Scorer combines the six weighted signals into a clamped [0,1] score.
type Scorer struct {
	thresholds Thresholds
	signals    []Signal
}

// NewScorer creates a Scorer over the standard signal table.
func NewScorer(thresholds Thresholds) *Scorer {
	return &Scorer{thresholds: thresholds, signals: Signals}
}

// ScoreResult is the outcome of scoring one item: the combined score,
// its classification, and the individual computed signals (for
// persistence as QualitySignal rows).
type ScoreResult struct {
	Score   float64
	Class   Class
	Signals []core.QualitySignal
}

// Score computes every signal for item and combines them into a single
// clamped score, per spec §4.10.
func (s *Scorer) Score(item *core.ContentItem, ctx Context) ScoreResult {
	if ctx.NowHours == nil {
		ctx.NowHours = func() float64 { return float64(time.Now().Unix()) / 3600.0 }
	}

	var total float64
	computed := make([]core.QualitySignal, 0, len(s.signals))
	now := time.Now().UTC()
	for _, sig := range s.signals {
		value := clamp01(sig.Compute(item, ctx))
		total += value * sig.Weight()
		computed = append(computed, core.QualitySignal{
			ContentItemID:    item.ID,
			Kind:             sig.Kind(),
			Value:            value,
			Weight:           sig.Weight(),
			AlgorithmVersion: AlgorithmVersion,
			ComputedAt:       now,
		})
	}

	score := clamp01(total)
	return ScoreResult{
		Score:   score,
		Class:   s.thresholds.Classify(score),
		Signals: computed,
	}
}
