// Package quality implements the six-signal scorer of spec §4.10 and the
// shadow/enforce gate of §4.11.
package quality

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"sportsfeed/internal/core"
)

// AlgorithmVersion is stamped onto every computed QualitySignal so that
// recomputation under a changed formula is distinguishable from a stale
// cached value.
const AlgorithmVersion = "v1"

// Context carries the inputs a signal needs beyond the ContentItem
// itself: the owning Source (for reputation) and caller-supplied sports
// keyword tiers (for relevance).
type Context struct {
	Source *core.Source

	// KeywordTiers classifies sports keywords into high/medium/low
	// relevance buckets; matches against item.SportsKeywords.
	KeywordTiers KeywordTiers

	// DetectedLanguage and DetectionProb are produced by the extractor's
	// language-detection pass; the declared language is the item's own
	// Language field (the two may legitimately differ, e.g. when the
	// source declares one language but serves another).
	DetectedLanguage string
	DetectionProb    float64
	ReplacementChars int
	Mojibake         bool

	NowHours func() float64 // hours since epoch-like clock for freshness; tests override
}

// KeywordTiers partitions sports keywords into relevance tiers for the
// sports-relevance signal.
type KeywordTiers struct {
	High   map[string]bool
	Medium map[string]bool
	Low    map[string]bool
}

// Signal is the closed contract every quality signal implements, per
// the design note in spec §9: no open polymorphism, dispatch via a
// table keyed by kind.
type Signal interface {
	Kind() core.SignalKind
	Weight() float64
	Compute(item *core.ContentItem, ctx Context) float64
}

// Signals is the table of all six signals, in the order of spec §4.10's
// table.
var Signals = []Signal{
	sourceReputationSignal{},
	freshnessSignal{},
	depthSignal{},
	titleQualitySignal{},
	sportsRelevanceSignal{},
	languageQualitySignal{},
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// --- Source reputation ---

type sourceReputationSignal struct{}

func (sourceReputationSignal) Kind() core.SignalKind { return core.SignalSourceReputation }
func (sourceReputationSignal) Weight() float64       { return 0.25 }

func (sourceReputationSignal) Compute(item *core.ContentItem, ctx Context) float64 {
	if ctx.Source == nil {
		return 0.3
	}
	tierScore := map[core.QualityTier]float64{
		core.TierPremium:   0.9,
		core.TierQuality:   0.7,
		core.TierDiscovery: 0.5,
	}[ctx.Source.Tier]
	return clamp01(0.6*ctx.Source.Reputation + 0.3*tierScore + 0.1*ctx.Source.SuccessRate)
}

// --- Freshness ---

type freshnessSignal struct{}

func (freshnessSignal) Kind() core.SignalKind { return core.SignalFreshness }
func (freshnessSignal) Weight() float64       { return 0.15 }

func (freshnessSignal) Compute(item *core.ContentItem, ctx Context) float64 {
	if item.PublishedAt == nil {
		return 0.3
	}
	now := ctx.NowHours
	var ageHours float64
	if now != nil {
		ageHours = now() - float64(item.PublishedAt.Unix())/3600.0
	} else {
		ageHours = 0
	}
	if ageHours < 0 {
		ageHours = 0
	}
	return clamp01(math.Exp(-ageHours / 24.0))
}

// --- Depth ---

type depthSignal struct{}

func (depthSignal) Kind() core.SignalKind { return core.SignalDepth }
func (depthSignal) Weight() float64       { return 0.20 }

func (depthSignal) Compute(item *core.ContentItem, ctx Context) float64 {
	length := lengthCurve(item.WordCount)
	structure := structureScore(item)
	density := densityScore(item.Text)
	return clamp01(0.5*length + 0.3*structure + 0.2*density)
}

func lengthCurve(words int) float64 {
	switch {
	case words < 100:
		return 0.1
	case words < 300:
		return 0.1 + (0.6-0.1)*float64(words-100)/float64(300-100)
	case words < 2000:
		return 0.6 + (1.0-0.6)*float64(words-300)/float64(2000-300)
	case words < 7000:
		// soft decay from 1.0 toward the 0.7 floor
		frac := float64(words-2000) / float64(7000-2000)
		return 1.0 - 0.3*frac
	default:
		return 0.7
	}
}

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

func structureScore(item *core.ContentItem) float64 {
	var score float64
	sentences := sentenceEnd.Split(item.Text, -1)
	nonEmptySentences := 0
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			nonEmptySentences++
		}
	}
	if nonEmptySentences >= 3 {
		score += 0.3
	}
	paragraphs := strings.Count(item.Text, "\n\n") + 1
	if paragraphs >= 2 {
		score += 0.3
	}
	if len(strings.Fields(item.Title)) >= 4 {
		score += 0.2
	}
	if strings.ContainsAny(item.Text, "“”\"") {
		score += 0.2
	}
	return score
}

func densityScore(text string) float64 {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0
	}
	unique := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		unique[t] = true
	}
	ratio := float64(len(unique)) / float64(len(tokens))
	return clamp01((ratio - 0.2) / 0.6)
}

// --- Title quality ---

type titleQualitySignal struct{}

func (titleQualitySignal) Kind() core.SignalKind { return core.SignalTitleQuality }
func (titleQualitySignal) Weight() float64       { return 0.15 }

var clickbaitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)you won'?t believe`),
	regexp.MustCompile(`(?i)this one (trick|weird)`),
	regexp.MustCompile(`(?i)what happened next`),
	regexp.MustCompile(`(?i)\bshocking\b`),
	regexp.MustCompile(`(?i)number \d+ will`),
	regexp.MustCompile(`(?i)\bgone wrong\b`),
}

func (titleQualitySignal) Compute(item *core.ContentItem, ctx Context) float64 {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return 0
	}
	score := titleLengthCurve(len(title))

	for _, p := range clickbaitPatterns {
		if p.MatchString(title) {
			score *= 0.3
			break
		}
	}
	if isAllCaps(title) {
		score *= 0.4
	}
	if strings.Count(title, "!")+strings.Count(title, "?") > 2 {
		score *= 0.6
	}
	words := strings.Fields(title)
	if len(words) < 3 {
		score *= 0.5
	}
	if properlyCapitalized(title) {
		score *= 1.1
	}
	return clamp01(score)
}

func titleLengthCurve(n int) float64 {
	switch {
	case n < 40:
		return 0.4 + 0.6*float64(n)/40.0
	case n <= 80:
		return 1.0
	default:
		over := float64(n - 80)
		return math.Max(0.2, 1.0-over/200.0)
	}
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func properlyCapitalized(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		if unicode.IsLetter(r[0]) && !unicode.IsUpper(r[0]) {
			return false
		}
	}
	return true
}

// --- Sports relevance ---

type sportsRelevanceSignal struct{}

func (sportsRelevanceSignal) Kind() core.SignalKind { return core.SignalSportsRelevance }
func (sportsRelevanceSignal) Weight() float64       { return 0.15 }

func (sportsRelevanceSignal) Compute(item *core.ContentItem, ctx Context) float64 {
	keywordScore := math.Min(0.4, 0.1*float64(len(item.SportsKeywords)))

	var tierHits float64
	for _, kw := range item.SportsKeywords {
		lk := strings.ToLower(kw)
		switch {
		case ctx.KeywordTiers.High[lk]:
			tierHits += 0.2
		case ctx.KeywordTiers.Medium[lk]:
			tierHits += 0.1
		case ctx.KeywordTiers.Low[lk]:
			tierHits += 0.05
		}
	}
	tierScore := math.Min(0.3, tierHits)

	var contentTypeBonus float64
	switch item.ContentType {
	case core.ContentTypeGameRecap, core.ContentTypeBreakingNews, core.ContentTypeTrade, core.ContentTypeInjury:
		contentTypeBonus = 0.2
	case core.ContentTypeAnalysis, core.ContentTypeInterview:
		contentTypeBonus = 0.1
	}

	return clamp01(keywordScore + tierScore + contentTypeBonus)
}

// --- Language quality ---

type languageQualitySignal struct{}

func (languageQualitySignal) Kind() core.SignalKind { return core.SignalLanguageQuality }
func (languageQualitySignal) Weight() float64       { return 0.10 }

func (languageQualitySignal) Compute(item *core.ContentItem, ctx Context) float64 {
	base := 0.5
	if ctx.DetectedLanguage != "" && item.Language != "" {
		if strings.EqualFold(ctx.DetectedLanguage, item.Language) {
			base = ctx.DetectionProb
			if base <= 0 {
				base = 0.5
			}
		} else {
			base = 0.2
		}
	}

	if ctx.ReplacementChars > 0 {
		base *= 0.5
	}
	if ctx.Mojibake {
		base *= 0.3
	}
	if len(item.Text) < 50 {
		base *= 0.5
	}
	tokens := strings.Fields(strings.ToLower(item.Text))
	if len(tokens) > 0 {
		unique := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			unique[t] = true
		}
		if float64(len(unique))/float64(len(tokens)) < 0.3 {
			base *= 0.5
		}
	}
	return clamp01(base)
}
