package trending

import (
	"fmt"
	"sort"
	"time"

	"sportsfeed/internal/core"
)

// MaxQueueSize bounds the discovery-query FIFO handed to the worker.
const MaxQueueSize = 1000

// DiscoveryQuery is one generated search query with its priority.
type DiscoveryQuery struct {
	Term     string
	Query    string
	Priority float64
}

var standardVariations = []string{"news", "update", "latest"}

func isEntityTermType(t core.TermType) bool {
	return t == core.TermTypeTeam || t == core.TermTypePlayer || t == core.TermTypeEvent
}

// GenerateQueries implements spec §4.15: for each currently trending
// term (ranked by trend score, capped at maxTerms), generate a base
// query, three standard variations, and up to two related-term
// combinations, each weighted by a priority derived from trend score and
// recency/entity boosts. Every term consumed is put into cooldown.
func (d *Detector) GenerateQueries(maxTerms int) []DiscoveryQuery {
	trending := d.Trending()
	if maxTerms > 0 && len(trending) > maxTerms {
		trending = trending[:maxTerms]
	}

	now := d.now().UTC()
	var queries []DiscoveryQuery

	for _, term := range trending {
		base := term.Term
		if term.SportsContext != "" {
			base = term.SportsContext + " " + base
		}

		priority := queryPriority(term, now)

		queries = append(queries, DiscoveryQuery{Term: term.Term, Query: base, Priority: priority})
		for _, variation := range standardVariations {
			queries = append(queries, DiscoveryQuery{
				Term:     term.Term,
				Query:    fmt.Sprintf("%s %s", base, variation),
				Priority: priority,
			})
		}

		related := term.RelatedTerms
		if len(related) > 2 {
			related = related[:2]
		}
		for _, r := range related {
			queries = append(queries, DiscoveryQuery{
				Term:     term.Term,
				Query:    fmt.Sprintf("%s %s", base, r),
				Priority: priority,
			})
		}

		d.Cooldown(term.NormalisedTerm)
	}

	sort.Slice(queries, func(i, j int) bool { return queries[i].Priority > queries[j].Priority })
	if len(queries) > MaxQueueSize {
		queries = queries[:MaxQueueSize]
	}
	return queries
}

func queryPriority(term core.TrendingTerm, now time.Time) float64 {
	boost := 1.0
	if term.BurstRatio > 5 {
		boost *= 1.5
	}
	if isEntityTermType(term.TermType) {
		boost *= 1.3
	}
	if term.TrendPeak != nil {
		sincePeak := now.Sub(*term.TrendPeak)
		switch {
		case sincePeak <= time.Hour:
			boost *= 1.4
		case sincePeak <= 6*time.Hour:
			boost *= 1.2
		}
	}

	priority := term.TrendScore * boost
	if priority > 1.0 {
		priority = 1.0
	}
	return priority
}
