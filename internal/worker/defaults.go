package worker

import (
	"strings"

	"sportsfeed/internal/extractor"
	"sportsfeed/internal/quality"
	"sportsfeed/internal/terms"
)

// DefaultKeywordTiers buckets the extractor's curated sports keyword
// table into a single high-relevance tier; real deployments load a
// richer tiered list, but this keeps the sports-relevance signal
// meaningful out of the box.
func DefaultKeywordTiers() quality.KeywordTiers {
	high := make(map[string]bool)
	for _, keywords := range extractor.SportsKeywords {
		for _, kw := range keywords {
			high[strings.ToLower(kw)] = true
		}
	}
	return quality.KeywordTiers{High: high, Medium: map[string]bool{}, Low: map[string]bool{}}
}

// DefaultLexicon seeds an entity lexicon from the extractor's sport
// names themselves (as a stand-in "league" tier) plus empty team/player
// tiers for deployments to populate from a richer source.
func DefaultLexicon() terms.Lexicon {
	leagues := make(map[string]bool)
	for sport := range extractor.SportsKeywords {
		leagues[sport] = true
	}
	return terms.Lexicon{
		Teams:   map[string]bool{},
		Players: map[string]bool{},
		Leagues: leagues,
		Events:  map[string]bool{},
	}
}
