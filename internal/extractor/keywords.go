package extractor

import "strings"

// SportsKeywords is the curated, sport-partitioned keyword set used to
// extract sports keywords per spec §4.4. Real deployments load a much
// larger curated list; this is the seed table shipped with the module.
var SportsKeywords = map[string][]string{
	"basketball": {"nba", "basketball", "dunk", "three-pointer", "playoffs", "point guard"},
	"football":   {"nfl", "touchdown", "quarterback", "super bowl", "field goal", "blitz"},
	"soccer":     {"fifa", "premier league", "goal", "penalty kick", "offside", "champions league"},
	"baseball":   {"mlb", "home run", "pitcher", "world series", "strikeout", "inning"},
	"hockey":     {"nhl", "power play", "goalie", "stanley cup", "slapshot", "faceoff"},
	"tennis":     {"grand slam", "wimbledon", "ace", "match point", "us open"},
}

// MatchSportsKeywords returns every curated keyword (across all sports)
// found in haystack, matched case-insensitively.
func MatchSportsKeywords(haystack string) []string {
	lower := strings.ToLower(haystack)
	var matched []string
	for _, keywords := range SportsKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
	}
	return matched
}

// contentTypeRules is the prioritised keyword -> label table used for
// first-match content-type classification, per spec §4.4.
var contentTypeRules = []struct {
	label    string
	keywords []string
}{
	{"game_recap", []string{"final score", "recap", "defeated", "box score"}},
	{"breaking_news", []string{"breaking", "just in", "developing"}},
	{"analysis", []string{"analysis", "breakdown", "film study", "deep dive"}},
	{"trade", []string{"traded", "trade deal", "acquires", "sign-and-trade"}},
	{"injury", []string{"injury", "injured", "out for season", "torn acl"}},
	{"roster", []string{"roster move", "waived", "activated", "depth chart"}},
	{"interview", []string{"interview", "said in an interview", "speaking to reporters"}},
}

// ClassifyContentType applies contentTypeRules in priority order and
// returns the first matching label, or "general" if none match.
func ClassifyContentType(title, text string) string {
	haystack := strings.ToLower(title + " " + text)
	for _, rule := range contentTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.label
			}
		}
	}
	return "general"
}
