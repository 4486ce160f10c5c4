// Package terms extracts sports entities and significant phrases from
// article title/text, per spec §4.13.
package terms

import (
	"regexp"
	"strings"

	"sportsfeed/internal/core"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// Stopwords excluded from normalised terms and phrase candidates.
var Stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "his": true, "how": true, "who": true, "its": true,
	"did": true, "yet": true, "too": true, "with": true, "from": true,
	"this": true, "that": true, "have": true, "will": true, "said": true,
}

// sportsIndicators is a fixed set of words that mark a 2-/3-word phrase
// as sports-relevant enough to keep as a term candidate.
var sportsIndicators = map[string]bool{
	"game": true, "match": true, "season": true, "playoff": true,
	"playoffs": true, "championship": true, "trade": true, "injury": true,
	"coach": true, "roster": true, "draft": true, "score": true,
	"win": true, "loss": true, "title": true, "final": true, "finals": true,
	"team": true, "league": true, "tournament": true, "transfer": true,
}

// Lexicon is a curated entity lexicon partitioned by kind.
type Lexicon struct {
	Teams   map[string]bool
	Players map[string]bool
	Leagues map[string]bool
	Events  map[string]bool
}

// Normalize lower-cases s, replaces non-word/non-space runs with a
// single space, and collapses whitespace.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	replaced := nonWord.ReplaceAllString(lowered, " ")
	collapsed := whitespaceRun.ReplaceAllString(replaced, " ")
	return strings.TrimSpace(collapsed)
}

// valid rejects normalised terms under 3 chars or equal to a stopword.
func valid(term string) bool {
	return len(term) >= 3 && !Stopwords[term]
}

// Extraction is the set of terms extracted from one item, grouped by
// origin and ready to feed the trending detector.
type Extraction struct {
	Keywords []string
	Entities core.EntityGroup
	Phrases  []string
}

// All returns the union of keywords, entities, and phrases, deduplicated
// and normalised, for trending-counter updates.
func (e Extraction) All() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(terms []string) {
		for _, t := range terms {
			n := Normalize(t)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	add(e.Keywords)
	add(e.Entities.Teams)
	add(e.Entities.Players)
	add(e.Entities.Leagues)
	add(e.Entities.Events)
	add(e.Phrases)
	return out
}

// Extract pulls sports keywords (from the caller-supplied set), lexicon
// entity matches, and significant phrases out of title+text.
func Extract(title, text string, keywords []string, lex Lexicon) Extraction {
	combined := strings.ToLower(title + " " + text)

	var kept []string
	for _, kw := range keywords {
		n := Normalize(kw)
		if valid(n) {
			kept = append(kept, n)
		}
	}

	entities := core.EntityGroup{
		Teams:   matchLexicon(combined, lex.Teams),
		Players: matchLexicon(combined, lex.Players),
		Leagues: matchLexicon(combined, lex.Leagues),
		Events:  matchLexicon(combined, lex.Events),
	}

	phrases := significantPhrases(Normalize(title + " " + text))

	return Extraction{Keywords: kept, Entities: entities, Phrases: phrases}
}

func matchLexicon(haystack string, set map[string]bool) []string {
	var matched []string
	for term := range set {
		if strings.Contains(haystack, strings.ToLower(term)) {
			matched = append(matched, term)
		}
	}
	return matched
}

// significantPhrases returns 2- and 3-word phrases where no token is a
// stopword, the phrase is at least 6 characters, and it contains at
// least one sports-indicator word.
func significantPhrases(normalized string) []string {
	tokens := strings.Fields(normalized)
	var phrases []string
	seen := make(map[string]bool)

	tryPhrase := func(words []string) {
		for _, w := range words {
			if Stopwords[w] {
				return
			}
		}
		phrase := strings.Join(words, " ")
		if len(phrase) < 6 {
			return
		}
		hasIndicator := false
		for _, w := range words {
			if sportsIndicators[w] {
				hasIndicator = true
				break
			}
		}
		if !hasIndicator || seen[phrase] {
			return
		}
		seen[phrase] = true
		phrases = append(phrases, phrase)
	}

	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			tryPhrase(tokens[i : i+2])
		}
		if i+2 < len(tokens) {
			tryPhrase(tokens[i : i+3])
		}
	}
	return phrases
}
