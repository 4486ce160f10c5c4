// Package searchengine implements the cursor-paginated, cached corpus
// search of spec §4.16 over the persisted content store.
package searchengine

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

// SortMode is one of the four deterministic orderings the engine supports.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortDate      SortMode = "date"
	SortQuality   SortMode = "quality"
	SortPopularity SortMode = "popularity"
)

// MaxLimit is the highest page size a caller may request.
const MaxLimit = 100

// Query is the search engine's request shape: a full-text term plus the
// filters and pagination controls of spec §4.16.
type Query struct {
	Text             string
	SportsKeywords   []string
	SourceDomains    []string
	ContentTypes     []string
	MinQualityScore  float64
	PublishedAfter   *time.Time
	PublishedBefore  *time.Time
	Sort             SortMode
	Limit            int
	Cursor           string
}

// Normalize clamps the limit and defaults the sort mode, and sorts every
// filter list so the canonical key is order-independent.
func (q *Query) Normalize() {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	sort.Strings(q.SportsKeywords)
	sort.Strings(q.SourceDomains)
	sort.Strings(q.ContentTypes)
}

// canonicalForm is the JSON-stable representation hashed into a cache key.
// Cursor is deliberately included: each page of a paginated query is a
// distinct request and must cache independently, or a later page would
// serve an earlier page's cached items.
type canonicalForm struct {
	Text            string   `json:"text"`
	SportsKeywords  []string `json:"sports_keywords"`
	SourceDomains   []string `json:"source_domains"`
	ContentTypes    []string `json:"content_types"`
	MinQualityScore float64  `json:"min_quality_score"`
	PublishedAfter  *time.Time `json:"published_after,omitempty"`
	PublishedBefore *time.Time `json:"published_before,omitempty"`
	Sort            SortMode `json:"sort"`
	Limit           int      `json:"limit"`
	Cursor          string   `json:"cursor"`
}

// CanonicalKey produces the stable cache-key string for q: sort all list
// fields (Normalize does this) and serialize to JSON.
func (q Query) CanonicalKey() (string, error) {
	form := canonicalForm{
		Text:            strings.ToLower(strings.TrimSpace(q.Text)),
		SportsKeywords:  q.SportsKeywords,
		SourceDomains:   q.SourceDomains,
		ContentTypes:    q.ContentTypes,
		MinQualityScore: q.MinQualityScore,
		PublishedAfter:  q.PublishedAfter,
		PublishedBefore: q.PublishedBefore,
		Sort:            q.Sort,
		Limit:           q.Limit,
		Cursor:          q.Cursor,
	}
	raw, err := json.Marshal(form)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ErrCursorSortMismatch is returned when a cursor was minted under a
// different sort mode than the query that presents it.
var ErrCursorSortMismatch = errors.New("searchengine: cursor sort mode mismatch")
