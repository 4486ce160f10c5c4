// Package core holds the domain entities shared across the ingestion,
// quality, trending, and search subsystems.
package core

import (
	"time"

	"github.com/google/uuid"
)

// QualityTier is the reputation-derived tier assigned to a Source.
type QualityTier int

const (
	TierPremium   QualityTier = 1
	TierQuality   QualityTier = 2
	TierDiscovery QualityTier = 3
)

// SourceKind describes how a Source is discovered.
type SourceKind string

const (
	SourceKindFeed    SourceKind = "feed"
	SourceKindSitemap SourceKind = "sitemap"
	SourceKindHTML    SourceKind = "html"
	SourceKindAPI     SourceKind = "api"
)

// Source represents an origin domain that content is discovered from.
type Source struct {
	ID       string     `json:"id"`
	Domain   string     `json:"domain"`
	Name     string     `json:"name"`
	BaseURL  string     `json:"base_url"`
	Kind     SourceKind `json:"kind"`
	Active   bool       `json:"active"`
	Tier     QualityTier `json:"tier"`
	Reputation  float64 `json:"reputation"`
	SuccessRate float64 `json:"success_rate"`

	RSSURL        string `json:"rss_url,omitempty"`
	SitemapURL    string `json:"sitemap_url,omitempty"`
	SearchQueries []string `json:"search_queries,omitempty"`

	// Conditional-GET bookkeeping for feed polling, carried forward from
	// the teacher's feed manager.
	FeedLastModified string `json:"feed_last_modified,omitempty"`
	FeedETag         string `json:"feed_etag,omitempty"`

	LastCrawledRoot    time.Time `json:"last_crawled_root"`
	LastCrawledSitemap time.Time `json:"last_crawled_sitemap"`
	LastCrawledFeed    time.Time `json:"last_crawled_feed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSource creates a Source with a fresh id and default tier/reputation.
func NewSource(domain, name, baseURL string, kind SourceKind) *Source {
	now := time.Now().UTC()
	return &Source{
		ID:          uuid.NewString(),
		Domain:      domain,
		Name:        name,
		BaseURL:     baseURL,
		Kind:        kind,
		Active:      true,
		Tier:        TierDiscovery,
		Reputation:  0.5,
		SuccessRate: 1.0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ExtractionStatus records the outcome of the extractor for a ContentItem.
type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "success"
	ExtractionFailed  ExtractionStatus = "extraction_failed"
	ExtractionNoTitle ExtractionStatus = "no_title"
)

// ContentType is the classification assigned by the extractor's keyword
// table.
type ContentType string

const (
	ContentTypeGameRecap    ContentType = "game_recap"
	ContentTypeBreakingNews ContentType = "breaking_news"
	ContentTypeAnalysis     ContentType = "analysis"
	ContentTypeTrade        ContentType = "trade"
	ContentTypeInjury       ContentType = "injury"
	ContentTypeRoster       ContentType = "roster"
	ContentTypeInterview    ContentType = "interview"
	ContentTypeGeneral      ContentType = "general"
)

// EntityGroup buckets matched entities by kind (team, player, league, event).
type EntityGroup struct {
	Teams   []string `json:"teams,omitempty"`
	Players []string `json:"players,omitempty"`
	Leagues []string `json:"leagues,omitempty"`
	Events  []string `json:"events,omitempty"`
}

// ContentItem is a single extracted article in the corpus.
type ContentItem struct {
	ID           string `json:"id"`
	SourceID     string `json:"source_id"`
	URL          string `json:"url"`
	CanonicalURL string `json:"canonical_url"`
	ContentHash  string `json:"content_hash"`

	Title       string `json:"title"`
	Text        string `json:"text"`
	Byline      string `json:"byline,omitempty"`
	Summary     string `json:"summary,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Language    string `json:"language,omitempty"`
	WordCount   int    `json:"word_count"`
	ImageURL    string `json:"image_url,omitempty"`

	SportsKeywords []string    `json:"sports_keywords,omitempty"`
	Entities       EntityGroup `json:"entities,omitempty"`
	ContentType    ContentType `json:"content_type"`

	ExtractionStatus ExtractionStatus `json:"extraction_status"`
	ExtractionErrors []string         `json:"extraction_errors,omitempty"`

	QualityScore float64 `json:"quality_score"`
	IsActive     bool    `json:"is_active"`
	IsDuplicate  bool    `json:"is_duplicate"`
	IsSpam       bool    `json:"is_spam"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContentItem allocates a ContentItem with a fresh id. The caller fills
// in extraction/scoring fields afterward.
func NewContentItem(sourceID, url string) *ContentItem {
	now := time.Now().UTC()
	return &ContentItem{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		URL:       url,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SignalKind enumerates the closed set of quality signals.
type SignalKind string

const (
	SignalSourceReputation SignalKind = "source_reputation"
	SignalFreshness        SignalKind = "freshness"
	SignalDepth            SignalKind = "content_depth"
	SignalTitleQuality     SignalKind = "title_quality"
	SignalSportsRelevance  SignalKind = "sports_relevance"
	SignalLanguageQuality  SignalKind = "language_quality"
)

// QualitySignal is one scalar signal computed for one ContentItem.
type QualitySignal struct {
	ID              string     `json:"id"`
	ContentItemID   string     `json:"content_item_id"`
	Kind            SignalKind `json:"kind"`
	Value           float64    `json:"value"`
	Weight          float64    `json:"weight"`
	AlgorithmVersion string    `json:"algorithm_version"`
	ComputedAt      time.Time  `json:"computed_at"`
}

// JobStatus is the IngestionJob lifecycle state; it never regresses.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IngestionJob tracks one discovery/crawl batch for a Source.
type IngestionJob struct {
	ID       string     `json:"id"`
	SourceID string     `json:"source_id"`
	Kind     SourceKind `json:"kind"`
	Status   JobStatus  `json:"status"`

	Discovered int `json:"discovered"`
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Summary     string     `json:"summary,omitempty"`
}

// NewIngestionJob creates a pending job for the given source.
func NewIngestionJob(sourceID string, kind SourceKind) *IngestionJob {
	return &IngestionJob{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		Kind:      kind,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
	}
}

// TermType partitions TrendingTerm entries.
type TermType string

const (
	TermTypeGeneric TermType = "generic"
	TermTypeTeam    TermType = "team"
	TermTypePlayer  TermType = "player"
	TermTypeLeague  TermType = "league"
	TermTypeEvent   TermType = "event"
)

// TrendingTerm is a windowed counter for a normalised term.
type TrendingTerm struct {
	ID              string   `json:"id"`
	Term            string   `json:"term"`
	NormalisedTerm  string   `json:"normalised_term"`
	TermType        TermType `json:"term_type"`

	Count1h  int `json:"count_1h"`
	Count6h  int `json:"count_6h"`
	Count24h int `json:"count_24h"`

	BurstRatio float64 `json:"burst_ratio"`
	TrendScore float64 `json:"trend_score"`
	IsTrending bool    `json:"is_trending"`

	TrendStart *time.Time `json:"trend_start,omitempty"`
	TrendPeak  *time.Time `json:"trend_peak,omitempty"`

	RelatedTerms  []string `json:"related_terms,omitempty"`
	SportsContext string   `json:"sports_context,omitempty"`

	LastSeen time.Time `json:"last_seen"`

	// CooldownUntil suppresses further discovery-query emission; zero
	// value means not in cooldown.
	CooldownUntil time.Time `json:"cooldown_until,omitempty"`
}
