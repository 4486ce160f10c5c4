// Package persistence defines the persisted-content-store contract of
// spec §6 and a Postgres implementation, following the teacher's
// repository-per-entity pattern.
package persistence

import (
	"context"
	"database/sql"
	"time"

	"sportsfeed/internal/core"
)

// ListOptions paginates and filters ContentItem queries.
type ListOptions struct {
	SourceID   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// SourceRepository persists Source rows.
type SourceRepository interface {
	Create(ctx context.Context, source *core.Source) error
	Get(ctx context.Context, id string) (*core.Source, error)
	GetByDomain(ctx context.Context, domain string) (*core.Source, error)
	ListActive(ctx context.Context) ([]core.Source, error)
	Update(ctx context.Context, source *core.Source) error
	Deactivate(ctx context.Context, id string) error
}

// ContentItemRepository persists ContentItem rows. Upsert implements
// the atomic "insert or refresh score" behaviour of spec §6/§7: on a
// canonical_url conflict the existing row is kept but updated_at and
// quality_score are refreshed.
type ContentItemRepository interface {
	Upsert(ctx context.Context, item *core.ContentItem) error
	Get(ctx context.Context, id string) (*core.ContentItem, error)
	GetByCanonicalURL(ctx context.Context, canonicalURL string) (*core.ContentItem, error)
	GetByContentHash(ctx context.Context, contentHash string) (*core.ContentItem, error)
	List(ctx context.Context, opts ListOptions) ([]core.ContentItem, error)
	UpdateScore(ctx context.Context, id string, score float64) error
	SetFlags(ctx context.Context, id string, active, duplicate, spam bool) error
	Delete(ctx context.Context, id string) error
}

// QualitySignalRepository persists the append-only QualitySignal log.
type QualitySignalRepository interface {
	Create(ctx context.Context, signal *core.QualitySignal) error
	ListByContentItem(ctx context.Context, contentItemID string) ([]core.QualitySignal, error)
}

// IngestionJobRepository persists IngestionJob rows. Status transitions
// never regress; callers are expected to enforce that, but the
// implementation additionally guards it at the SQL layer.
type IngestionJobRepository interface {
	Create(ctx context.Context, job *core.IngestionJob) error
	UpdateStatus(ctx context.Context, id string, status core.JobStatus, counters JobCounters) error
	Get(ctx context.Context, id string) (*core.IngestionJob, error)
}

// JobCounters is the mutable counter set on an IngestionJob.
type JobCounters struct {
	Discovered int
	Processed  int
	Successful int
	Failed     int
}

// TrendingTermRepository persists TrendingTerm rows, re-derived
// periodically from content counts per spec §5.
type TrendingTermRepository interface {
	Upsert(ctx context.Context, term *core.TrendingTerm) error
	GetByNormalisedTerm(ctx context.Context, normalised string) (*core.TrendingTerm, error)
	ListTrending(ctx context.Context, limit int) ([]core.TrendingTerm, error)
}

// RawQuerier is the "compatible raw-query channel" spec §6 requires for
// the search engine's count and pagination queries: a thin escape hatch
// over the repository abstractions for hand-built SQL.
type RawQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the full persisted-content-store contract of spec §6.
type Store interface {
	Sources() SourceRepository
	ContentItems() ContentItemRepository
	QualitySignals() QualitySignalRepository
	IngestionJobs() IngestionJobRepository
	TrendingTerms() TrendingTermRepository
	Raw() RawQuerier
	Close() error
}

// ErrNotFound is returned by Get-style methods when no row matches.
var ErrNotFound = sql.ErrNoRows

// Now is overridable for deterministic tests of the updated_at stamps
// written by the Update, Deactivate, UpdateScore and SetFlags methods and
// the completed_at stamp of UpdateStatus. ContentItem Upsert writes the
// item's own UpdatedAt instead.
var Now = func() time.Time { return time.Now().UTC() }
