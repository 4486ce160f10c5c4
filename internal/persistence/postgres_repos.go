package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sportsfeed/internal/core"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// --- sources -----------------------------------------------------------

type postgresSourceRepo struct{ db *sql.DB }

func (r *postgresSourceRepo) Create(ctx context.Context, s *core.Source) error {
	queries, err := json.Marshal(s.SearchQueries)
	if err != nil {
		return fmt.Errorf("marshal search queries: %w", err)
	}
	query := `
		INSERT INTO sources (
			id, domain, name, base_url, kind, active, tier, reputation, success_rate,
			rss_url, sitemap_url, search_queries, feed_last_modified, feed_etag,
			last_crawled_root, last_crawled_sitemap, last_crawled_feed, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Domain, s.Name, s.BaseURL, s.Kind, s.Active, s.Tier, s.Reputation, s.SuccessRate,
		s.RSSURL, s.SitemapURL, queries, s.FeedLastModified, s.FeedETag,
		s.LastCrawledRoot, s.LastCrawledSitemap, s.LastCrawledFeed, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *postgresSourceRepo) Get(ctx context.Context, id string) (*core.Source, error) {
	row := r.db.QueryRowContext(ctx, sourceSelect+` WHERE id = $1`, id)
	return scanSource(row)
}

func (r *postgresSourceRepo) GetByDomain(ctx context.Context, domain string) (*core.Source, error) {
	row := r.db.QueryRowContext(ctx, sourceSelect+` WHERE domain = $1`, domain)
	return scanSource(row)
}

func (r *postgresSourceRepo) ListActive(ctx context.Context) ([]core.Source, error) {
	rows, err := r.db.QueryContext(ctx, sourceSelect+` WHERE active = true ORDER BY reputation DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Source
	for rows.Next() {
		s, err := scanSourceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *postgresSourceRepo) Update(ctx context.Context, s *core.Source) error {
	queries, err := json.Marshal(s.SearchQueries)
	if err != nil {
		return fmt.Errorf("marshal search queries: %w", err)
	}
	s.UpdatedAt = Now()
	query := `
		UPDATE sources SET
			name = $2, base_url = $3, kind = $4, active = $5, tier = $6, reputation = $7,
			success_rate = $8, rss_url = $9, sitemap_url = $10, search_queries = $11,
			feed_last_modified = $12, feed_etag = $13, last_crawled_root = $14,
			last_crawled_sitemap = $15, last_crawled_feed = $16, updated_at = $17
		WHERE id = $1
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.BaseURL, s.Kind, s.Active, s.Tier, s.Reputation,
		s.SuccessRate, s.RSSURL, s.SitemapURL, queries,
		s.FeedLastModified, s.FeedETag, s.LastCrawledRoot,
		s.LastCrawledSitemap, s.LastCrawledFeed, s.UpdatedAt,
	)
	return err
}

func (r *postgresSourceRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sources SET active = false, updated_at = $2 WHERE id = $1`, id, Now())
	return err
}

const sourceSelect = `
	SELECT id, domain, name, base_url, kind, active, tier, reputation, success_rate,
	       rss_url, sitemap_url, search_queries, feed_last_modified, feed_etag,
	       last_crawled_root, last_crawled_sitemap, last_crawled_feed, created_at, updated_at
	FROM sources`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*core.Source, error) {
	var s core.Source
	var queries []byte
	if err := row.Scan(
		&s.ID, &s.Domain, &s.Name, &s.BaseURL, &s.Kind, &s.Active, &s.Tier, &s.Reputation, &s.SuccessRate,
		&s.RSSURL, &s.SitemapURL, &queries, &s.FeedLastModified, &s.FeedETag,
		&s.LastCrawledRoot, &s.LastCrawledSitemap, &s.LastCrawledFeed, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(queries) > 0 {
		if err := json.Unmarshal(queries, &s.SearchQueries); err != nil {
			return nil, fmt.Errorf("unmarshal search queries: %w", err)
		}
	}
	return &s, nil
}

func scanSourceRow(rows *sql.Rows) (*core.Source, error) { return scanSource(rows) }

// --- content items -------------------------------------------------------

type postgresContentItemRepo struct{ db *sql.DB }

// Upsert inserts a new ContentItem or, on a canonical_url conflict,
// refreshes updated_at and quality_score while leaving the original
// extraction in place — the atomic behaviour spec §6/§7 require so a
// re-crawl of the same story never spawns a duplicate row.
func (r *postgresContentItemRepo) Upsert(ctx context.Context, c *core.ContentItem) error {
	keywords, err := json.Marshal(c.SportsKeywords)
	if err != nil {
		return fmt.Errorf("marshal sports keywords: %w", err)
	}
	entities, err := json.Marshal(c.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	errs, err := json.Marshal(c.ExtractionErrors)
	if err != nil {
		return fmt.Errorf("marshal extraction errors: %w", err)
	}

	query := `
		INSERT INTO content_items (
			id, source_id, url, canonical_url, content_hash, title, text, byline, summary,
			published_at, language, word_count, image_url, sports_keywords, entities, content_type,
			extraction_status, extraction_errors, quality_score, is_active, is_duplicate, is_spam,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		ON CONFLICT (canonical_url) DO UPDATE SET
			quality_score = EXCLUDED.quality_score,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		c.ID, c.SourceID, c.URL, c.CanonicalURL, c.ContentHash, c.Title, c.Text, c.Byline, c.Summary,
		c.PublishedAt, c.Language, c.WordCount, c.ImageURL, keywords, entities, c.ContentType,
		c.ExtractionStatus, errs, c.QualityScore, c.IsActive, c.IsDuplicate, c.IsSpam,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *postgresContentItemRepo) Get(ctx context.Context, id string) (*core.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, contentItemSelect+` WHERE id = $1`, id)
	return scanContentItem(row)
}

func (r *postgresContentItemRepo) GetByCanonicalURL(ctx context.Context, canonicalURL string) (*core.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, contentItemSelect+` WHERE canonical_url = $1`, canonicalURL)
	return scanContentItem(row)
}

func (r *postgresContentItemRepo) GetByContentHash(ctx context.Context, contentHash string) (*core.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, contentItemSelect+` WHERE content_hash = $1`, contentHash)
	return scanContentItem(row)
}

func (r *postgresContentItemRepo) List(ctx context.Context, opts ListOptions) ([]core.ContentItem, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query := contentItemSelect + ` WHERE ($1 = '' OR source_id = $1) AND (NOT $2 OR is_active)
		ORDER BY published_at DESC NULLS LAST LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, opts.SourceID, opts.ActiveOnly, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.ContentItem
	for rows.Next() {
		c, err := scanContentItemRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *postgresContentItemRepo) UpdateScore(ctx context.Context, id string, score float64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE content_items SET quality_score = $2, updated_at = $3 WHERE id = $1`,
		id, score, Now())
	return err
}

func (r *postgresContentItemRepo) SetFlags(ctx context.Context, id string, active, duplicate, spam bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE content_items SET is_active = $2, is_duplicate = $3, is_spam = $4, updated_at = $5 WHERE id = $1`,
		id, active, duplicate, spam, Now())
	return err
}

func (r *postgresContentItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = $1`, id)
	return err
}

const contentItemSelect = `
	SELECT id, source_id, url, canonical_url, content_hash, title, text, byline, summary,
	       published_at, language, word_count, image_url, sports_keywords, entities, content_type,
	       extraction_status, extraction_errors, quality_score, is_active, is_duplicate, is_spam,
	       created_at, updated_at
	FROM content_items`

func scanContentItem(row rowScanner) (*core.ContentItem, error) {
	var c core.ContentItem
	var keywords, entities, errs []byte
	if err := row.Scan(
		&c.ID, &c.SourceID, &c.URL, &c.CanonicalURL, &c.ContentHash, &c.Title, &c.Text, &c.Byline, &c.Summary,
		&c.PublishedAt, &c.Language, &c.WordCount, &c.ImageURL, &keywords, &entities, &c.ContentType,
		&c.ExtractionStatus, &errs, &c.QualityScore, &c.IsActive, &c.IsDuplicate, &c.IsSpam,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &c.SportsKeywords); err != nil {
			return nil, fmt.Errorf("unmarshal sports keywords: %w", err)
		}
	}
	if len(entities) > 0 {
		if err := json.Unmarshal(entities, &c.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities: %w", err)
		}
	}
	if len(errs) > 0 {
		if err := json.Unmarshal(errs, &c.ExtractionErrors); err != nil {
			return nil, fmt.Errorf("unmarshal extraction errors: %w", err)
		}
	}
	return &c, nil
}

func scanContentItemRow(rows *sql.Rows) (*core.ContentItem, error) { return scanContentItem(rows) }

// --- quality signals -------------------------------------------------------

type postgresQualitySignalRepo struct{ db *sql.DB }

func (r *postgresQualitySignalRepo) Create(ctx context.Context, s *core.QualitySignal) error {
	query := `
		INSERT INTO quality_signals (id, content_item_id, kind, value, weight, algorithm_version, computed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.ContentItemID, s.Kind, s.Value, s.Weight, s.AlgorithmVersion, s.ComputedAt)
	return err
}

func (r *postgresQualitySignalRepo) ListByContentItem(ctx context.Context, contentItemID string) ([]core.QualitySignal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content_item_id, kind, value, weight, algorithm_version, computed_at
		FROM quality_signals WHERE content_item_id = $1 ORDER BY computed_at`, contentItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.QualitySignal
	for rows.Next() {
		var s core.QualitySignal
		if err := rows.Scan(&s.ID, &s.ContentItemID, &s.Kind, &s.Value, &s.Weight, &s.AlgorithmVersion, &s.ComputedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// --- ingestion jobs -------------------------------------------------------

type postgresIngestionJobRepo struct{ db *sql.DB }

func (r *postgresIngestionJobRepo) Create(ctx context.Context, j *core.IngestionJob) error {
	query := `
		INSERT INTO ingestion_jobs (id, source_id, kind, status, discovered, processed, successful, failed, started_at, completed_at, summary)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err := r.db.ExecContext(ctx, query, j.ID, j.SourceID, j.Kind, j.Status,
		j.Discovered, j.Processed, j.Successful, j.Failed, j.StartedAt, j.CompletedAt, j.Summary)
	return err
}

func (r *postgresIngestionJobRepo) UpdateStatus(ctx context.Context, id string, status core.JobStatus, c JobCounters) error {
	var completedAt *time.Time
	if status == core.JobCompleted || status == core.JobFailed {
		now := Now()
		completedAt = &now
	}
	query := `
		UPDATE ingestion_jobs SET
			status = $2, discovered = $3, processed = $4, successful = $5, failed = $6,
			completed_at = COALESCE($7, completed_at)
		WHERE id = $1
		  AND status NOT IN ('completed', 'failed')
		  AND NOT (status = 'running' AND $2 = 'pending')
	`
	_, err := r.db.ExecContext(ctx, query, id, status, c.Discovered, c.Processed, c.Successful, c.Failed, completedAt)
	return err
}

func (r *postgresIngestionJobRepo) Get(ctx context.Context, id string) (*core.IngestionJob, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source_id, kind, status, discovered, processed, successful, failed, started_at, completed_at, summary
		FROM ingestion_jobs WHERE id = $1`, id)

	var j core.IngestionJob
	if err := row.Scan(&j.ID, &j.SourceID, &j.Kind, &j.Status, &j.Discovered, &j.Processed,
		&j.Successful, &j.Failed, &j.StartedAt, &j.CompletedAt, &j.Summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// --- trending terms -------------------------------------------------------

type postgresTrendingTermRepo struct{ db *sql.DB }

func (r *postgresTrendingTermRepo) Upsert(ctx context.Context, t *core.TrendingTerm) error {
	related, err := json.Marshal(t.RelatedTerms)
	if err != nil {
		return fmt.Errorf("marshal related terms: %w", err)
	}
	query := `
		INSERT INTO trending_terms (
			id, term, normalised_term, term_type, count_1h, count_6h, count_24h,
			burst_ratio, trend_score, is_trending, trend_start, trend_peak,
			related_terms, sports_context, last_seen, cooldown_until
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (normalised_term) DO UPDATE SET
			count_1h = EXCLUDED.count_1h, count_6h = EXCLUDED.count_6h, count_24h = EXCLUDED.count_24h,
			burst_ratio = EXCLUDED.burst_ratio, trend_score = EXCLUDED.trend_score,
			is_trending = EXCLUDED.is_trending, trend_start = EXCLUDED.trend_start,
			trend_peak = EXCLUDED.trend_peak, related_terms = EXCLUDED.related_terms,
			sports_context = EXCLUDED.sports_context, last_seen = EXCLUDED.last_seen,
			cooldown_until = EXCLUDED.cooldown_until
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.Term, t.NormalisedTerm, t.TermType, t.Count1h, t.Count6h, t.Count24h,
		t.BurstRatio, t.TrendScore, t.IsTrending, t.TrendStart, t.TrendPeak,
		related, t.SportsContext, t.LastSeen, t.CooldownUntil,
	)
	return err
}

func (r *postgresTrendingTermRepo) GetByNormalisedTerm(ctx context.Context, normalised string) (*core.TrendingTerm, error) {
	row := r.db.QueryRowContext(ctx, trendingTermSelect+` WHERE normalised_term = $1`, normalised)
	return scanTrendingTerm(row)
}

func (r *postgresTrendingTermRepo) ListTrending(ctx context.Context, limit int) ([]core.TrendingTerm, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, trendingTermSelect+` WHERE is_trending = true ORDER BY trend_score DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.TrendingTerm
	for rows.Next() {
		t, err := scanTrendingTermRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

const trendingTermSelect = `
	SELECT id, term, normalised_term, term_type, count_1h, count_6h, count_24h,
	       burst_ratio, trend_score, is_trending, trend_start, trend_peak,
	       related_terms, sports_context, last_seen, cooldown_until
	FROM trending_terms`

func scanTrendingTerm(row rowScanner) (*core.TrendingTerm, error) {
	var t core.TrendingTerm
	var related []byte
	if err := row.Scan(&t.ID, &t.Term, &t.NormalisedTerm, &t.TermType, &t.Count1h, &t.Count6h, &t.Count24h,
		&t.BurstRatio, &t.TrendScore, &t.IsTrending, &t.TrendStart, &t.TrendPeak,
		&related, &t.SportsContext, &t.LastSeen, &t.CooldownUntil); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(related) > 0 {
		if err := json.Unmarshal(related, &t.RelatedTerms); err != nil {
			return nil, fmt.Errorf("unmarshal related terms: %w", err)
		}
	}
	return &t, nil
}

func scanTrendingTermRow(rows *sql.Rows) (*core.TrendingTerm, error) { return scanTrendingTerm(rows) }
