package searchengine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sportsfeed/internal/core"
	"sportsfeed/internal/persistence"
)

// ResultCache is the subset of the registry the engine needs to cache
// responses; satisfied by *registry.Registry.
type ResultCache interface {
	SearchResult(ctx context.Context, canonicalQuery string) ([]byte, bool, error)
	PutSearchResult(ctx context.Context, canonicalQuery string, payload []byte, ttl time.Duration) error
}

// Engine executes Query values against a persistence.Store, with an
// optional result cache in front of it.
type Engine struct {
	store    persistence.Store
	cache    ResultCache
	cacheTTL time.Duration
}

// New builds an Engine. cache may be nil to disable result caching.
func New(store persistence.Store, cache ResultCache, cacheTTL time.Duration) *Engine {
	return &Engine{store: store, cache: cache, cacheTTL: cacheTTL}
}

// Item is one ranked search hit.
type Item struct {
	core.ContentItem
	Rank int `json:"rank"`
}

// Response is the engine's full answer to a Query.
type Response struct {
	Items        []Item `json:"items"`
	TotalCount   int    `json:"total_count"`
	HasMore      bool   `json:"has_more"`
	NextCursor   string `json:"next_cursor"`
	SearchTimeMs int64  `json:"search_time_ms"`
	Engine       string `json:"engine"`
	FromCache    bool   `json:"from_cache"`
}

const engineName = "sportsfeed-searchengine-v1"

// Search executes q, consulting the result cache first. Cache errors
// degrade to a miss rather than failing the request; backend errors
// propagate.
func (e *Engine) Search(ctx context.Context, q Query) (*Response, error) {
	q.Normalize()

	if _, err := decodeCursor(q.Cursor, q.Sort); err != nil {
		return nil, err
	}

	if e.cache != nil {
		if key, err := q.CanonicalKey(); err == nil {
			if raw, ok, cacheErr := e.cache.SearchResult(ctx, key); cacheErr == nil && ok {
				var resp Response
				if json.Unmarshal(raw, &resp) == nil {
					resp.FromCache = true
					return &resp, nil
				}
			}
		}
	}

	start := time.Now()
	resp, err := e.execute(ctx, q)
	if err != nil {
		return nil, err
	}
	resp.SearchTimeMs = time.Since(start).Milliseconds()
	resp.Engine = engineName

	if e.cache != nil && resp.SearchTimeMs > 100 {
		if key, err := q.CanonicalKey(); err == nil {
			if raw, err := json.Marshal(resp); err == nil {
				_ = e.cache.PutSearchResult(ctx, key, raw, e.cacheTTL)
			}
		}
	}
	return resp, nil
}

func (e *Engine) execute(ctx context.Context, q Query) (*Response, error) {
	where, args := buildFilter(q)

	cursorPayload, err := decodeCursor(q.Cursor, q.Sort)
	if err != nil {
		return nil, err
	}

	orderBy, cursorClause := buildOrder(q, cursorPayload, &args)
	if cursorClause != "" {
		where = append(where, cursorClause)
	}

	whereSQL := "1=1"
	if len(where) > 0 {
		whereSQL = strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM content_items WHERE %s`, strings.Join(baseFilter(q), " AND "))
	var total int
	if err := e.store.Raw().QueryRowContext(ctx, countQuery, countArgs(q)...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}

	limitArg := len(args) + 1
	query := fmt.Sprintf(`
		SELECT id, source_id, url, canonical_url, content_hash, title, text, byline, summary,
		       published_at, language, word_count, image_url, sports_keywords, entities, content_type,
		       extraction_status, extraction_errors, quality_score, is_active, is_duplicate, is_spam,
		       created_at, updated_at
		FROM content_items WHERE %s ORDER BY %s LIMIT $%d`, whereSQL, orderBy, limitArg)
	args = append(args, q.Limit+1)

	rows, err := e.store.Raw().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		c, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{ContentItem: *c, Rank: rankOf(q, c)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > q.Limit
	if hasMore {
		items = items[:q.Limit]
	}

	resp := &Response{Items: items, TotalCount: total, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		resp.NextCursor = encodeCursor(q.Sort, last.Rank, sortKeyOf(q.Sort, last.ContentItem), last.ID)
	}
	return resp, nil
}

// rankOf implements the relevance formula of spec §4.16 step 3.
func rankOf(q Query, c *core.ContentItem) int {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(c.Title), text) {
		return 3
	}
	if strings.Contains(strings.ToLower(c.Summary), text) {
		return 2
	}
	return 1
}

func sortKeyOf(mode SortMode, c core.ContentItem) string {
	switch mode {
	case SortDate, SortRelevance:
		if c.PublishedAt != nil {
			return c.PublishedAt.Format(time.RFC3339)
		}
		return ""
	case SortQuality:
		return fmt.Sprintf("%020.10f", c.QualityScore)
	case SortPopularity:
		return fmt.Sprintf("%020d", c.WordCount)
	default:
		return fmt.Sprintf("%020.10f", c.QualityScore)
	}
}

func scanContentItem(rows *sql.Rows) (*core.ContentItem, error) {
	var c core.ContentItem
	var keywords, entities, errs []byte
	if err := rows.Scan(
		&c.ID, &c.SourceID, &c.URL, &c.CanonicalURL, &c.ContentHash, &c.Title, &c.Text, &c.Byline, &c.Summary,
		&c.PublishedAt, &c.Language, &c.WordCount, &c.ImageURL, &keywords, &entities, &c.ContentType,
		&c.ExtractionStatus, &errs, &c.QualityScore, &c.IsActive, &c.IsDuplicate, &c.IsSpam,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(keywords) > 0 {
		_ = json.Unmarshal(keywords, &c.SportsKeywords)
	}
	if len(entities) > 0 {
		_ = json.Unmarshal(entities, &c.Entities)
	}
	if len(errs) > 0 {
		_ = json.Unmarshal(errs, &c.ExtractionErrors)
	}
	return &c, nil
}

// Suggest returns up to limit distinct sports-keyword values matching
// prefix (>= 2 chars), ranked by recent frequency.
func (e *Engine) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if len(prefix) < 2 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT keyword, COUNT(*) AS freq FROM (
			SELECT jsonb_array_elements_text(sports_keywords) AS keyword, created_at
			FROM content_items
			WHERE created_at > $1
		) k
		WHERE keyword ILIKE $2
		GROUP BY keyword
		ORDER BY freq DESC
		LIMIT $3`
	rows, err := e.store.Raw().QueryContext(ctx, query, time.Now().UTC().AddDate(0, 0, -30), prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("suggest query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var keyword string
		var freq int
		if err := rows.Scan(&keyword, &freq); err != nil {
			return nil, err
		}
		out = append(out, keyword)
	}
	return out, rows.Err()
}
