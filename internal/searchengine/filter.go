package searchengine

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// baseFilter and buildFilter return the same WHERE fragments; baseFilter
// is used standalone for the COUNT(*) query and buildFilter for the
// paginated row query, each starting its own $1.. placeholder numbering
// since they execute as independent statements.
func baseFilter(q Query) []string {
	clauses, _ := filterClauses(q, 1)
	return clauses
}

func countArgs(q Query) []any {
	_, args := filterClauses(q, 1)
	return args
}

func buildFilter(q Query) ([]string, []any) {
	return filterClauses(q, 1)
}

func filterClauses(q Query, startIdx int) ([]string, []any) {
	clauses := []string{"is_active = true"}
	var args []any
	idx := startIdx

	next := func(v any) string {
		args = append(args, v)
		placeholder := fmt.Sprintf("$%d", idx)
		idx++
		return placeholder
	}

	if text := strings.TrimSpace(q.Text); text != "" {
		p := next("%" + text + "%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE %s OR text ILIKE %s OR summary ILIKE %s)", p, p, p))
	}
	if len(q.SportsKeywords) > 0 {
		p := next(pq.Array(q.SportsKeywords))
		clauses = append(clauses, fmt.Sprintf("sports_keywords ?| %s", p))
	}
	if len(q.SourceDomains) > 0 {
		p := next(pq.Array(q.SourceDomains))
		clauses = append(clauses, fmt.Sprintf("source_id IN (SELECT id FROM sources WHERE domain = ANY(%s))", p))
	}
	if len(q.ContentTypes) > 0 {
		p := next(pq.Array(q.ContentTypes))
		clauses = append(clauses, fmt.Sprintf("content_type = ANY(%s)", p))
	}
	if q.MinQualityScore > 0 {
		p := next(q.MinQualityScore)
		clauses = append(clauses, fmt.Sprintf("quality_score >= %s", p))
	}
	if q.PublishedAfter != nil {
		p := next(*q.PublishedAfter)
		clauses = append(clauses, fmt.Sprintf("published_at >= %s", p))
	}
	if q.PublishedBefore != nil {
		p := next(*q.PublishedBefore)
		clauses = append(clauses, fmt.Sprintf("published_at <= %s", p))
	}
	return clauses, args
}

// buildOrder returns the ORDER BY expression for q.Sort and, if a decoded
// cursor is present, the keyset-pagination WHERE clause that continues
// past it. args is appended to with any cursor-comparison bind value.
func buildOrder(q Query, cursor *cursorPayload, args *[]any) (orderBy string, cursorClause string) {
	if q.Sort == SortRelevance {
		return buildRelevanceOrder(q, cursor, args)
	}

	var column string
	switch q.Sort {
	case SortDate:
		column = "published_at"
	case SortQuality:
		column = "quality_score"
	case SortPopularity:
		column = "word_count"
	default:
		column = "quality_score"
	}

	orderBy = fmt.Sprintf("%s DESC, id DESC", column)

	if cursor == nil {
		return orderBy, ""
	}

	idx := len(*args) + 1
	*args = append(*args, cursor.SortKey, cursor.ID)
	cursorClause = fmt.Sprintf("(%s, id) < ($%d, $%d)", column, idx, idx+1)
	return orderBy, cursorClause
}

// buildRelevanceOrder orders by the rank rankOf computes (title match,
// then summary match, then neither), tie-broken by published_at, per
// spec §4.16 step 3. Relevance is Query.Normalize's default sort mode, so
// this must not fall back to the generic quality_score ordering.
func buildRelevanceOrder(q Query, cursor *cursorPayload, args *[]any) (orderBy string, cursorClause string) {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	rankExpr := "0"
	if text != "" {
		patternIdx := len(*args) + 1
		*args = append(*args, "%"+text+"%")
		rankExpr = fmt.Sprintf(
			"(CASE WHEN title ILIKE $%d THEN 3 WHEN summary ILIKE $%d THEN 2 ELSE 1 END)", patternIdx, patternIdx)
	}

	orderBy = fmt.Sprintf("%s DESC, published_at DESC, id DESC", rankExpr)

	if cursor == nil {
		return orderBy, ""
	}

	tupleIdx := len(*args) + 1
	*args = append(*args, cursor.Rank, cursor.SortKey, cursor.ID)
	cursorClause = fmt.Sprintf("(%s, published_at, id) < ($%d, $%d, $%d)", rankExpr, tupleIdx, tupleIdx+1, tupleIdx+2)
	return orderBy, cursorClause
}
