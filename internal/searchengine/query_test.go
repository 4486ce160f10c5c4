package searchengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryNormalizeClampsLimitAndSortsFilters(t *testing.T) {
	q := Query{
		Limit:          500,
		SportsKeywords: []string{"nfl", "celtics"},
		SourceDomains:  []string{"z.com", "a.com"},
	}
	q.Normalize()

	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, SortRelevance, q.Sort)
	assert.Equal(t, []string{"celtics", "nfl"}, q.SportsKeywords)
	assert.Equal(t, []string{"a.com", "z.com"}, q.SourceDomains)
}

func TestCanonicalKeyIgnoresFilterOrder(t *testing.T) {
	a := Query{Text: "Lakers", SportsKeywords: []string{"nba", "lakers"}, Sort: SortDate, Limit: 10}
	b := Query{Text: "lakers", SportsKeywords: []string{"lakers", "nba"}, Sort: SortDate, Limit: 10}
	a.Normalize()
	b.Normalize()

	keyA, err := a.CanonicalKey()
	require.NoError(t, err)
	keyB, err := b.CanonicalKey()
	require.NoError(t, err)
	assert.Equal(t, keyA, keyB)
}

func TestCanonicalKeyDiffersOnCursor(t *testing.T) {
	base := Query{Text: "lakers", Sort: SortDate, Limit: 10}
	base.Normalize()
	withCursor := base
	withCursor.Cursor = "abc"

	keyA, _ := base.CanonicalKey()
	keyB, _ := withCursor.CanonicalKey()
	assert.NotEqual(t, keyA, keyB)
}

func TestCursorRoundTrip(t *testing.T) {
	c := encodeCursor(SortDate, 0, time.Now().UTC().Format(time.RFC3339), "item-123")

	payload, err := decodeCursor(c, SortDate)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "item-123", payload.ID)
}

func TestCursorRejectsMismatchedSortMode(t *testing.T) {
	c := encodeCursor(SortDate, 0, "2026-01-01T00:00:00Z", "item-123")

	_, err := decodeCursor(c, SortQuality)
	require.ErrorIs(t, err, ErrCursorSortMismatch)
}

func TestCursorEmptyIsNil(t *testing.T) {
	payload, err := decodeCursor("", SortRelevance)
	require.NoError(t, err)
	assert.Nil(t, payload)
}
