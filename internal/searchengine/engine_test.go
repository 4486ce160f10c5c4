package searchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sportsfeed/internal/core"
)

func TestRankOfPrefersTitleMatch(t *testing.T) {
	q := Query{Text: "Lakers"}
	titleHit := &core.ContentItem{Title: "Lakers win again", Summary: "A recap"}
	summaryHit := &core.ContentItem{Title: "Recap of the night", Summary: "The Lakers pulled away"}
	noHit := &core.ContentItem{Title: "Celtics win", Summary: "A recap"}

	assert.Equal(t, 3, rankOf(q, titleHit))
	assert.Equal(t, 2, rankOf(q, summaryHit))
	assert.Equal(t, 1, rankOf(q, noHit))
}

func TestRankOfNoQueryTermIsZero(t *testing.T) {
	q := Query{}
	item := &core.ContentItem{Title: "Lakers win again"}
	assert.Equal(t, 0, rankOf(q, item))
}
