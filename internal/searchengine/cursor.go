package searchengine

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// cursorPayload is the base64-JSON opaque cursor: the sort mode it was
// minted under plus the last row's sort tuple, per spec §4.16 step 4.
type cursorPayload struct {
	SortMode SortMode `json:"sort_mode"`
	SortKey  string   `json:"sort_key"`
	ID       string   `json:"id"`
	// Rank carries the relevance rank of the last row on the page; unused
	// outside SortRelevance, where the ORDER BY and keyset WHERE clause
	// need a third tuple element alongside published_at and id.
	Rank int `json:"rank,omitempty"`
}

// encodeCursor packs the last row of a page into an opaque cursor string.
func encodeCursor(mode SortMode, rank int, sortKey, id string) string {
	payload := cursorPayload{SortMode: mode, SortKey: sortKey, ID: id, Rank: rank}
	raw, _ := json.Marshal(payload)
	return base64.URLEncoding.EncodeToString(raw)
}

// decodeCursor unpacks an opaque cursor and verifies it was minted under
// the query's current sort mode; a mismatched or malformed cursor is
// rejected rather than silently ignored, per the Open Question decision
// recorded for this search engine.
func decodeCursor(cursor string, mode SortMode) (*cursorPayload, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if payload.SortMode != mode {
		return nil, ErrCursorSortMismatch
	}
	return &payload, nil
}
