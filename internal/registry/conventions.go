package registry

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// HeartbeatTTL is the TTL on a worker's published heartbeat row.
const HeartbeatTTL = 300 * time.Second

// FeatureFlagTTL is the TTL on a cached feature-flag value.
const FeatureFlagTTL = 24 * time.Hour

// Heartbeat is the payload published by a running worker every 30s.
type Heartbeat struct {
	WorkerID        string    `json:"worker_id"`
	State           string    `json:"state"`
	ItemsProcessed  int64     `json:"items_processed"`
	ItemsSuccessful int64     `json:"items_successful"`
	ItemsFailed     int64     `json:"items_failed"`
	AvgFetchMillis  float64   `json:"avg_fetch_millis"`
	AvgExtractMillis float64  `json:"avg_extract_millis"`
	LastHeartbeat   time.Time `json:"last_heartbeat"`
}

func workerKey(id string) string { return "worker:" + id }

// PutHeartbeat publishes a worker's heartbeat with the fixed 300s TTL.
func (r *Registry) PutHeartbeat(ctx context.Context, hb Heartbeat) error {
	payload, err := json.Marshal(hb)
	if err != nil {
		return fmt.Errorf("marshal heartbeat: %w", err)
	}
	return r.Set(ctx, workerKey(hb.WorkerID), payload, HeartbeatTTL)
}

// GetHeartbeat reads a worker's last published heartbeat, if still live.
func (r *Registry) GetHeartbeat(ctx context.Context, workerID string) (*Heartbeat, bool, error) {
	raw, ok, err := r.Get(ctx, workerKey(workerID))
	if err != nil || !ok {
		return nil, ok, err
	}
	var hb Heartbeat
	if err := json.Unmarshal(raw, &hb); err != nil {
		return nil, false, fmt.Errorf("unmarshal heartbeat: %w", err)
	}
	return &hb, true, nil
}

// ListWorkers returns the IDs of every worker with a live heartbeat.
func (r *Registry) ListWorkers(ctx context.Context) ([]string, error) {
	keys, err := r.Keys(ctx, "worker:")
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k[len("worker:"):]
	}
	return ids, nil
}

func featureFlagKey(name string) string { return "feature_flag:" + name }

// SetFeatureFlag stores a flag's enabled state with the fixed 24h TTL.
func (r *Registry) SetFeatureFlag(ctx context.Context, name string, enabled bool) error {
	value := []byte("false")
	if enabled {
		value = []byte("true")
	}
	return r.Set(ctx, featureFlagKey(name), value, FeatureFlagTTL)
}

// FeatureFlag returns a flag's cached state, defaulting to false if unset
// or expired.
func (r *Registry) FeatureFlag(ctx context.Context, name string) (bool, error) {
	value, ok, err := r.Get(ctx, featureFlagKey(name))
	if err != nil || !ok {
		return false, err
	}
	return string(value) == "true", nil
}

// SearchCacheKey canonicalizes a search query string into the md5-digest
// key the search engine uses to store and retrieve cached result pages.
func SearchCacheKey(canonicalQuery string) string {
	sum := md5.Sum([]byte(canonicalQuery))
	return "search:" + hex.EncodeToString(sum[:])
}

// PutSearchResult caches a serialized search response under its canonical
// query key for ttl.
func (r *Registry) PutSearchResult(ctx context.Context, canonicalQuery string, payload []byte, ttl time.Duration) error {
	return r.Set(ctx, SearchCacheKey(canonicalQuery), payload, ttl)
}

// SearchResult returns a cached serialized search response, if present.
func (r *Registry) SearchResult(ctx context.Context, canonicalQuery string) ([]byte, bool, error) {
	return r.Get(ctx, SearchCacheKey(canonicalQuery))
}
