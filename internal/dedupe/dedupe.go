// Package dedupe implements a MinHash-LSH near-duplicate index keyed by
// content hash, per spec §4.3.
package dedupe

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"sportsfeed/internal/hashing"
	"sportsfeed/internal/logger"
)

// DefaultThreshold is the default Jaccard similarity threshold above
// which two items are treated as near-duplicates.
const DefaultThreshold = 0.8

const (
	numBands   = 16
	bandRows   = hashing.NumPermutations / numBands
)

// Index is a MinHash-LSH near-duplicate index. It is safe for concurrent
// use; the spec's concurrency model treats it as per-worker state
// accessed only from that worker's tasks, but the internal lock keeps it
// correct regardless.
type Index struct {
	mu        sync.Mutex
	threshold float64
	maxEntries int

	// entries maps content hash -> MinHash signature, bounded by an LRU
	// so that evict_oldest(max_entries) is backed by a real library
	// rather than a hand-rolled ring.
	entries *lru.Cache[string, hashing.Signature]
	// buckets maps band key -> content hashes sharing that band.
	buckets map[string][]string

	errorCount int
}

// New creates an Index with the given Jaccard threshold and capacity. A
// threshold <= 0 uses DefaultThreshold.
func New(threshold float64, maxEntries int) *Index {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if maxEntries <= 0 {
		maxEntries = 100_000
	}

	idx := &Index{
		threshold:  threshold,
		maxEntries: maxEntries,
		buckets:    make(map[string][]string),
	}

	cache, err := lru.NewWithEvict(maxEntries, func(hash string, _ hashing.Signature) {
		idx.removeFromBuckets(hash)
	})
	if err != nil {
		// Only returns an error for non-positive size, which is already
		// normalised above; this path is unreachable in practice.
		panic(fmt.Sprintf("dedupe: failed to construct lru cache: %v", err))
	}
	idx.entries = cache
	return idx
}

func bandKeys(sig hashing.Signature) []string {
	keys := make([]string, numBands)
	for b := 0; b < numBands; b++ {
		start := b * bandRows
		keys[b] = fmt.Sprintf("%d:%x", b, sig[start:start+bandRows])
	}
	return keys
}

func (idx *Index) removeFromBuckets(hash string) {
	for key, hashes := range idx.buckets {
		filtered := hashes[:0]
		for _, h := range hashes {
			if h != hash {
				filtered = append(filtered, h)
			}
		}
		if len(filtered) == 0 {
			delete(idx.buckets, key)
		} else {
			idx.buckets[key] = filtered
		}
	}
}

// Add computes a MinHash signature over the shingles of text (title is
// not part of the signature), queries the LSH for a matching entry above
// the configured threshold, and either returns false without inserting
// or inserts the new entry and returns true. No duplicate relation is
// stored on a match. On internal error it fails open (returns true, as
// not-a-duplicate) and increments an error counter.
func (idx *Index) Add(contentHash, title, text string) (isUnique bool) {
	defer func() {
		if r := recover(); r != nil {
			idx.mu.Lock()
			idx.errorCount++
			idx.mu.Unlock()
			logger.Error("dedupe: internal error, failing open", fmt.Errorf("%v", r), "content_hash", contentHash)
			isUnique = true
		}
	}()

	shingles := hashing.Shingles(hashing.Normalize(text), hashing.DefaultShingleSize)
	sig := hashing.MinHash(shingles)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if match := idx.findLocked(sig); match != "" {
		return false
	}

	idx.entries.Add(contentHash, sig)
	for _, key := range bandKeys(sig) {
		idx.buckets[key] = append(idx.buckets[key], contentHash)
	}
	return true
}

// Find queries the index for near-duplicates of text without inserting;
// as in Add, title is not part of the signature.
func (idx *Index) Find(title, text string) []string {
	shingles := hashing.Shingles(hashing.Normalize(text), hashing.DefaultShingleSize)
	sig := hashing.MinHash(shingles)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	var matches []string
	seen := make(map[string]bool)
	for _, key := range bandKeys(sig) {
		for _, hash := range idx.buckets[key] {
			if seen[hash] {
				continue
			}
			seen[hash] = true
			if candidate, ok := idx.entries.Peek(hash); ok {
				if hashing.JaccardEstimate(sig, candidate) >= idx.threshold {
					matches = append(matches, hash)
				}
			}
		}
	}
	return matches
}

func (idx *Index) findLocked(sig hashing.Signature) string {
	seen := make(map[string]bool)
	for _, key := range bandKeys(sig) {
		for _, hash := range idx.buckets[key] {
			if seen[hash] {
				continue
			}
			seen[hash] = true
			if candidate, ok := idx.entries.Peek(hash); ok {
				if hashing.JaccardEstimate(sig, candidate) >= idx.threshold {
					return hash
				}
			}
		}
	}
	return ""
}

// EvictOldest bounds memory use: when the set exceeds maxEntries, the LRU
// backing the index already evicts least-recently-used entries as new
// ones are added. EvictOldest forces eviction down to maxEntries
// immediately (used by the worker's periodic housekeeping).
func (idx *Index) EvictOldest(maxEntries int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for idx.entries.Len() > maxEntries {
		idx.entries.RemoveOldest()
	}
}

// Len returns the number of live entries.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.entries.Len()
}

// ErrorCount returns the number of internal errors that were failed open.
func (idx *Index) ErrorCount() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.errorCount
}
