package discovery

import "context"

// SearchProvider adapts a search API keyed by provider name, per spec
// §4.9's "search-API discovery" method. The core ships no concrete
// provider; callers supply one (e.g. backed by a paid search API) that
// satisfies this interface.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// DiscoverSearch runs query against provider and returns the resulting
// URLs.
func (e *Engine) DiscoverSearch(ctx context.Context, provider SearchProvider, query string, maxResults int) ([]string, error) {
	if provider == nil {
		return nil, nil
	}
	return provider.Search(ctx, query, maxResults)
}

// Deduplicate returns urls with duplicates removed, preserving the first
// occurrence of each, per spec §4.9.
func Deduplicate(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
