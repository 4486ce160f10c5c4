package discovery

import (
	"context"

	"sportsfeed/internal/core"
	"sportsfeed/internal/logger"
)

// DiscoverAll runs every discovery method configured on source (feed,
// sitemap, search queries), unions the results, deduplicates preserving
// first-seen order, and caps the result to maxURLs, per spec §4.9.
func (e *Engine) DiscoverAll(ctx context.Context, source *core.Source, provider SearchProvider, maxURLs int) []string {
	var all []string

	if source.RSSURL != "" {
		urls, err := e.DiscoverFeed(ctx, source)
		if err != nil {
			logger.Warn("discovery: feed discovery failed", "source", source.Domain, "error", err.Error())
		}
		all = append(all, urls...)
	}

	if source.SitemapURL != "" {
		urls, err := e.DiscoverSitemap(ctx, source.SitemapURL)
		if err != nil {
			logger.Warn("discovery: sitemap discovery failed", "source", source.Domain, "error", err.Error())
		}
		all = append(all, urls...)
	}

	if provider != nil {
		for _, query := range source.SearchQueries {
			urls, err := e.DiscoverSearch(ctx, provider, query, maxURLs)
			if err != nil {
				logger.Warn("discovery: search discovery failed", "source", source.Domain, "query", query, "error", err.Error())
				continue
			}
			all = append(all, urls...)
		}
	}

	deduped := Deduplicate(all)
	if maxURLs > 0 && len(deduped) > maxURLs {
		deduped = deduped[:maxURLs]
	}
	return deduped
}
