package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sportsfeed/internal/core"
	"sportsfeed/internal/discovery"
	"sportsfeed/internal/persistence"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage discovery sources (spec §3 Source)",
}

func init() {
	sourcesAddCmd.Flags().String("domain", "", "source domain (required)")
	sourcesAddCmd.Flags().String("name", "", "display name (required)")
	sourcesAddCmd.Flags().String("base-url", "", "source base URL (required)")
	sourcesAddCmd.Flags().String("kind", "html", "one of feed|sitemap|html|api")
	sourcesAddCmd.Flags().String("rss-url", "", "feed URL for feed discovery")
	sourcesAddCmd.Flags().String("sitemap-url", "", "sitemap URL for sitemap discovery")
	sourcesAddCmd.Flags().String("search-queries", "", "comma-separated search-API discovery queries")
	_ = sourcesAddCmd.MarkFlagRequired("domain")
	_ = sourcesAddCmd.MarkFlagRequired("name")
	_ = sourcesAddCmd.MarkFlagRequired("base-url")

	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new discovery source",
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, _ := cmd.Flags().GetString("domain")
		name, _ := cmd.Flags().GetString("name")
		baseURL, _ := cmd.Flags().GetString("base-url")
		kind, _ := cmd.Flags().GetString("kind")
		rssURL, _ := cmd.Flags().GetString("rss-url")
		sitemapURL, _ := cmd.Flags().GetString("sitemap-url")
		searchQueries, _ := cmd.Flags().GetString("search-queries")
		return runSourcesAdd(cmd.Context(), domain, name, baseURL, kind, rssURL, sitemapURL, searchQueries)
	},
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSourcesList(cmd.Context())
	},
}

func runSourcesAdd(ctx context.Context, domain, name, baseURL, kind, rssURL, sitemapURL, searchQueries string) error {
	sourceKind := core.SourceKind(strings.ToLower(kind))
	switch sourceKind {
	case core.SourceKindFeed, core.SourceKindSitemap, core.SourceKindHTML, core.SourceKindAPI:
	default:
		return fmt.Errorf("sources add: --kind must be one of feed|sitemap|html|api, got %q", kind)
	}

	if rssURL == "" {
		if found, ok := discovery.New(nil).DiscoverFeedURL(ctx, baseURL); ok {
			rssURL = found
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := persistence.NewPostgresStore(cfg.Database.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to content store: %w", err)
	}
	defer store.Close()

	source := core.NewSource(domain, name, baseURL, sourceKind)
	source.RSSURL = rssURL
	source.SitemapURL = sitemapURL
	if searchQueries != "" {
		for _, q := range strings.Split(searchQueries, ",") {
			if q = strings.TrimSpace(q); q != "" {
				source.SearchQueries = append(source.SearchQueries, q)
			}
		}
	}

	if err := store.Sources().Create(ctx, source); err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	fmt.Printf("created source %s (%s)\n", source.ID, source.Domain)
	return nil
}

func runSourcesList(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := persistence.NewPostgresStore(cfg.Database.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to content store: %w", err)
	}
	defer store.Close()

	sources, err := store.Sources().ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	for _, s := range sources {
		fmt.Printf("%-36s %-10s tier=%d reputation=%.2f %s\n", s.ID, s.Domain, s.Tier, s.Reputation, s.BaseURL)
	}
	return nil
}
