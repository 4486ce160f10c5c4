package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sportsfeed/internal/persistence"
	"sportsfeed/internal/registry"
	"sportsfeed/internal/searchengine"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the accepted corpus (spec §4.16)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("q")
		keywords, _ := cmd.Flags().GetString("keywords")
		domains, _ := cmd.Flags().GetString("domains")
		types, _ := cmd.Flags().GetString("types")
		minQuality, _ := cmd.Flags().GetFloat64("min-quality")
		sortMode, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		cursor, _ := cmd.Flags().GetString("cursor")
		return runSearch(cmd.Context(), text, keywords, domains, types, minQuality, sortMode, limit, cursor)
	},
}

func init() {
	searchCmd.Flags().String("q", "", "full-text query")
	searchCmd.Flags().String("keywords", "", "comma-separated sports-keyword filter")
	searchCmd.Flags().String("domains", "", "comma-separated source-domain filter")
	searchCmd.Flags().String("types", "", "comma-separated content-type filter")
	searchCmd.Flags().Float64("min-quality", 0, "minimum quality score")
	searchCmd.Flags().String("sort", "relevance", "one of relevance|date|quality|popularity")
	searchCmd.Flags().Int("limit", 20, "page size (1-100)")
	searchCmd.Flags().String("cursor", "", "opaque pagination cursor from a prior response")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runSearch(ctx context.Context, text, keywords, domains, types string, minQuality float64, sortMode string, limit int, cursor string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := persistence.NewPostgresStore(cfg.Database.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to content store: %w", err)
	}
	defer store.Close()

	var cache searchengine.ResultCache
	if cfg.Search.CacheEnabled {
		reg, err := registry.New(filepath.Clean(cfg.Database.RegistryPath))
		if err != nil {
			return fmt.Errorf("open search cache: %w", err)
		}
		defer reg.Close()
		cache = reg
	}

	engine := searchengine.New(store, cache, cfg.Search.CacheTTL)

	q := searchengine.Query{
		Text:            text,
		SportsKeywords:  splitCSV(keywords),
		SourceDomains:   splitCSV(domains),
		ContentTypes:    splitCSV(types),
		MinQualityScore: minQuality,
		Sort:            searchengine.SortMode(sortMode),
		Limit:           limit,
		Cursor:          cursor,
	}

	resp, err := engine.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
