package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sportsfeed/internal/config"
	"sportsfeed/internal/crawler"
	"sportsfeed/internal/dedupe"
	"sportsfeed/internal/fetcher"
	"sportsfeed/internal/logger"
	"sportsfeed/internal/persistence"
	"sportsfeed/internal/proxy"
	"sportsfeed/internal/quality"
	"sportsfeed/internal/ratelimit"
	"sportsfeed/internal/registry"
	"sportsfeed/internal/reputation"
	"sportsfeed/internal/robots"
	"sportsfeed/internal/trending"
	"sportsfeed/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingestion-quality-search worker loop",
	Long: `Run the continuous crawl -> extract -> dedupe -> score -> persist
worker described in spec §4.17: it discovers URLs for every active
source, fans them out under the configured concurrency limits, feeds
accepted content into the trending detector, and publishes a heartbeat
to the worker registry every 30 seconds.

SIGINT/SIGTERM trigger a graceful drain: in-flight batches finish, the
heartbeat and trending background tasks stop, and resources are
released before the process exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := persistence.NewPostgresStore(cfg.Database.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to content store: %w", err)
	}
	defer store.Close()

	reg, err := registry.New(filepath.Clean(cfg.Database.RegistryPath))
	if err != nil {
		return fmt.Errorf("open worker registry: %w", err)
	}
	defer reg.Close()

	w, err := buildWorker(cfg, store, reg)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		logger.Info("serve: shutdown signal received, draining", "signal", sig.String())
		cancel()
	}()

	return w.Run(runCtx)
}

// buildWorker assembles a Worker from cfg, wiring every per-worker
// instance spec §9 requires be owned by a single worker: the robots
// cache, rate limiter, proxy manager, near-duplicate index, and stats.
// No concrete discovery.SearchProvider ships with the core (spec §4.9);
// callers that have a search-API adapter pass it in by editing this
// wiring point.
func buildWorker(cfg *config.Config, store persistence.Store, reg *registry.Registry) (*worker.Worker, error) {
	fetchCfg := fetcher.Config{
		MaxRetries:     cfg.Crawl.MaxRetries,
		RetryDelay:     cfg.Crawl.RetryDelay,
		Timeout:        cfg.Crawl.Timeout,
		MaxContentSize: cfg.Crawl.MaxContentSize,
		MaxRedirects:   cfg.Crawl.MaxRedirects,
	}

	robotsClient := &http.Client{Timeout: 5 * time.Second}
	robotsChecker := robots.New(robotsClient, cfg.Crawl.UserAgent)
	limiter := ratelimit.New(cfg.Crawl.DefaultDelay)

	endpoints := make([]proxy.Endpoint, 0, len(cfg.Proxy.Endpoints))
	for _, e := range cfg.Proxy.Endpoints {
		endpoints = append(endpoints, proxy.Endpoint{
			Host:     e.Host,
			Port:     e.Port,
			Username: e.Username,
			Password: e.Password,
		})
	}
	proxies := proxy.NewManager(endpoints, cfg.Proxy.DailyBudget, cfg.Proxy.CostPerGB)

	crawl := crawler.New(fetchCfg, robotsChecker, limiter, proxies)

	dedupeIndex := dedupe.New(0.8, 100000)

	gateMode := quality.ModeEnforce
	if cfg.Quality.ShadowMode {
		gateMode = quality.ModeShadow
	}
	gate := quality.NewGate(gateMode, cfg.Quality.MinScore)

	scorer := quality.NewScorer(quality.Thresholds{
		MinScore:         cfg.Quality.MinScore,
		DefaultThreshold: cfg.Quality.DefaultThreshold,
		PremiumThreshold: cfg.Quality.PremiumThreshold,
	})

	repMgr := reputation.NewManager(reputation.Bounds{
		Min: cfg.Quality.MinReputation,
		Max: cfg.Quality.MaxReputation,
	})

	trendDetector := trending.New(trending.Config{
		MinBurstRatio:  cfg.Trending.MinBurstRatio,
		MinTrendScore:  cfg.Trending.MinTrendScore,
		MinOccurrences: cfg.Trending.MinOccurrences,
		CooldownHours:  cfg.Trending.CooldownHours,
	})

	workerID := cfg.App.WorkerID
	if workerID == "" {
		workerID = workerIDFromEnv()
	}

	workerCfg := worker.Config{
		ID:                    workerID,
		BatchSize:             cfg.Crawl.BatchSize,
		MaxConcurrentRequests: cfg.Crawl.MaxConcurrentRequests,
		CycleDelay:            time.Duration(cfg.Crawl.CycleDelaySeconds) * time.Second,
		MaxURLsPerCycle:       cfg.Crawl.MaxURLsPerCycle,
		MaxTerms:              cfg.Trending.MaxTerms,
	}

	return worker.New(
		workerCfg,
		store,
		crawl,
		dedupeIndex,
		gate,
		scorer,
		repMgr,
		trendDetector,
		reg,
		worker.DefaultLexicon(),
		worker.DefaultKeywordTiers(),
		nil, // discovery.SearchProvider: bring your own adapter
	), nil
}

// workerIDFromEnv honors the WORKER_ID environment variable of spec §6,
// falling back to a fresh uuid so unattended deployments without a
// pinned id still get a stable-for-the-process registry key.
func workerIDFromEnv() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
