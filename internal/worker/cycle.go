package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sportsfeed/internal/core"
	"sportsfeed/internal/extractor"
	"sportsfeed/internal/logger"
	"sportsfeed/internal/persistence"
	"sportsfeed/internal/quality"
	"sportsfeed/internal/terms"
)

// runCycle implements one pass of spec §4.17: discover URLs for every
// active source, then fan batches of them out through process(url)
// bounded by max_concurrent_requests.
func (w *Worker) runCycle(ctx context.Context) error {
	sources, err := w.store.Sources().ListActive(ctx)
	if err != nil {
		return err
	}

	var urls []string
	bySource := make(map[string]string)
	for i := range sources {
		src := &sources[i]
		discovered := w.crawler.Discover(ctx, src, w.search, w.cfg.MaxURLsPerCycle)
		for _, u := range discovered {
			if _, seen := bySource[u]; !seen {
				bySource[u] = src.ID
				urls = append(urls, u)
			}
		}
	}
	for _, u := range w.drainTrendingQueries(ctx) {
		if _, seen := bySource[u]; !seen {
			bySource[u] = ""
			urls = append(urls, u)
		}
	}

	if w.cfg.MaxURLsPerCycle > 0 && len(urls) > w.cfg.MaxURLsPerCycle {
		urls = urls[:w.cfg.MaxURLsPerCycle]
	}

	batchSize := w.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(urls)
	}
	if batchSize <= 0 {
		return nil
	}

	outcomes := newSourceOutcomes()

	for start := 0; start < len(urls); start += batchSize {
		end := start + batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[start:end]

		g, gctx := errgroup.WithContext(ctx)
		limit := w.cfg.MaxConcurrentRequests
		if limit <= 0 {
			limit = len(batch)
		}
		if limit > 0 {
			g.SetLimit(limit)
		}

		for _, u := range batch {
			u := u
			sourceID := bySource[u]
			g.Go(func() error {
				w.processURL(gctx, sourceID, u, outcomes)
				return nil
			})
		}
		// process(url) never returns an error to the group: per spec §7
		// no exception escapes process(url), every failure is absorbed
		// into a counter, so g.Wait() returns nil; cancellation is seen
		// through ctx.Err() below.
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if ctx.Err() != nil {
			w.applyReputation(ctx, outcomes)
			return nil
		}
	}

	w.applyReputation(ctx, outcomes)
	return nil
}

// processURL implements the fetch → extract → dedupe → gate → persist
// → term-extraction → trending-update pipeline of spec §4.17 step 3. No
// error or panic escapes this method; every failure increments a counter and is
// logged with stage, elapsed time, and error kind, per spec §7.
func (w *Worker) processURL(ctx context.Context, sourceID, rawURL string, outcomes *sourceOutcomes) {
	start := time.Now()
	outcomes.recordAttempt(sourceID)
	defer func() {
		if r := recover(); r != nil {
			w.incr(&w.counters.Errors, 1)
			outcomes.recordError(sourceID)
			logger.Warn("worker: process panicked", "url", rawURL, "stage", "process", "elapsed", time.Since(start), "error", fmt.Sprint(r))
		}
	}()

	rec, err := w.crawler.Fetch(ctx, rawURL)
	if err != nil {
		w.incr(&w.counters.Errors, 1)
		outcomes.recordError(sourceID)
		logger.Warn("worker: fetch failed", "url", rawURL, "stage", "fetch", "elapsed", time.Since(start), "error", err.Error())
		return
	}
	w.fetchAvg.observe(float64(time.Since(start).Milliseconds()))
	w.incr(&w.counters.PagesCrawled, 1)

	extractStart := time.Now()
	result := extractor.Extract(string(rec.Body), rawURL, rec.FinalURL)
	w.extractAvg.observe(float64(time.Since(extractStart).Milliseconds()))

	if result.Status != core.ExtractionSuccess {
		w.incr(&w.counters.Errors, 1)
		outcomes.recordError(sourceID)
		logger.Warn("worker: extraction failed", "url", rawURL, "stage", "extract", "status", string(result.Status))
		return
	}
	w.incr(&w.counters.ContentExtracted, 1)

	if isUnique := w.dedupe.Add(result.ContentHash, result.Title, result.Text); !isUnique {
		w.incr(&w.counters.DuplicatesFound, 1)
		return
	}

	item := core.NewContentItem(sourceID, rawURL)
	item.CanonicalURL = result.CanonicalURL
	item.ContentHash = result.ContentHash
	item.Title = result.Title
	item.Text = result.Text
	item.Byline = result.Byline
	item.Summary = result.Summary
	item.PublishedAt = result.PublishedAt
	item.Language = result.Language
	item.WordCount = result.WordCount
	item.ImageURL = result.ImageURL
	item.SportsKeywords = result.SportsKeywords
	item.ContentType = result.ContentType
	item.ExtractionStatus = result.Status

	source, err := w.store.Sources().Get(ctx, sourceID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, persistence.ErrNotFound) {
		logger.Warn("worker: source lookup failed", "url", rawURL, "error", err.Error())
	}

	scoreResult := w.scorer.Score(item, quality.Context{
		Source:           source,
		KeywordTiers:     w.tiers,
		DetectedLanguage: result.Language,
		DetectionProb:    result.DetectedLanguageProb,
	})
	item.QualityScore = scoreResult.Score
	outcomes.recordScore(sourceID, scoreResult.Score)

	decision := w.gate.Evaluate(scoreResult.Score)
	if !decision.Accepted {
		w.incr(&w.counters.QualityFiltered, 1)
		return
	}
	if decision.WouldReject {
		w.incr(&w.counters.QualityFiltered, 1)
	}

	if err := w.store.ContentItems().Upsert(ctx, item); err != nil {
		w.incr(&w.counters.Errors, 1)
		outcomes.recordError(sourceID)
		logger.Warn("worker: persist failed", "url", rawURL, "stage", "persist", "error", err.Error())
		return
	}

	for _, signal := range scoreResult.Signals {
		signal.ContentItemID = item.ID
		if err := w.store.QualitySignals().Create(ctx, &signal); err != nil {
			logger.Warn("worker: quality signal persist failed", "url", rawURL, "error", err.Error())
		}
	}

	w.feedTrending(item)
}

// feedTrending extracts sports entities/phrases from item and records
// each as an occurrence against the trending detector, per spec
// §4.13/§4.14.
func (w *Worker) feedTrending(item *core.ContentItem) {
	extraction := terms.Extract(item.Title, item.Text, item.SportsKeywords, w.lexicon)
	item.Entities = extraction.Entities

	sportsContext := ""
	if len(item.SportsKeywords) > 0 {
		sportsContext = strings.Join(item.SportsKeywords[:1], "")
	}

	for _, team := range extraction.Entities.Teams {
		w.trending.Observe(team, core.TermTypeTeam, sportsContext)
	}
	for _, player := range extraction.Entities.Players {
		w.trending.Observe(player, core.TermTypePlayer, sportsContext)
	}
	for _, league := range extraction.Entities.Leagues {
		w.trending.Observe(league, core.TermTypeLeague, sportsContext)
	}
	for _, event := range extraction.Entities.Events {
		w.trending.Observe(event, core.TermTypeEvent, sportsContext)
	}
	for _, phrase := range extraction.Phrases {
		w.trending.Observe(phrase, core.TermTypeGeneric, sportsContext)
	}
}
