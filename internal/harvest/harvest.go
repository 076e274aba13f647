// Package harvest drives the end-to-end pipeline: discover article URLs,
// extract each page, score and analyze the results, deduplicate, and filter
// by quality threshold. One logical worker processes URLs strictly
// sequentially so the configured per-request delay is true wall-clock
// spacing between outbound requests.
package harvest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harvestlab/newsharvest/internal/article"
	"github.com/harvestlab/newsharvest/internal/bias"
	"github.com/harvestlab/newsharvest/internal/cache"
	"github.com/harvestlab/newsharvest/internal/dedupe"
	"github.com/harvestlab/newsharvest/internal/extract"
	"github.com/harvestlab/newsharvest/internal/fetch"
	"github.com/harvestlab/newsharvest/internal/quality"
	"github.com/harvestlab/newsharvest/internal/robots"
)

// State is the phase of a harvest run. Done and Failed are terminal.
type State string

const (
	StateIdle        State = "idle"
	StateDiscovering State = "discovering"
	StateExtracting  State = "extracting"
	StateFiltering   State = "filtering"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Result is the outcome of one run. The counters let a caller distinguish
// "zero articles met the quality bar" from "run failed outright".
type Result struct {
	// Collection is the final filtered set, frozen once the run reaches
	// Done.
	Collection []article.Article `json:"collection"`
	State      State             `json:"state"`
	// Attempted counts per-article extraction attempts.
	Attempted int `json:"attempted"`
	// Succeeded counts extractions that produced an article.
	Succeeded int `json:"succeeded"`
	// Skipped counts per-URL failures that were recovered.
	Skipped int `json:"skipped"`
	// Duplicates counts articles dropped by content-hash dedup.
	Duplicates int `json:"duplicates"`
	// RobotsExcluded counts discovered URLs withheld by robots.txt rules.
	RobotsExcluded int `json:"robots_excluded"`
	// BelowThreshold counts articles dropped by the quality filter.
	BelowThreshold int   `json:"below_threshold"`
	Stats          Stats `json:"stats"`
}

// Harvester runs the pipeline with a fixed configuration. Each run owns its
// collection; nothing is shared across concurrent runs.
type Harvester struct {
	cfg       Config
	extractor *extract.Extractor
	scorer    quality.Scorer
	analyzer  bias.Analyzer
	robots    *robots.Manager

	// sleep is swapped in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// clientFetcher adapts fetch.Client to the extractor's minimal interface,
// keeping this package decoupled from the fetcher API shape.
type clientFetcher struct {
	client *fetch.Client
}

func (f *clientFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, _, err := f.client.Get(ctx, url)
	return body, err
}

// New builds a Harvester from the configuration.
func New(cfg Config) *Harvester {
	client := &fetch.Client{
		UserAgent:   cfg.UserAgent,
		MaxAttempts: cfg.MaxRetries + 1,
		Timeout:     cfg.Timeout,
	}
	if cfg.CacheDir != "" {
		client.Cache = &cache.HTTPCache{Dir: cfg.CacheDir}
	}
	h := &Harvester{
		cfg:       cfg,
		extractor: &extract.Extractor{Fetcher: &clientFetcher{client: client}, MinWords: cfg.MinWords},
		sleep:     sleepCtx,
	}
	if cfg.RespectRobots {
		h.robots = &robots.Manager{
			HTTPClient: &http.Client{Timeout: cfg.Timeout},
			Cache:      client.Cache,
			UserAgent:  cfg.UserAgent,
		}
	}
	return h
}

// NewWithFetcher builds a Harvester on a caller-supplied fetcher. Used by
// tests and hosts that manage their own transport.
func NewWithFetcher(cfg Config, f extract.Fetcher) *Harvester {
	return &Harvester{
		cfg:       cfg,
		extractor: &extract.Extractor{Fetcher: f, MinWords: cfg.MinWords},
		sleep:     sleepCtx,
	}
}

// DiscoverURLs exposes URL discovery to hosts without running a full
// harvest.
func (h *Harvester) DiscoverURLs(ctx context.Context, homepageURL string, maxCount int) ([]string, error) {
	if maxCount <= 0 {
		maxCount = h.cfg.MaxArticles
	}
	return h.extractor.DiscoverURLs(ctx, homepageURL, maxCount)
}

// ExtractArticle exposes single-page extraction to hosts.
func (h *Harvester) ExtractArticle(ctx context.Context, url string) (article.Article, error) {
	return h.extractor.ExtractArticle(ctx, url)
}

// Run executes one harvest. maxCount <= 0 falls back to the configured
// MaxArticles. Per-URL failures are recovered and counted; only a failed
// homepage fetch is fatal. Cancellation is observed between per-URL
// iterations: the articles already extracted still go through filtering and
// the context error is returned alongside the partial result.
func (h *Harvester) Run(ctx context.Context, homepageURL string, maxCount int, threshold float64) (*Result, error) {
	if maxCount <= 0 {
		maxCount = h.cfg.MaxArticles
	}
	res := &Result{State: StateIdle}

	res.State = StateDiscovering
	log.Info().Str("homepage", homepageURL).Int("max", maxCount).Msg("discovering article urls")
	urls, err := h.extractor.DiscoverURLs(ctx, homepageURL, maxCount)
	if err != nil {
		res.State = StateFailed
		log.Error().Err(err).Msg("discovery failed")
		return res, err
	}
	log.Info().Int("found", len(urls)).Msg("discovery complete")
	if len(urls) == 0 {
		// Nothing to harvest is a normal outcome, not an error.
		res.State = StateDone
		res.Stats = computeStats(nil)
		return res, nil
	}

	delay := h.cfg.RequestDelay
	if h.robots != nil {
		urls, delay = h.applyRobots(ctx, homepageURL, urls, delay, res)
	}

	res.State = StateExtracting
	extracted := make([]article.Article, 0, len(urls))
	var cancelled error
	for i, u := range urls {
		if i > 0 {
			if err := h.sleep(ctx, delay); err != nil {
				cancelled = err
				break
			}
		}
		res.Attempted++
		a, err := h.extractor.ExtractArticle(ctx, u)
		if err != nil {
			res.Skipped++
			log.Warn().Err(err).Str("url", u).Msg("extraction failed; skipping")
		} else {
			res.Succeeded++
			extracted = append(extracted, a)
		}
		log.Info().Int("extracted", res.Succeeded).Int("remaining", len(urls)-i-1).Msg("harvest progress")
		// Cooperative cancellation checkpoint between iterations.
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
	}

	res.State = StateFiltering
	for i := range extracted {
		extracted[i].QualityScore = h.scorer.Score(extracted[i])
		extracted[i].Bias = h.analyzer.Analyze(extracted[i])
		extracted[i].ContentHash = dedupe.Fingerprint(extracted[i])
	}
	// Dedup runs before the threshold filter: first-seen wins regardless of
	// score, so discovery order decides which duplicate survives.
	deduped := dedupe.Dedupe(extracted)
	res.Duplicates = len(extracted) - len(deduped)

	kept := make([]article.Article, 0, len(deduped))
	for _, a := range deduped {
		if a.QualityScore < threshold {
			res.BelowThreshold++
			log.Debug().Str("url", a.URL).Float64("score", a.QualityScore).Msg("below quality threshold")
			continue
		}
		kept = append(kept, a)
	}

	res.Collection = kept
	res.State = StateDone
	res.Stats = computeStats(kept)
	log.Info().
		Int("attempted", res.Attempted).
		Int("succeeded", res.Succeeded).
		Int("skipped", res.Skipped).
		Int("duplicates", res.Duplicates).
		Int("collected", len(kept)).
		Msg("harvest complete")
	if cancelled != nil {
		return res, cancelled
	}
	return res, nil
}

// applyRobots filters discovered URLs against the site's robots.txt and
// raises the request delay to the published crawl delay when it is longer.
// An unreachable robots.txt leaves the URL set untouched.
func (h *Harvester) applyRobots(ctx context.Context, homepageURL string, urls []string, delay time.Duration, res *Result) ([]string, time.Duration) {
	rules, err := h.robots.RulesFor(ctx, homepageURL)
	if err != nil {
		log.Warn().Err(err).Msg("robots.txt unavailable; proceeding without rules")
		return urls, delay
	}
	allowed := urls[:0]
	for _, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil {
			continue
		}
		path := parsed.Path
		if parsed.RawQuery != "" {
			path += "?" + parsed.RawQuery
		}
		if !rules.Allows(h.cfg.UserAgent, path) {
			res.RobotsExcluded++
			log.Debug().Str("url", u).Msg("excluded by robots.txt")
			continue
		}
		allowed = append(allowed, u)
	}
	if res.RobotsExcluded > 0 {
		log.Info().Int("excluded", res.RobotsExcluded).Msg("robots.txt filtered discovered urls")
	}
	if d := rules.CrawlDelay(h.cfg.UserAgent); d != nil && *d > delay {
		log.Info().Dur("crawl_delay", *d).Msg("honoring robots.txt crawl delay")
		delay = *d
	}
	return allowed, delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
