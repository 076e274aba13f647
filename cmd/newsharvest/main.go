package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harvestlab/newsharvest/internal/cache"
	"github.com/harvestlab/newsharvest/internal/export"
	"github.com/harvestlab/newsharvest/internal/harvest"
	"github.com/harvestlab/newsharvest/internal/report"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		homepageURL   string
		maxArticles   int
		threshold     float64
		delay         time.Duration
		timeout       time.Duration
		retries       int
		userAgent     string
		minWords      int
		jsonPath      string
		csvPath       string
		save          bool
		cacheDir      string
		cacheMaxAge   time.Duration
		cacheClear    bool
		respectRobots bool
		configPath    string
		verbose       bool
	)

	defaults := harvest.DefaultConfig()
	flag.StringVar(&homepageURL, "url", "", "Homepage URL to harvest articles from (required)")
	flag.IntVar(&maxArticles, "max", defaults.MaxArticles, "Maximum number of articles to collect")
	flag.Float64Var(&threshold, "quality", defaults.QualityThreshold, "Minimum quality score (0-1) to keep an article")
	flag.DurationVar(&delay, "delay", defaults.RequestDelay, "Delay between article fetches (e.g. 1s, 500ms)")
	flag.DurationVar(&timeout, "timeout", defaults.Timeout, "Per-request timeout")
	flag.IntVar(&retries, "retries", defaults.MaxRetries, "Retries per fetch beyond the first attempt")
	flag.StringVar(&userAgent, "ua", defaults.UserAgent, "Custom User-Agent for outbound requests")
	flag.IntVar(&minWords, "min.words", defaults.MinWords, "Minimum word count for a viable article body")
	flag.StringVar(&jsonPath, "json", "", "Write the dataset as JSON to this path")
	flag.StringVar(&csvPath, "csv", "", "Write the dataset as CSV to this path")
	flag.BoolVar(&save, "save", false, "Save JSON and CSV with timestamped filenames in the current directory")
	flag.StringVar(&cacheDir, "cache.dir", "", "Page cache directory; empty disables caching")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&respectRobots, "robots", defaults.RespectRobots, "Honor robots.txt rules and crawl delays")
	flag.StringVar(&configPath, "config", "", "Path to YAML or JSON config file; flags override it")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if homepageURL == "" {
		fmt.Fprintln(os.Stderr, "usage: newsharvest -url <homepage> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := defaults
	if configPath != "" {
		fc, err := harvest.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file")
			os.Exit(2)
		}
		fc.Apply(&cfg)
	}
	// Flags the user actually passed override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max":
			cfg.MaxArticles = maxArticles
		case "quality":
			cfg.QualityThreshold = threshold
		case "delay":
			cfg.RequestDelay = delay
		case "timeout":
			cfg.Timeout = timeout
		case "retries":
			cfg.MaxRetries = retries
		case "ua":
			cfg.UserAgent = userAgent
		case "min.words":
			cfg.MinWords = minWords
		case "cache.dir":
			cfg.CacheDir = cacheDir
		case "robots":
			cfg.RespectRobots = respectRobots
		}
	})

	if cfg.CacheDir != "" {
		if cacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Error().Err(err).Msg("clear cache")
				os.Exit(2)
			}
		}
		if cacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("purge cache by age")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale cache entries")
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := harvest.New(cfg)
	res, err := h.Run(ctx, homepageURL, cfg.MaxArticles, cfg.QualityThreshold)
	if err != nil {
		if res != nil && res.State == harvest.StateFailed {
			log.Error().Err(err).Msg("harvest failed")
			os.Exit(1)
		}
		// Cancellation: report whatever was collected before the signal.
		log.Warn().Err(err).Msg("harvest interrupted; reporting partial results")
	}

	fmt.Print(report.Render(res))

	if save {
		now := time.Now()
		if jsonPath == "" {
			jsonPath = export.TimestampedName("json", now)
		}
		if csvPath == "" {
			csvPath = export.TimestampedName("csv", now)
		}
	}
	if jsonPath != "" && len(res.Collection) > 0 {
		if err := export.SaveJSON(jsonPath, res.Collection); err != nil {
			log.Error().Err(err).Msg("save json dataset")
			os.Exit(1)
		}
		log.Info().Str("path", jsonPath).Msg("dataset saved as json")
	}
	if csvPath != "" && len(res.Collection) > 0 {
		if err := export.SaveCSV(csvPath, res.Collection); err != nil {
			log.Error().Err(err).Msg("save csv dataset")
			os.Exit(1)
		}
		log.Info().Str("path", csvPath).Msg("dataset saved as csv")
	}
}
