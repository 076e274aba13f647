package harvest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/harvestlab/newsharvest/internal/extract"
)

// Config holds the host-supplied runtime configuration for harvest runs.
// The core treats it as read-only input.
type Config struct {
	// RequestDelay is the wall-clock spacing between outbound article
	// fetches. Politeness, not correctness.
	RequestDelay time.Duration
	// Timeout bounds each fetch.
	Timeout time.Duration
	// MaxRetries is the number of retries per fetch beyond the first
	// attempt.
	MaxRetries int
	// QualityThreshold drops articles scoring below it, range 0-1.
	QualityThreshold float64
	// UserAgent identifies the harvester to remote servers.
	UserAgent string
	// MaxArticles caps discovery per run.
	MaxArticles int
	// MinWords is the minimum viable article body length.
	MinWords int
	// CacheDir enables the conditional-request page cache when set.
	CacheDir string
	// RespectRobots honors robots.txt rules and crawl delays.
	RespectRobots bool
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		RequestDelay:     1 * time.Second,
		Timeout:          10 * time.Second,
		MaxRetries:       1,
		QualityThreshold: 0.6,
		UserAgent:        "newsharvest/1.0 (+https://github.com/harvestlab/newsharvest)",
		MaxArticles:      10,
		MinWords:         extract.DefaultMinWords,
		RespectRobots:    true,
	}
}

// FileConfig is the single-file configuration schema. Nested sections map
// naturally to flags. Durations are plain seconds so the same file works as
// YAML or JSON.
type FileConfig struct {
	Fetch struct {
		DelaySeconds   float64 `yaml:"delaySeconds" json:"delaySeconds"`
		TimeoutSeconds float64 `yaml:"timeoutSeconds" json:"timeoutSeconds"`
		Retries        *int    `yaml:"retries" json:"retries"`
		UserAgent      string  `yaml:"userAgent" json:"userAgent"`
		CacheDir       string  `yaml:"cacheDir" json:"cacheDir"`
		RespectRobots  *bool   `yaml:"respectRobots" json:"respectRobots"`
	} `yaml:"fetch" json:"fetch"`

	Harvest struct {
		MaxArticles      int      `yaml:"maxArticles" json:"maxArticles"`
		QualityThreshold *float64 `yaml:"qualityThreshold" json:"qualityThreshold"`
		MinWords         int      `yaml:"minWords" json:"minWords"`
	} `yaml:"harvest" json:"harvest"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON.
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// Apply overlays the file values onto cfg. Zero values leave cfg untouched
// so a sparse file only overrides what it names; pointer fields distinguish
// "absent" from a deliberate zero.
func (fc FileConfig) Apply(cfg *Config) {
	if fc.Fetch.DelaySeconds > 0 {
		cfg.RequestDelay = time.Duration(fc.Fetch.DelaySeconds * float64(time.Second))
	}
	if fc.Fetch.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(fc.Fetch.TimeoutSeconds * float64(time.Second))
	}
	if fc.Fetch.Retries != nil {
		cfg.MaxRetries = *fc.Fetch.Retries
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.CacheDir != "" {
		cfg.CacheDir = fc.Fetch.CacheDir
	}
	if fc.Fetch.RespectRobots != nil {
		cfg.RespectRobots = *fc.Fetch.RespectRobots
	}
	if fc.Harvest.MaxArticles > 0 {
		cfg.MaxArticles = fc.Harvest.MaxArticles
	}
	if fc.Harvest.QualityThreshold != nil {
		cfg.QualityThreshold = *fc.Harvest.QualityThreshold
	}
	if fc.Harvest.MinWords > 0 {
		cfg.MinWords = fc.Harvest.MinWords
	}
}
