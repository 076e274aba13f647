package article

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bias categories tracked per article. The set is fixed; analyzers and
// exporters iterate Categories to get a stable order.
const (
	CategoryPoliticalLeft  = "political_left"
	CategoryPoliticalRight = "political_right"
	CategoryGender         = "gender"
	CategoryAge            = "age"
	CategoryGeographic     = "geographic"
	CategoryEconomic       = "economic"
)

// Categories lists all bias categories in canonical order.
var Categories = []string{
	CategoryPoliticalLeft,
	CategoryPoliticalRight,
	CategoryGender,
	CategoryAge,
	CategoryGeographic,
	CategoryEconomic,
}

// BiasReport holds per-category indicator counts and the derived verdicts
// for a single article.
type BiasReport struct {
	// Scores maps each category in Categories to a non-negative count of
	// matched lexical indicators.
	Scores map[string]int `json:"bias_scores"`
	// Density is the total indicator count per 100 words of content.
	Density float64 `json:"bias_density"`
	// Balanced is false when the political_left/political_right pair is
	// lopsided beyond the configured ratio.
	Balanced bool `json:"is_balanced"`
	// Concerns carries human-readable flags in a deterministic order.
	Concerns []string `json:"concerns,omitempty"`
}

// Article is one harvested news article with its derived metrics.
type Article struct {
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Author       string     `json:"author,omitempty"`
	Source       string     `json:"source"`
	PublishDate  *time.Time `json:"publish_date,omitempty"`
	WordCount    int        `json:"word_count"`
	QualityScore float64    `json:"quality_score"`
	Bias         BiasReport `json:"bias_analysis"`
	ContentHash  string     `json:"content_hash"`
	ScrapedAt    time.Time  `json:"scraped_at"`
}

// concernSeparator joins concern entries in the flat form. Concern strings
// never contain it.
const concernSeparator = "; "

// FlatFields returns the column order for the flat (CSV) form.
func FlatFields() []string {
	fields := []string{
		"url",
		"title",
		"content",
		"author",
		"source",
		"publish_date",
		"word_count",
		"quality_score",
		"content_hash",
		"scraped_at",
		"bias_analysis.bias_density",
		"bias_analysis.is_balanced",
		"bias_analysis.concerns",
	}
	for _, cat := range Categories {
		fields = append(fields, "bias_analysis.bias_scores."+cat)
	}
	return fields
}

// Flatten serializes the article to a flat string mapping. Nested
// bias_analysis fields use dotted keys so the mapping stays one level deep.
func (a Article) Flatten() map[string]string {
	m := map[string]string{
		"url":                        a.URL,
		"title":                      a.Title,
		"content":                    a.Content,
		"author":                     a.Author,
		"source":                     a.Source,
		"publish_date":               "",
		"word_count":                 strconv.Itoa(a.WordCount),
		"quality_score":              strconv.FormatFloat(a.QualityScore, 'f', -1, 64),
		"content_hash":               a.ContentHash,
		"scraped_at":                 a.ScrapedAt.Format(time.RFC3339Nano),
		"bias_analysis.bias_density": strconv.FormatFloat(a.Bias.Density, 'f', -1, 64),
		"bias_analysis.is_balanced":  strconv.FormatBool(a.Bias.Balanced),
		"bias_analysis.concerns":     strings.Join(a.Bias.Concerns, concernSeparator),
	}
	if a.PublishDate != nil {
		m["publish_date"] = a.PublishDate.Format(time.RFC3339Nano)
	}
	for _, cat := range Categories {
		m["bias_analysis.bias_scores."+cat] = strconv.Itoa(a.Bias.Scores[cat])
	}
	return m
}

// FromFlat rebuilds an article from its flat form.
func FromFlat(m map[string]string) (Article, error) {
	a := Article{
		URL:         m["url"],
		Title:       m["title"],
		Content:     m["content"],
		Author:      m["author"],
		Source:      m["source"],
		ContentHash: m["content_hash"],
	}
	var err error
	if a.WordCount, err = strconv.Atoi(m["word_count"]); err != nil {
		return Article{}, fmt.Errorf("parse word_count: %w", err)
	}
	if a.QualityScore, err = strconv.ParseFloat(m["quality_score"], 64); err != nil {
		return Article{}, fmt.Errorf("parse quality_score: %w", err)
	}
	if a.ScrapedAt, err = time.Parse(time.RFC3339Nano, m["scraped_at"]); err != nil {
		return Article{}, fmt.Errorf("parse scraped_at: %w", err)
	}
	if v := m["publish_date"]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return Article{}, fmt.Errorf("parse publish_date: %w", err)
		}
		a.PublishDate = &t
	}
	if a.Bias.Density, err = strconv.ParseFloat(m["bias_analysis.bias_density"], 64); err != nil {
		return Article{}, fmt.Errorf("parse bias_density: %w", err)
	}
	if a.Bias.Balanced, err = strconv.ParseBool(m["bias_analysis.is_balanced"]); err != nil {
		return Article{}, fmt.Errorf("parse is_balanced: %w", err)
	}
	if v := m["bias_analysis.concerns"]; v != "" {
		a.Bias.Concerns = strings.Split(v, concernSeparator)
	}
	a.Bias.Scores = make(map[string]int, len(Categories))
	for _, cat := range Categories {
		n, err := strconv.Atoi(m["bias_analysis.bias_scores."+cat])
		if err != nil {
			return Article{}, fmt.Errorf("parse bias score %s: %w", cat, err)
		}
		a.Bias.Scores[cat] = n
	}
	return a, nil
}
