// Package bias counts categorical bias indicators in article text. Detection
// is purely lexical: curated term lists per category, matched as
// case-insensitive whole words. No semantic analysis is attempted.
package bias

import (
	"fmt"
	"math"
	"strings"

	"github.com/harvestlab/newsharvest/internal/article"
)

// lexicons holds the indicator terms per category. Multi-word phrases match
// across single spaces in normalized content. Read-only after init.
var lexicons = map[string][]string{
	article.CategoryPoliticalLeft: {
		"progressive", "liberal", "democrat", "climate change", "social justice", "left-wing",
	},
	article.CategoryPoliticalRight: {
		"conservative", "republican", "traditional values", "law and order", "right-wing",
	},
	article.CategoryGender: {
		"spokesman", "spokeswoman", "he said", "she said", "businessman", "businesswoman",
	},
	article.CategoryAge: {
		"young", "old", "elderly", "millennial", "boomer", "gen z",
	},
	article.CategoryGeographic: {
		"urban", "rural", "city", "countryside", "inner-city", "heartland",
	},
	article.CategoryEconomic: {
		"wealthy", "poor", "working class", "elite", "low-income", "one percent",
	},
}

const (
	// DefaultBalanceThreshold is the maximum |left-right|/max(left,right,1)
	// ratio still considered balanced.
	DefaultBalanceThreshold = 0.5
	// DefaultConcernCeiling is the per-category count at which a concern
	// is raised.
	DefaultConcernCeiling = 3
	// DefaultDensityCeiling is the overall density (percent) at which a
	// dataset-level concern is raised for the article.
	DefaultDensityCeiling = 3.0
	// minDirectionalCount is the dominant political count below which
	// imbalance is not evaluated: one stray indicator cannot establish a
	// direction.
	minDirectionalCount = 2
)

// Analyzer computes BiasReports. The zero value uses the defaults above.
type Analyzer struct {
	BalanceThreshold float64
	ConcernCeiling   int
	DensityCeiling   float64
}

func (z Analyzer) balanceThreshold() float64 {
	if z.BalanceThreshold > 0 {
		return z.BalanceThreshold
	}
	return DefaultBalanceThreshold
}

func (z Analyzer) concernCeiling() int {
	if z.ConcernCeiling > 0 {
		return z.ConcernCeiling
	}
	return DefaultConcernCeiling
}

func (z Analyzer) densityCeiling() float64 {
	if z.DensityCeiling > 0 {
		return z.DensityCeiling
	}
	return DefaultDensityCeiling
}

// Analyze counts indicator terms in the article content and derives density,
// balance, and concerns. Pure and total: zero-word articles get a zero
// report, never a division by zero.
func (z Analyzer) Analyze(a article.Article) article.BiasReport {
	report := article.BiasReport{
		Scores:   make(map[string]int, len(article.Categories)),
		Balanced: true,
	}
	text := strings.ToLower(a.Content)

	total := 0
	for _, cat := range article.Categories {
		count := 0
		for _, term := range lexicons[cat] {
			count += countWholeWord(text, term)
		}
		report.Scores[cat] = count
		total += count
	}

	if a.WordCount > 0 {
		density := 100 * float64(total) / float64(a.WordCount)
		report.Density = math.Round(density*100) / 100
	}

	left := report.Scores[article.CategoryPoliticalLeft]
	right := report.Scores[article.CategoryPoliticalRight]
	if max(left, right) >= minDirectionalCount {
		ratio := math.Abs(float64(left-right)) / float64(max(left, right, 1))
		report.Balanced = ratio <= z.balanceThreshold()
	}

	for _, cat := range article.Categories {
		if count := report.Scores[cat]; count >= z.concernCeiling() {
			label := strings.ReplaceAll(cat, "_", " ")
			report.Concerns = append(report.Concerns, fmt.Sprintf("high %s indicator count: %d", label, count))
		}
	}
	if report.Density >= z.densityCeiling() {
		report.Concerns = append(report.Concerns, fmt.Sprintf("high bias density: %.1f%%", report.Density))
	}
	return report
}

// countWholeWord counts non-overlapping occurrences of term in text where
// both ends fall on word boundaries. text and term must already be
// lower-cased.
func countWholeWord(text, term string) int {
	if term == "" {
		return 0
	}
	count, from := 0, 0
	for {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return count
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
		}
		from = end
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordByte(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	return !isWordByte(text[i])
}

// isWordByte treats ASCII letters and digits as word characters. Multi-byte
// runes count as boundaries, which errs toward matching rather than missing
// terms next to typographic punctuation.
func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
