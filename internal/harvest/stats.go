package harvest

import (
	"github.com/harvestlab/newsharvest/internal/article"
)

// Quality distribution bucket boundaries.
const (
	excellentFloor = 0.8
	goodFloor      = 0.6
)

// Stats summarizes a frozen collection. Computed read-only once a run
// reaches Done.
type Stats struct {
	AverageQuality     float64 `json:"average_quality"`
	AverageBiasDensity float64 `json:"average_bias_density"`
	AverageWordCount   float64 `json:"average_word_count"`
	// BalancedCount is how many articles passed the political balance
	// check.
	BalancedCount int `json:"balanced_count"`
	// Excellent/Good/Fair bucket the collection by quality score.
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	// SourceCounts tallies articles per source label.
	SourceCounts map[string]int `json:"source_counts"`
	// BiasTotals sums indicator counts per category across the collection.
	BiasTotals map[string]int `json:"bias_totals"`
}

func computeStats(collection []article.Article) Stats {
	s := Stats{
		SourceCounts: map[string]int{},
		BiasTotals:   map[string]int{},
	}
	if len(collection) == 0 {
		return s
	}
	var qualitySum, densitySum, wordSum float64
	for _, a := range collection {
		qualitySum += a.QualityScore
		densitySum += a.Bias.Density
		wordSum += float64(a.WordCount)
		if a.Bias.Balanced {
			s.BalancedCount++
		}
		switch {
		case a.QualityScore >= excellentFloor:
			s.Excellent++
		case a.QualityScore >= goodFloor:
			s.Good++
		default:
			s.Fair++
		}
		if a.Source != "" {
			s.SourceCounts[a.Source]++
		}
		for _, cat := range article.Categories {
			s.BiasTotals[cat] += a.Bias.Scores[cat]
		}
	}
	n := float64(len(collection))
	s.AverageQuality = qualitySum / n
	s.AverageBiasDensity = densitySum / n
	s.AverageWordCount = wordSum / n
	return s
}
