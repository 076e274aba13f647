// Package report renders a human-readable summary of a harvest run for
// terminal output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harvestlab/newsharvest/internal/article"
	"github.com/harvestlab/newsharvest/internal/harvest"
)

// Bias grade boundaries, in average density percent.
const (
	lowBiasCeiling      = 1.5
	moderateBiasCeiling = 3.0
)

const rule = "============================================================"

// Render formats the run summary. An empty collection yields a single-line
// notice rather than a zero-filled table.
func Render(res *harvest.Result) string {
	if res == nil || len(res.Collection) == 0 {
		return "No articles collected.\n"
	}

	total := len(res.Collection)
	s := res.Stats
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nDATASET QUALITY ANALYSIS\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Total Articles: %d\n", total)
	fmt.Fprintf(&b, "Average Quality Score: %.3f / 1.0\n", s.AverageQuality)
	fmt.Fprintf(&b, "Average Bias Density: %.2f%%\n", s.AverageBiasDensity)
	fmt.Fprintf(&b, "Average Word Count: %.0f\n", s.AverageWordCount)
	fmt.Fprintf(&b, "Balanced Articles: %d/%d (%.1f%%)\n",
		s.BalancedCount, total, percent(s.BalancedCount, total))

	fmt.Fprintf(&b, "\nQuality Distribution:\n")
	fmt.Fprintf(&b, "  Excellent (>=0.8): %d articles\n", s.Excellent)
	fmt.Fprintf(&b, "  Good (0.6-0.8):    %d articles\n", s.Good)
	fmt.Fprintf(&b, "  Fair (<0.6):       %d articles\n", s.Fair)

	if len(s.SourceCounts) > 0 {
		fmt.Fprintf(&b, "\nSource Distribution:\n")
		for _, src := range sortedSources(s.SourceCounts) {
			n := s.SourceCounts[src]
			fmt.Fprintf(&b, "  %s: %d articles (%.1f%%)\n", src, n, percent(n, total))
		}
	}

	if hasBias(s.BiasTotals) {
		fmt.Fprintf(&b, "\nBias Category Analysis:\n")
		for _, cat := range article.Categories {
			if n := s.BiasTotals[cat]; n > 0 {
				fmt.Fprintf(&b, "  %s: %d indicators\n", categoryLabel(cat), n)
			}
		}
	}

	fmt.Fprintf(&b, "\nOverall Assessment:\n")
	fmt.Fprintf(&b, "  Quality Grade: %s\n", QualityGrade(s.AverageQuality))
	fmt.Fprintf(&b, "  Bias Grade: %s\n", BiasGrade(s.AverageBiasDensity))
	fmt.Fprintf(&b, "  Dataset Suitable for: %s\n", suitability(s.AverageQuality))
	return b.String()
}

// QualityGrade maps an average quality score to a coarse grade.
func QualityGrade(avg float64) string {
	switch {
	case avg >= 0.8:
		return "Excellent"
	case avg >= 0.6:
		return "Good"
	default:
		return "Fair"
	}
}

// BiasGrade maps an average bias density percentage to a coarse grade.
func BiasGrade(avgDensity float64) string {
	switch {
	case avgDensity <= lowBiasCeiling:
		return "Low Bias"
	case avgDensity <= moderateBiasCeiling:
		return "Moderate Bias"
	default:
		return "High Bias"
	}
}

func suitability(avgQuality float64) string {
	if avgQuality >= 0.6 {
		return "Research & Analysis"
	}
	return "Basic Analysis"
}

// sortedSources orders sources by descending count, then by name so the
// output is stable.
func sortedSources(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// percent returns n as a percentage of total.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func hasBias(totals map[string]int) bool {
	for _, n := range totals {
		if n > 0 {
			return true
		}
	}
	return false
}

// categoryLabel turns a category key like "political_left" into
// "Political Left".
func categoryLabel(cat string) string {
	parts := strings.Split(cat, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
