package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harvestlab/newsharvest/internal/article"
	"github.com/harvestlab/newsharvest/internal/harvest"
	"github.com/harvestlab/newsharvest/internal/report"
)

func sampleResult() *harvest.Result {
	return &harvest.Result{
		Collection: []article.Article{
			{URL: "https://a.example/news/1"},
			{URL: "https://b.example/news/2"},
			{URL: "https://b.example/news/3"},
		},
		State: harvest.StateDone,
		Stats: harvest.Stats{
			AverageQuality:     0.845,
			AverageBiasDensity: 1.2,
			AverageWordCount:   612,
			BalancedCount:      2,
			Excellent:          2,
			Good:               1,
			SourceCounts:       map[string]int{"BBC": 2, "Reuters": 1},
			BiasTotals: map[string]int{
				article.CategoryPoliticalLeft: 3,
				article.CategoryEconomic:      1,
			},
		},
	}
}

func TestRender_Sections(t *testing.T) {
	out := report.Render(sampleResult())

	assert.Contains(t, out, "DATASET QUALITY ANALYSIS")
	assert.Contains(t, out, "Total Articles: 3")
	assert.Contains(t, out, "Average Quality Score: 0.845 / 1.0")
	assert.Contains(t, out, "Average Bias Density: 1.20%")
	assert.Contains(t, out, "Average Word Count: 612")
	assert.Contains(t, out, "Balanced Articles: 2/3 (66.7%)")
	assert.Contains(t, out, "Excellent (>=0.8): 2 articles")
	assert.Contains(t, out, "Political Left: 3 indicators")
	assert.Contains(t, out, "Economic: 1 indicators")
	assert.NotContains(t, out, "Gender:", "zero-count categories are omitted")
	assert.Contains(t, out, "Quality Grade: Excellent")
	assert.Contains(t, out, "Bias Grade: Low Bias")
	assert.Contains(t, out, "Dataset Suitable for: Research & Analysis")
}

func TestRender_SourceOrdering(t *testing.T) {
	out := report.Render(sampleResult())
	bbc := strings.Index(out, "BBC: 2 articles (66.7%)")
	reuters := strings.Index(out, "Reuters: 1 articles (33.3%)")
	assert.GreaterOrEqual(t, bbc, 0)
	assert.GreaterOrEqual(t, reuters, 0)
	assert.Less(t, bbc, reuters, "sources are listed by descending count")
}

func TestRender_EmptyCollection(t *testing.T) {
	assert.Equal(t, "No articles collected.\n", report.Render(&harvest.Result{State: harvest.StateDone}))
	assert.Equal(t, "No articles collected.\n", report.Render(nil))
}

func TestGrades(t *testing.T) {
	assert.Equal(t, "Excellent", report.QualityGrade(0.8))
	assert.Equal(t, "Good", report.QualityGrade(0.65))
	assert.Equal(t, "Fair", report.QualityGrade(0.2))

	assert.Equal(t, "Low Bias", report.BiasGrade(1.5))
	assert.Equal(t, "Moderate Bias", report.BiasGrade(3.0))
	assert.Equal(t, "High Bias", report.BiasGrade(3.1))
}
