package findings

import (
	"math"
	"sort"
)

// CoverageStats is a derived projection over the current findings, never the
// source of truth. Recomputing it from the same findings yields identical
// output.
type CoverageStats struct {
	TotalControls   int                `json:"total_controls"`
	Compliant       int                `json:"compliant"`
	Partial         int                `json:"partial"`
	NonCompliant    int                `json:"non_compliant"`
	NotApplicable   int                `json:"not_applicable"`
	Percentage      float64            `json:"coverage_percentage"`
	ArticleCoverage map[string]float64 `json:"article_coverage"`
	Articles        []string           `json:"articles"`
}

// ComputeCoverage aggregates findings into coverage statistics. A compliant
// finding contributes 1.0, partial 0.5, everything else 0; percentages are
// rounded to two decimals, round-half-up. An empty input reports 0 rather
// than dividing by zero.
func ComputeCoverage(fs []*Finding) CoverageStats {
	stats := CoverageStats{
		ArticleCoverage: make(map[string]float64),
	}

	type tally struct {
		total  int
		weight float64
	}
	perArticle := make(map[string]*tally)

	var weight float64
	for _, f := range fs {
		stats.TotalControls++
		t := perArticle[f.Article]
		if t == nil {
			t = &tally{}
			perArticle[f.Article] = t
		}
		t.total++
		switch f.Status {
		case StatusCompliant:
			stats.Compliant++
			weight += 1.0
			t.weight += 1.0
		case StatusPartial:
			stats.Partial++
			weight += 0.5
			t.weight += 0.5
		case StatusNotApplicable:
			stats.NotApplicable++
		default:
			stats.NonCompliant++
		}
	}

	if stats.TotalControls > 0 {
		stats.Percentage = roundPct(weight / float64(stats.TotalControls) * 100)
	}
	for article, t := range perArticle {
		pct := 0.0
		if t.total > 0 {
			pct = roundPct(t.weight / float64(t.total) * 100)
		}
		stats.ArticleCoverage[article] = pct
		stats.Articles = append(stats.Articles, article)
	}
	sort.Strings(stats.Articles)
	return stats
}

// roundPct rounds to two decimal places, half away from zero upward
func roundPct(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
