// Package scoring turns an issue list into per-category and overall 0-100
// scores. Scoring is a pure function of the issue list and the constant
// weight tables: running it twice on the same issues yields bit-identical
// output, and nothing here mutates the input issues.
package scoring

import (
	"sort"

	"github.com/agentlens/agentlens/internal/model"
)

// severityWeights are fixed constants. Info-severity issues never reduce a
// score.
var severityWeights = map[model.Severity]float64{
	model.SeverityInfo:     0,
	model.SeverityLow:      1,
	model.SeverityMedium:   2.5,
	model.SeverityHigh:     5,
	model.SeverityCritical: 10,
}

// categoryWeights reflect domain importance, in [0.5, 1.5].
var categoryWeights = map[model.Category]float64{
	model.CategoryStructure:      1.2,
	model.CategoryCrawlability:   1.5,
	model.CategoryKnowledgeGraph: 1.3,
	model.CategoryAccessibility:  1.0,
	model.CategoryChunking:       1.1,
	model.CategoryHallucination:  1.4,
	model.CategoryTechnical:      0.8,
	model.CategoryMetadata:       1.0,
	model.CategorySemantics:      1.0,
	model.CategoryContentQuality: 1.1,
	model.CategoryFreshness:      0.7,
	model.CategoryLinking:        0.6,
	model.CategoryMedia:          0.5,
	model.CategoryLocalization:   0.6,
	model.CategoryTrust:          0.9,
	model.CategoryPerformance:    0.7,
}

// SeverityWeight exposes the fixed severity multiplier table.
func SeverityWeight(s model.Severity) float64 {
	return severityWeights[s]
}

// CategoryWeight exposes the fixed category multiplier table. Unknown
// categories weigh 1.0 so externally registered rules still score.
func CategoryWeight(c model.Category) float64 {
	if w, ok := categoryWeights[c]; ok {
		return w
	}
	return 1.0
}

// gradeTable maps score thresholds to letter grades, highest first. The
// boundaries are exact; no ad-hoc rounding.
var gradeTable = []struct {
	min   float64
	grade string
}{
	{95, "A+"},
	{90, "A"},
	{85, "A-"},
	{80, "B+"},
	{75, "B"},
	{70, "B-"},
	{65, "C+"},
	{60, "C"},
	{55, "C-"},
	{50, "D"},
	{45, "D-"},
}

// Grade maps a 0-100 score to its letter grade.
func Grade(score float64) string {
	for _, g := range gradeTable {
		if score >= g.min {
			return g.grade
		}
	}
	return "F"
}

// Compute scores the full, unfiltered issue list.
//
// Per issue the weighted impact is
// impactScore x confidence x severityWeight x categoryWeight; per category
// the score is max(0, 100 - min(100, totalWeightedImpact x 2)), so a
// category with zero issues scores exactly 100.
func Compute(issues []model.Issue) *model.ScoringResult {
	type bucket struct {
		weighted  float64
		count     int
		breakdown model.SeverityBreakdown
	}
	buckets := make(map[model.Category]*bucket)
	var severities model.SeverityBreakdown

	for i := range issues {
		iss := &issues[i]
		b := buckets[iss.Category]
		if b == nil {
			b = &bucket{}
			buckets[iss.Category] = b
		}
		b.weighted += float64(iss.ImpactScore) * iss.Confidence *
			SeverityWeight(iss.Severity) * CategoryWeight(iss.Category)
		b.count++
		b.breakdown.Add(iss.Severity)
		severities.Add(iss.Severity)
	}

	// Score every known category plus any unknown categories that carried
	// issues, in a stable order.
	cats := model.AllCategories()
	known := make(map[model.Category]bool, len(cats))
	for _, c := range cats {
		known[c] = true
	}
	var extra []model.Category
	for c := range buckets {
		if !known[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	cats = append(cats, extra...)

	result := &model.ScoringResult{Severities: severities}
	var weightedSum, includedWeight, allWeight float64

	for _, c := range cats {
		w := CategoryWeight(c)
		allWeight += w

		cs := model.CategoryScore{
			Category: c,
			Score:    100,
			Weight:   w,
		}
		if b := buckets[c]; b != nil {
			cs.IssueCount = b.count
			cs.WeightedImpact = b.weighted
			cs.Breakdown = b.breakdown
			penalty := b.weighted * 2
			if penalty > 100 {
				penalty = 100
			}
			cs.Score = 100 - penalty
			if cs.Score < 0 {
				cs.Score = 0
			}
		}
		result.Categories = append(result.Categories, cs)

		// The overall average only counts categories that have issues or
		// carry a baseline weight of at least 1.0; the normalized figure
		// divides by every possible weight, giving the stricter
		// cross-scan-comparable score.
		if cs.IssueCount > 0 || w >= 1.0 {
			weightedSum += cs.Score * w
			includedWeight += w
		}
	}

	if includedWeight > 0 {
		result.Overall = weightedSum / includedWeight
	} else {
		result.Overall = 100
	}
	if allWeight > 0 {
		result.Normalized = weightedSum / allWeight
	}
	result.Grade = Grade(result.Overall)

	return result
}

// LegacyCategoryMap flattens a scoring result into the per-category score
// map older report consumers expect.
func LegacyCategoryMap(r *model.ScoringResult) map[model.Category]float64 {
	out := make(map[model.Category]float64, len(r.Categories))
	for _, cs := range r.Categories {
		out[cs.Category] = cs.Score
	}
	return out
}
