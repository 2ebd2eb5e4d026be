package scanner

import (
	"sort"

	"github.com/agentlens/agentlens/internal/model"
)

// applyFilters produces the presented issue list: threshold filtering, a
// stable sort by impact with id as the tiebreak, then the hard cap.
// Scoring has already consumed the unfiltered list; nothing here feeds back
// into the scores.
func applyFilters(issues []model.Issue, opts *model.ScanOptions) []model.Issue {
	kept := make([]model.Issue, 0, len(issues))
	for _, iss := range issues {
		if iss.ImpactScore < opts.MinImpactScore {
			continue
		}
		if iss.Confidence < opts.MinConfidence {
			continue
		}
		kept = append(kept, iss)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ImpactScore != kept[j].ImpactScore {
			return kept[i].ImpactScore > kept[j].ImpactScore
		}
		return kept[i].ID < kept[j].ID
	})

	if opts.MaxIssues > 0 && len(kept) > opts.MaxIssues {
		kept = kept[:opts.MaxIssues]
	}
	return kept
}

// maxRecommendations caps the action list in the report.
const maxRecommendations = 5

// recommendations distills the highest-impact presented issues into a short
// action list. Duplicate remediations collapse to their first occurrence.
func recommendations(result *model.ScanResult) []string {
	var recs []string
	seen := make(map[string]bool)
	for _, iss := range result.Issues {
		if iss.Remediation == "" || seen[iss.Remediation] {
			continue
		}
		if iss.Severity == model.SeverityInfo {
			continue
		}
		seen[iss.Remediation] = true
		recs = append(recs, iss.Remediation)
		if len(recs) == maxRecommendations {
			break
		}
	}
	return recs
}
