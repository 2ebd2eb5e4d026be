package scoring

import (
	"encoding/json"
	"testing"

	"github.com/agentlens/agentlens/internal/model"
)

func issue(cat model.Category, sev model.Severity, impact int, confidence float64) model.Issue {
	return model.Issue{
		ID:          "test." + string(cat),
		Severity:    sev,
		Category:    cat,
		ImpactScore: impact,
		Confidence:  confidence,
	}
}

func TestComputeEmptyIssueList(t *testing.T) {
	result := Compute(nil)

	if result.Overall != 100 {
		t.Fatalf("expected overall 100 for empty issue list, got %v", result.Overall)
	}
	if result.Grade != "A+" {
		t.Fatalf("expected grade A+, got %q", result.Grade)
	}
	for _, cs := range result.Categories {
		if cs.Score != 100 {
			t.Errorf("category %s: expected 100, got %v", cs.Category, cs.Score)
		}
	}
}

func TestComputeIsPure(t *testing.T) {
	issues := []model.Issue{
		issue(model.CategoryCrawlability, model.SeverityHigh, 18, 0.95),
		issue(model.CategoryMetadata, model.SeverityMedium, 10, 0.95),
		issue(model.CategoryMedia, model.SeverityLow, 4, 0.8),
	}

	a, _ := json.Marshal(Compute(issues))
	b, _ := json.Marshal(Compute(issues))
	if string(a) != string(b) {
		t.Fatalf("scoring is not deterministic:\n%s\n%s", a, b)
	}

	// The input issues must come through unchanged.
	if issues[0].ImpactScore != 18 || issues[1].Confidence != 0.95 {
		t.Fatal("Compute mutated its input")
	}
}

func TestInfoSeverityNeverReducesScore(t *testing.T) {
	result := Compute([]model.Issue{
		issue(model.CategoryMetadata, model.SeverityInfo, 50, 1.0),
	})

	for _, cs := range result.Categories {
		if cs.Category == model.CategoryMetadata {
			if cs.Score != 100 {
				t.Fatalf("info issue reduced score to %v", cs.Score)
			}
			if cs.IssueCount != 1 {
				t.Fatalf("info issue not counted, got %d", cs.IssueCount)
			}
			return
		}
	}
	t.Fatal("metadata category missing from result")
}

func TestCategoryScoreFormula(t *testing.T) {
	// 4 x 0.5 x 2.5 (medium) x 1.5 (crawlability) = 7.5 weighted impact,
	// doubled to a 15 point penalty.
	result := Compute([]model.Issue{
		issue(model.CategoryCrawlability, model.SeverityMedium, 4, 0.5),
	})

	for _, cs := range result.Categories {
		if cs.Category == model.CategoryCrawlability {
			if cs.Score != 85 {
				t.Fatalf("expected crawlability score 85, got %v", cs.Score)
			}
			return
		}
	}
	t.Fatal("crawlability category missing from result")
}

func TestCategoryScoreFloorsAtZero(t *testing.T) {
	result := Compute([]model.Issue{
		issue(model.CategoryCrawlability, model.SeverityCritical, 100, 1.0),
	})
	for _, cs := range result.Categories {
		if cs.Category == model.CategoryCrawlability && cs.Score != 0 {
			t.Fatalf("expected floor of 0, got %v", cs.Score)
		}
	}
}

func TestNormalizedNeverExceedsOverall(t *testing.T) {
	result := Compute([]model.Issue{
		issue(model.CategoryCrawlability, model.SeverityHigh, 10, 0.9),
	})
	if result.Normalized > result.Overall {
		t.Fatalf("normalized %v exceeds overall %v", result.Normalized, result.Overall)
	}
	if result.Overall >= 100 {
		t.Fatalf("a high-severity issue left overall at %v", result.Overall)
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{100, "A+"},
		{95, "A+"},
		{94.99, "A"},
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
		{44.99, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		if got := Grade(tc.score); got != tc.want {
			t.Errorf("Grade(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestUnknownCategoryGetsDefaultWeight(t *testing.T) {
	if w := CategoryWeight(model.Category("made-up")); w != 1.0 {
		t.Fatalf("expected 1.0 for unknown category, got %v", w)
	}

	result := Compute([]model.Issue{
		issue(model.Category("made-up"), model.SeverityLow, 10, 1.0),
	})
	found := false
	for _, cs := range result.Categories {
		if cs.Category == model.Category("made-up") {
			found = true
			if cs.Score != 80 {
				t.Fatalf("expected 80 for unknown category, got %v", cs.Score)
			}
		}
	}
	if !found {
		t.Fatal("unknown category absent from scoring result")
	}
}

func TestLegacyCategoryMap(t *testing.T) {
	result := Compute([]model.Issue{
		issue(model.CategoryMetadata, model.SeverityMedium, 10, 1.0),
	})
	m := LegacyCategoryMap(result)
	if len(m) != len(result.Categories) {
		t.Fatalf("legacy map has %d entries, want %d", len(m), len(result.Categories))
	}
	for _, cs := range result.Categories {
		if m[cs.Category] != cs.Score {
			t.Errorf("category %s: map %v != score %v", cs.Category, m[cs.Category], cs.Score)
		}
	}
}
