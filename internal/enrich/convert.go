package enrich

import (
	"fmt"
	"time"

	"github.com/agentlens/agentlens/internal/model"
)

// impactForSeverity is the base weight assigned to issues derived from
// enrichment findings, which carry no rule-authored impact of their own.
func impactForSeverity(s model.Severity) int {
	switch s {
	case model.SeverityCritical:
		return 30
	case model.SeverityHigh:
		return 20
	case model.SeverityMedium:
		return 12
	case model.SeverityLow:
		return 6
	default:
		return 2
	}
}

// TriggerIssues converts every hallucination trigger into an issue. The
// scanner also calls this on the local-only path when no provider is
// configured.
func TriggerIssues(report *model.HallucinationReport) []model.Issue {
	issues := make([]model.Issue, 0, len(report.Triggers))
	for _, t := range report.Triggers {
		issues = append(issues, model.Issue{
			ID:          fmt.Sprintf("hallucination.%s", t.Type),
			Title:       triggerTitle(t.Type),
			Severity:    t.Severity,
			Category:    model.CategoryHallucination,
			Description: t.Description,
			Remediation: triggerRemediation(t.Type),
			ImpactScore: impactForSeverity(t.Severity),
			Evidence:    t.Evidence,
			Tags:        []string{"hallucination", string(t.Type)},
			Confidence:  t.Confidence,
			Timestamp:   time.Now().UTC(),
		})
	}
	return issues
}

func triggerTitle(t model.TriggerType) string {
	switch t {
	case model.TriggerMissingFact:
		return "Claims AI systems cannot verify"
	case model.TriggerContradiction:
		return "Contradictory statements"
	case model.TriggerAmbiguity:
		return "Ambiguous factual statements"
	case model.TriggerInconsistency:
		return "Inconsistent statements"
	default:
		return "Hallucination trigger"
	}
}

func triggerRemediation(t model.TriggerType) string {
	switch t {
	case model.TriggerMissingFact:
		return "Ground unverifiable claims with sources, dates and context that a model can anchor on."
	case model.TriggerContradiction:
		return "Reconcile the conflicting statements so the page gives one consistent answer."
	default:
		return "Tighten the flagged statements until they have one unambiguous reading."
	}
}

// mirrorIssues folds only the high-severity mirror-test mismatches back into
// the issue list; lower severities stay in the enrichment payload.
func mirrorIssues(result *model.MirrorTestResult) []model.Issue {
	var issues []model.Issue
	for _, m := range result.Mismatches {
		if !m.Severity.AtLeast(model.SeverityHigh) {
			continue
		}
		issues = append(issues, model.Issue{
			ID:          "semantics.mirror-mismatch",
			Title:       "Page body diverges from declared messaging",
			Severity:    m.Severity,
			Category:    model.CategorySemantics,
			Description: fmt.Sprintf("On %q the page declares %q but the content reads as %q.", m.Aspect, m.Intended, m.Interpreted),
			Remediation: "Align the title, description and headings with what the body actually says.",
			ImpactScore: impactForSeverity(m.Severity),
			Evidence:    m.Evidence,
			Tags:        []string{"mirror-test"},
			Confidence:  0.75,
			Timestamp:   time.Now().UTC(),
		})
	}
	return issues
}
