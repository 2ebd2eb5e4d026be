package rules

import (
	"time"

	"github.com/agentlens/agentlens/internal/model"
)

// DefaultRegistry returns a registry pre-populated with the built-in check
// catalog. Hosts can register additional rules on the returned registry
// before handing it to an Executor.
func DefaultRegistry() (*Registry, error) {
	reg := NewRegistry()
	for _, rule := range catalog() {
		if err := reg.Register(rule); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func catalog() []*Rule {
	var all []*Rule
	all = append(all, structureRules()...)
	all = append(all, crawlRules()...)
	all = append(all, accessibilityRules()...)
	all = append(all, technicalRules()...)
	return all
}

// emit builds an Issue from a rule's metadata plus the finding-specific
// fields. impact and confidence are always set by the rule body; severity
// defaults from the metadata but can be escalated per finding.
func emit(meta model.RuleMeta, impact int, confidence float64, description, remediation string, loc *model.Location, evidence ...string) model.Issue {
	return model.Issue{
		ID:          meta.ID,
		Title:       meta.Title,
		Severity:    meta.Severity,
		Category:    meta.Category,
		Description: description,
		Remediation: remediation,
		ImpactScore: impact,
		Location:    loc,
		Evidence:    evidence,
		Tags:        meta.Tags,
		Confidence:  confidence,
		Timestamp:   time.Now().UTC(),
	}
}
