package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
)

// Executor runs every enabled rule against one shared read-only context.
//
// Its central invariant: no single rule's failure can abort the scan. A rule
// that returns an error or panics is recorded as a low-severity diagnostic
// issue and the remaining rules still run.
type Executor struct {
	registry *Registry
	logger   interfaces.Logger
}

// NewExecutor wires a registry and a logger together.
func NewExecutor(registry *Registry, logger interfaces.Logger) (*Executor, error) {
	if registry == nil {
		return nil, fmt.Errorf("rules: nil registry")
	}
	if logger == nil {
		return nil, fmt.Errorf("rules: nil logger")
	}
	return &Executor{
		registry: registry,
		logger:   logger.With(interfaces.Field{Key: "component", Value: "rule-executor"}),
	}, nil
}

// RunAll invokes every registered rule whose category is enabled in the scan
// options, in registry order, and concatenates their results in invocation
// order. Empty results (absence of finding) are legitimate.
func (e *Executor) RunAll(ctx context.Context, rctx *model.RuleContext) []model.Issue {
	var issues []model.Issue

	for _, rule := range e.registry.Ordered() {
		if rctx.Options != nil && !rctx.Options.CategoryEnabled(rule.Meta.Category) {
			e.logger.Debug("skipping disabled category",
				interfaces.Field{Key: "rule", Value: rule.Meta.ID},
				interfaces.Field{Key: "category", Value: string(rule.Meta.Category)})
			continue
		}

		found, err := e.runOne(ctx, rule, rctx)
		if err != nil {
			e.logger.Warn("rule failed",
				interfaces.Field{Key: "rule", Value: rule.Meta.ID},
				interfaces.Field{Key: "error", Value: err.Error()})
			issues = append(issues, ruleFailureIssue(rule.Meta.ID, err))
			continue
		}
		issues = append(issues, found...)
	}

	return issues
}

// runOne executes a single rule, converting panics into errors so one
// misbehaving check cannot take the executor down.
func (e *Executor) runOne(ctx context.Context, rule *Rule, rctx *model.RuleContext) (found []model.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("rule %s panicked: %v", rule.Meta.ID, r)
		}
	}()
	return rule.Execute(ctx, rctx)
}

// ruleFailureIssue is the diagnostic emitted for an isolated rule failure.
func ruleFailureIssue(ruleID string, err error) model.Issue {
	return model.Issue{
		ID:          "technical.rule-failure",
		Title:       "A readability check could not run",
		Severity:    model.SeverityLow,
		Category:    model.CategoryTechnical,
		Description: fmt.Sprintf("Rule %s failed and was skipped: %v", ruleID, err),
		Remediation: "This is a scanner diagnostic, not a page problem. Re-run the scan; report the rule id if it persists.",
		ImpactScore: 1,
		Evidence:    []string{ruleID},
		Tags:        []string{"diagnostic"},
		Confidence:  1.0,
		Timestamp:   time.Now().UTC(),
	}
}
