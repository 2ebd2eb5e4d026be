package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/testutil"
)

func ruleContext(t *testing.T, html string, opts *model.ScanOptions) *model.RuleContext {
	t.Helper()
	doc, err := fetcher.Parse("http://example.test/", html)
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return &model.RuleContext{
		URL:        doc.URL,
		RawHTML:    doc.RawHTML,
		Doc:        doc.Doc,
		Options:    opts,
		StatusCode: doc.StatusCode,
	}
}

func emittingRule(id string, category model.Category, priority int) *Rule {
	return &Rule{
		Meta: model.RuleMeta{ID: id, Category: category, Priority: priority},
		Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
			return []model.Issue{{ID: id, Category: category, Severity: model.SeverityLow, ImpactScore: 5, Confidence: 1}}, nil
		},
	}
}

func TestFailingRuleDoesNotAbortTheRun(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(emittingRule("ok.before", model.CategoryMetadata, 90))
	reg.MustRegister(&Rule{
		Meta: model.RuleMeta{ID: "bad.fails", Category: model.CategoryMetadata, Priority: 50},
		Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
			return nil, errors.New("boom")
		},
	})
	reg.MustRegister(emittingRule("ok.after", model.CategoryMetadata, 10))

	exec, err := NewExecutor(reg, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	issues := exec.RunAll(context.Background(), ruleContext(t, "<html></html>", nil))
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues (2 findings + 1 diagnostic), got %d", len(issues))
	}
	if issues[0].ID != "ok.before" || issues[2].ID != "ok.after" {
		t.Fatalf("sibling rules missing or out of order: %v, %v", issues[0].ID, issues[2].ID)
	}
	diag := issues[1]
	if diag.ID != "technical.rule-failure" || diag.Severity != model.SeverityLow {
		t.Fatalf("unexpected diagnostic: %+v", diag)
	}
}

func TestPanickingRuleBecomesDiagnostic(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Rule{
		Meta: model.RuleMeta{ID: "bad.panics", Category: model.CategoryMetadata, Priority: 50},
		Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
			panic("unexpected nil")
		},
	})
	reg.MustRegister(emittingRule("ok.survives", model.CategoryMetadata, 10))

	exec, err := NewExecutor(reg, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	issues := exec.RunAll(context.Background(), ruleContext(t, "<html></html>", nil))
	if len(issues) != 2 {
		t.Fatalf("expected diagnostic + surviving finding, got %d issues", len(issues))
	}
	if issues[0].ID != "technical.rule-failure" {
		t.Fatalf("expected rule-failure diagnostic first, got %q", issues[0].ID)
	}
}

func TestDisabledCategoriesAreSkipped(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(emittingRule("meta.check", model.CategoryMetadata, 50))
	reg.MustRegister(emittingRule("media.check", model.CategoryMedia, 40))

	exec, err := NewExecutor(reg, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	opts := model.DefaultScanOptions()
	opts.DisabledCategories = []model.Category{model.CategoryMedia}

	issues := exec.RunAll(context.Background(), ruleContext(t, "<html></html>", &opts))
	if len(issues) != 1 || issues[0].ID != "meta.check" {
		t.Fatalf("expected only the metadata finding, got %+v", issues)
	}
}
