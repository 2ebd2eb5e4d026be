package rules

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentlens/agentlens/internal/model"
)

// technicalRules covers technical hygiene and weight/performance signals.
func technicalRules() []*Rule {
	return []*Rule{
		deprecatedTagsRule(),
		inlineStyleRule(),
		scriptWeightRule(),
		transportStatusRule(),
	}
}

func deprecatedTagsRule() *Rule {
	meta := model.RuleMeta{
		ID:       "technical.deprecated-tags",
		Title:    "Deprecated HTML elements",
		Category: model.CategoryTechnical,
		Severity: model.SeverityLow,
		Priority: 24,
	}
	deprecated := "font, center, marquee, blink, big, strike, frame, frameset"
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		count := rctx.Doc.Find(deprecated).Length()
		if count == 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 4, 1.0,
			fmt.Sprintf("%d deprecated element(s) found; old-style markup often confuses structural parsers.", count),
			"Replace deprecated elements with CSS-styled semantic markup.",
			nil,
			fmt.Sprintf("%d deprecated elements", count))}, nil
	}}
}

func inlineStyleRule() *Rule {
	meta := model.RuleMeta{
		ID:       "technical.inline-style-noise",
		Title:    "Heavy inline styling",
		Category: model.CategoryTechnical,
		Severity: model.SeverityInfo,
		Priority: 18,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		styled := rctx.Doc.Find("[style]").Length()
		total := rctx.Doc.Find("body *").Length()
		if total < 50 || styled*4 < total {
			return nil, nil
		}
		return []model.Issue{emit(meta, 3, 0.8,
			fmt.Sprintf("%d of %d elements carry inline style attributes, inflating markup noise.", styled, total),
			"Move presentation into stylesheets; leaner markup chunks more cleanly.",
			nil)}, nil
	}}
}

func scriptWeightRule() *Rule {
	meta := model.RuleMeta{
		ID:       "performance.script-weight",
		Title:    "Script-heavy page",
		Category: model.CategoryPerformance,
		Severity: model.SeverityMedium,
		Priority: 44,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil || len(rctx.RawHTML) == 0 {
			return nil, nil
		}
		scriptBytes := 0
		rctx.Doc.Find("script").Each(func(_ int, s *goquery.Selection) {
			scriptBytes += len(s.Text())
		})
		ratio := float64(scriptBytes) / float64(len(rctx.RawHTML))
		if ratio < 0.4 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 12, 0.85,
			fmt.Sprintf("Inline scripts make up %.0f%% of the page; content likely depends on client-side rendering that non-rendering agents never see.", ratio*100),
			"Server-render the primary content so it exists in the delivered HTML.",
			nil,
			fmt.Sprintf("script bytes: %d of %d", scriptBytes, len(rctx.RawHTML)))}, nil
	}}
}

// transportStatusRule surfaces non-2xx fetches as a finding. The fetch layer
// already degrades gracefully; this rule just makes the status visible in
// the issue list.
func transportStatusRule() *Rule {
	meta := model.RuleMeta{
		ID:       "technical.error-status",
		Title:    "Page served with an error status",
		Category: model.CategoryTechnical,
		Severity: model.SeverityMedium,
		Priority: 92,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.StatusCode == 0 || (rctx.StatusCode >= 200 && rctx.StatusCode < 300) {
			return nil, nil
		}
		return []model.Issue{emit(meta, 15, 1.0,
			fmt.Sprintf("The page answered with HTTP %d; most crawlers will drop or heavily discount it.", rctx.StatusCode),
			"Serve the canonical content with a 200 status.",
			nil,
			fmt.Sprintf("status %d", rctx.StatusCode))}, nil
	}}
}
