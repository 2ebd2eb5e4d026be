package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// accessibilityRules covers accessibility, media, localization and trust.
// Checks that help assistive technology almost always help text extractors
// for the same structural reasons.
func accessibilityRules() []*Rule {
	return []*Rule{
		imageAltRule(),
		missingLangRule(),
		tableHeadersRule(),
		figureCaptionRule(),
		missingCharsetRule(),
		missingAuthorRule(),
	}
}

func imageAltRule() *Rule {
	meta := model.RuleMeta{
		ID:       "accessibility.missing-img-alt",
		Title:    "Images without alt text",
		Category: model.CategoryAccessibility,
		Severity: model.SeverityMedium,
		Priority: 62,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		total := rctx.Doc.Find("img").Length()
		if total == 0 {
			return nil, nil
		}
		missing := 0
		var sample string
		rctx.Doc.Find("img").Each(func(_ int, s *goquery.Selection) {
			alt, ok := s.Attr("alt")
			if !ok || strings.TrimSpace(alt) == "" {
				missing++
				if sample == "" {
					sample, _ = s.Attr("src")
				}
			}
		})
		if missing == 0 {
			return nil, nil
		}
		impact := 8
		if missing*2 > total {
			impact = 14
		}
		return []model.Issue{emit(meta, impact, 0.95,
			fmt.Sprintf("%d of %d image(s) have no alt text; their content is invisible to text-only readers.", missing, total),
			"Add descriptive alt attributes, or alt=\"\" for purely decorative images.",
			&model.Location{Selector: "img", Snippet: sample},
			fmt.Sprintf("%d/%d missing alt", missing, total))}, nil
	}}
}

func missingLangRule() *Rule {
	meta := model.RuleMeta{
		ID:       "localization.missing-lang",
		Title:    "No declared document language",
		Category: model.CategoryLocalization,
		Severity: model.SeverityLow,
		Priority: 36,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		lang, ok := rctx.Doc.Find("html").Attr("lang")
		if ok && strings.TrimSpace(lang) != "" {
			return nil, nil
		}
		return []model.Issue{emit(meta, 6, 0.95,
			"The <html> element declares no lang attribute; language detection falls back to guessing.",
			`Declare the primary language, e.g. <html lang="en">.`,
			&model.Location{Selector: "html"})}, nil
	}}
}

func tableHeadersRule() *Rule {
	meta := model.RuleMeta{
		ID:       "accessibility.table-headers",
		Title:    "Data tables without header cells",
		Category: model.CategoryAccessibility,
		Severity: model.SeverityMedium,
		Priority: 48,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		var issues []model.Issue
		rctx.Doc.Find("table").Each(func(i int, s *goquery.Selection) {
			if s.Find("th").Length() > 0 {
				return
			}
			if s.Find("td").Length() == 0 {
				return // layout or empty table
			}
			issues = append(issues, emit(meta, 10, 0.9,
				fmt.Sprintf("Table %d has data cells but no <th> headers; its columns cannot be labeled when extracted.", i+1),
				"Add <th> cells (with scope) so each column and row carries its meaning.",
				&model.Location{Selector: "table"}))
		})
		return issues, nil
	}}
}

func figureCaptionRule() *Rule {
	meta := model.RuleMeta{
		ID:       "media.missing-figcaption",
		Title:    "Figures without captions",
		Category: model.CategoryMedia,
		Severity: model.SeverityInfo,
		Priority: 20,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		missing := 0
		rctx.Doc.Find("figure").Each(func(_ int, s *goquery.Selection) {
			if s.Find("figcaption").Length() == 0 {
				missing++
			}
		})
		if missing == 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 3, 0.85,
			fmt.Sprintf("%d figure(s) have no figcaption; captions are the only text agents can attach to media.", missing),
			"Add a <figcaption> summarizing each figure.",
			&model.Location{Selector: "figure"})}, nil
	}}
}

func missingCharsetRule() *Rule {
	meta := model.RuleMeta{
		ID:       "technical.missing-charset",
		Title:    "No charset declaration",
		Category: model.CategoryTechnical,
		Severity: model.SeverityLow,
		Priority: 34,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find("meta[charset]").Length() > 0 {
			return nil, nil
		}
		if rctx.Headers != nil && utils.ContainsAny(rctx.Headers.Get("Content-Type"), "charset=") {
			return nil, nil
		}
		return []model.Issue{emit(meta, 5, 0.9,
			"Neither the markup nor the Content-Type header declares a character encoding.",
			`Add <meta charset="utf-8"> as the first element of <head>.`,
			nil)}, nil
	}}
}

func missingAuthorRule() *Rule {
	meta := model.RuleMeta{
		ID:       "trust.missing-author",
		Title:    "No author attribution",
		Category: model.CategoryTrust,
		Severity: model.SeverityLow,
		Priority: 26,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find(`meta[name="author"], [rel="author"], [itemprop="author"]`).Length() > 0 {
			return nil, nil
		}
		if utils.ContainsAny(rctx.RawHTML, `"author"`) {
			return nil, nil // likely present in JSON-LD
		}
		return []model.Issue{emit(meta, 5, 0.7,
			"No attributable author anywhere in metadata; trust-weighting systems discount unattributed content.",
			"Add an author meta tag, rel=author link, or author property in JSON-LD.",
			nil)}, nil
	}}
}
