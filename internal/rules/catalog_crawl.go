package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// crawlRules covers crawlability, metadata, structured data, freshness and
// link integrity.
func crawlRules() []*Rule {
	return []*Rule{
		missingH1Rule(),
		noindexRule(),
		missingJSONLDRule(),
		invalidJSONLDRule(),
		missingOpenGraphRule(),
		missingTitleRule(),
		missingDescriptionRule(),
		missingCanonicalRule(),
		missingDateRule(),
		duplicateIDsRule(),
	}
}

func missingH1Rule() *Rule {
	meta := model.RuleMeta{
		ID:       "crawlability.missing-h1",
		Title:    "Page has no top-level heading",
		Category: model.CategoryCrawlability,
		Severity: model.SeverityHigh,
		Tags:     []string{"headings"},
		Priority: 90,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find("h1").Length() > 0 {
			return nil, nil
		}
		impact := 18
		desc := "The page has no <h1>, so crawlers and answer engines cannot identify its primary topic."
		if rctx.Doc.Find("h1, h2, h3, h4, h5, h6").Length() == 0 {
			impact = 25
			desc = "The page has no headings at all; its topic and sectioning are invisible to automated readers."
		}
		return []model.Issue{emit(meta, impact, 0.95, desc,
			"Add one <h1> naming the page topic, plus section headings.",
			nil)}, nil
	}}
}

func noindexRule() *Rule {
	meta := model.RuleMeta{
		ID:       "crawlability.noindex",
		Title:    "Page is marked noindex",
		Category: model.CategoryCrawlability,
		Severity: model.SeverityCritical,
		Priority: 95,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		content, _ := rctx.Doc.Find(`meta[name="robots"]`).Attr("content")
		header := ""
		if rctx.Headers != nil {
			header = rctx.Headers.Get("X-Robots-Tag")
		}
		if !utils.ContainsAny(content, "noindex") && !utils.ContainsAny(header, "noindex") {
			return nil, nil
		}
		evidence := content
		if evidence == "" {
			evidence = "X-Robots-Tag: " + header
		}
		return []model.Issue{emit(meta, 30, 1.0,
			"A noindex directive tells every crawler to ignore this page entirely.",
			"Remove the noindex directive if the page should be discoverable by agents.",
			&model.Location{Selector: `meta[name="robots"]`},
			evidence)}, nil
	}}
}

func missingJSONLDRule() *Rule {
	meta := model.RuleMeta{
		ID:       "knowledge-graph.missing-jsonld",
		Title:    "No JSON-LD structured data",
		Category: model.CategoryKnowledgeGraph,
		Severity: model.SeverityHigh,
		Tags:     []string{"structured-data"},
		Priority: 85,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find(`script[type="application/ld+json"]`).Length() > 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 20, 0.95,
			"The page publishes no JSON-LD, leaving knowledge-graph builders nothing machine-readable to anchor on.",
			"Embed schema.org JSON-LD describing the page entity (Article, Product, Organization, FAQPage, ...).",
			nil)}, nil
	}}
}

func invalidJSONLDRule() *Rule {
	meta := model.RuleMeta{
		ID:       "knowledge-graph.invalid-jsonld",
		Title:    "JSON-LD block does not parse",
		Category: model.CategoryKnowledgeGraph,
		Severity: model.SeverityHigh,
		Tags:     []string{"structured-data"},
		Priority: 84,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		var issues []model.Issue
		rctx.Doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
			raw := strings.TrimSpace(s.Text())
			if raw == "" {
				return
			}
			var v any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				issues = append(issues, emit(meta, 18, 1.0,
					fmt.Sprintf("JSON-LD block %d is not valid JSON: %v.", i+1, err),
					"Fix the JSON syntax; invalid blocks are silently dropped by consumers.",
					&model.Location{Selector: `script[type="application/ld+json"]`, Snippet: utils.Truncate(raw, 120)},
					utils.Truncate(raw, 200)))
			}
		})
		return issues, nil
	}}
}

func missingOpenGraphRule() *Rule {
	meta := model.RuleMeta{
		ID:       "knowledge-graph.missing-opengraph",
		Title:    "No Open Graph metadata",
		Category: model.CategoryKnowledgeGraph,
		Severity: model.SeverityLow,
		Priority: 40,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find(`meta[property^="og:"]`).Length() > 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 6, 0.9,
			"No og: meta tags; link unfurlers and some extractors fall back to guessing title and summary.",
			"Add og:title, og:description and og:type meta tags.",
			nil)}, nil
	}}
}

func missingTitleRule() *Rule {
	meta := model.RuleMeta{
		ID:       "metadata.missing-title",
		Title:    "Missing or empty <title>",
		Category: model.CategoryMetadata,
		Severity: model.SeverityHigh,
		Priority: 88,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		title := strings.TrimSpace(rctx.Doc.Find("title").First().Text())
		if title != "" {
			return nil, nil
		}
		return []model.Issue{emit(meta, 20, 1.0,
			"The document has no title; it is the single strongest topical signal for any automated reader.",
			"Add a concise, descriptive <title>.",
			&model.Location{Selector: "title"})}, nil
	}}
}

func missingDescriptionRule() *Rule {
	meta := model.RuleMeta{
		ID:       "metadata.missing-description",
		Title:    "Missing meta description",
		Category: model.CategoryMetadata,
		Severity: model.SeverityMedium,
		Priority: 65,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		desc, ok := rctx.Doc.Find(`meta[name="description"]`).Attr("content")
		if ok && strings.TrimSpace(desc) != "" {
			return nil, nil
		}
		return []model.Issue{emit(meta, 10, 0.95,
			"No meta description; summarizers synthesize one from arbitrary page text instead.",
			"Add a meta description of roughly 50-160 characters.",
			&model.Location{Selector: `meta[name="description"]`})}, nil
	}}
}

func missingCanonicalRule() *Rule {
	meta := model.RuleMeta{
		ID:       "metadata.missing-canonical",
		Title:    "Missing canonical URL",
		Category: model.CategoryMetadata,
		Severity: model.SeverityLow,
		Priority: 38,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find(`link[rel="canonical"]`).Length() > 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 5, 0.85,
			"No canonical link; duplicate URLs of this page dilute its identity in knowledge graphs.",
			`Add <link rel="canonical" href="..."> pointing at the preferred URL.`,
			nil)}, nil
	}}
}

func missingDateRule() *Rule {
	meta := model.RuleMeta{
		ID:       "freshness.missing-date",
		Title:    "No machine-readable publication date",
		Category: model.CategoryFreshness,
		Severity: model.SeverityLow,
		Priority: 32,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find("time[datetime]").Length() > 0 {
			return nil, nil
		}
		if rctx.Doc.Find(`meta[property="article:published_time"], meta[name="date"], meta[name="last-modified"]`).Length() > 0 {
			return nil, nil
		}
		if utils.ContainsAny(rctx.RawHTML, "datePublished", "dateModified") {
			return nil, nil
		}
		return []model.Issue{emit(meta, 6, 0.8,
			"No <time datetime>, date meta tag or datePublished property; agents cannot judge how current the content is.",
			"Publish the date in a <time datetime=...> element or JSON-LD datePublished.",
			nil)}, nil
	}}
}

func duplicateIDsRule() *Rule {
	meta := model.RuleMeta{
		ID:       "linking.duplicate-ids",
		Title:    "Duplicate element ids",
		Category: model.CategoryLinking,
		Severity: model.SeverityLow,
		Priority: 28,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		seen := map[string]int{}
		rctx.Doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
			if id, ok := s.Attr("id"); ok && id != "" {
				seen[id]++
			}
		})
		var dups []string
		for id, n := range seen {
			if n > 1 {
				dups = append(dups, fmt.Sprintf("%s (x%d)", id, n))
			}
		}
		if len(dups) == 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 5, 1.0,
			fmt.Sprintf("%d id value(s) appear more than once, making fragment anchors ambiguous.", len(dups)),
			"Make element ids unique so deep links and selectors resolve deterministically.",
			nil,
			dups...)}, nil
	}}
}
