package rules

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// structureRules covers document structure, chunking aids, semantics and
// content quality.
func structureRules() []*Rule {
	return []*Rule{
		headingHierarchyRule(),
		longParagraphsRule(),
		thinContentRule(),
		wallOfTextRule(),
		landmarksRule(),
		genericDivsRule(),
		linkTextRule(),
		markupRatioRule(),
	}
}

func headingHierarchyRule() *Rule {
	meta := model.RuleMeta{
		ID:          "structure-readability.heading-hierarchy",
		Title:       "Heading levels skip steps",
		Category:    model.CategoryStructure,
		Severity:    model.SeverityMedium,
		Tags:        []string{"headings"},
		Description: "Heading levels that jump (h1 to h3) break outline-based content segmentation.",
		Priority:    70,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		var issues []model.Issue
		prev := 0
		rctx.Doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
			level, _ := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(s), "h"))
			if prev > 0 && level > prev+1 {
				issues = append(issues, emit(meta, 12, 0.95,
					fmt.Sprintf("Heading level jumps from h%d to h%d.", prev, level),
					"Use consecutive heading levels so the document outline nests cleanly.",
					&model.Location{Selector: goquery.NodeName(s), Snippet: utils.Truncate(strings.TrimSpace(s.Text()), 80)},
					fmt.Sprintf("h%d -> h%d", prev, level)))
			}
			prev = level
		})
		return issues, nil
	}}
}

func longParagraphsRule() *Rule {
	meta := model.RuleMeta{
		ID:       "structure-readability.long-paragraphs",
		Title:    "Overlong paragraphs",
		Category: model.CategoryStructure,
		Severity: model.SeverityLow,
		Tags:     []string{"paragraphs"},
		Priority: 40,
	}
	const maxWords = 150
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		long := 0
		var sample string
		rctx.Doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			if utils.CountWords(s.Text()) > maxWords {
				long++
				if sample == "" {
					sample = utils.Truncate(utils.NormalizeWhitespace(s.Text()), 120)
				}
			}
		})
		if long == 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 8, 0.9,
			fmt.Sprintf("%d paragraph(s) exceed %d words.", long, maxWords),
			"Split long paragraphs; model-sized chunks keep more context when paragraphs are short.",
			&model.Location{Selector: "p", Snippet: sample},
			fmt.Sprintf("%d paragraphs over limit", long))}, nil
	}}
}

func thinContentRule() *Rule {
	meta := model.RuleMeta{
		ID:       "chunking.thin-content",
		Title:    "Main content is very thin",
		Category: model.CategoryChunking,
		Severity: model.SeverityMedium,
		Priority: 60,
	}
	const minWords = 150
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		body := rctx.Doc.Find("body").Clone()
		body.Find("script, style, noscript, nav, footer, header").Remove()
		words := utils.CountWords(body.Text())
		if words >= minWords {
			return nil, nil
		}
		return []model.Issue{emit(meta, 15, 0.85,
			fmt.Sprintf("Main content holds only %d words; too little for reliable chunked retrieval.", words),
			"Add substantive text content, or ensure the content is server-rendered rather than injected by scripts.",
			nil,
			fmt.Sprintf("word count: %d", words))}, nil
	}}
}

func wallOfTextRule() *Rule {
	meta := model.RuleMeta{
		ID:       "chunking.wall-of-text",
		Title:    "Long content without headings",
		Category: model.CategoryChunking,
		Severity: model.SeverityMedium,
		Priority: 55,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		headings := rctx.Doc.Find("h1, h2, h3, h4, h5, h6").Length()
		words := utils.CountWords(rctx.Doc.Find("body").Text())
		if headings > 0 || words < 600 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 14, 0.9,
			fmt.Sprintf("%d words of content with no headings forces paragraph-budget chunking with arbitrary boundaries.", words),
			"Add section headings so chunks align with topical boundaries.",
			nil,
			fmt.Sprintf("%d words, 0 headings", words))}, nil
	}}
}

func landmarksRule() *Rule {
	meta := model.RuleMeta{
		ID:       "semantics.missing-landmarks",
		Title:    "No semantic landmark elements",
		Category: model.CategorySemantics,
		Severity: model.SeverityMedium,
		Priority: 50,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		if rctx.Doc.Find("main, article, nav, header, footer, aside, section").Length() > 0 {
			return nil, nil
		}
		if rctx.Doc.Find("body *").Length() == 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 12, 0.9,
			"The page uses no landmark elements (main, article, nav, ...), so agents cannot separate content from chrome.",
			"Wrap the primary content in <main> or <article> and navigation in <nav>.",
			nil)}, nil
	}}
}

func genericDivsRule() *Rule {
	meta := model.RuleMeta{
		ID:       "semantics.div-soup",
		Title:    "Heavily div-based markup",
		Category: model.CategorySemantics,
		Severity: model.SeverityLow,
		Priority: 30,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		divs := rctx.Doc.Find("div, span").Length()
		semantic := rctx.Doc.Find("main, article, section, nav, header, footer, aside, figure, p, ul, ol, table").Length()
		if divs < 40 || semantic == 0 || float64(divs)/float64(semantic) < 4 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 6, 0.7,
			fmt.Sprintf("Markup is dominated by generic containers (%d div/span vs %d semantic elements).", divs, semantic),
			"Prefer semantic elements over styled divs where the content has meaning.",
			nil,
			fmt.Sprintf("div/span=%d semantic=%d", divs, semantic))}, nil
	}}
}

func linkTextRule() *Rule {
	meta := model.RuleMeta{
		ID:       "content-quality.vague-link-text",
		Title:    "Vague link text",
		Category: model.CategoryContentQuality,
		Severity: model.SeverityLow,
		Priority: 35,
	}
	vague := []string{"click here", "read more", "learn more", "here", "more"}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil {
			return nil, nil
		}
		count := 0
		var samples []string
		rctx.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			text := strings.ToLower(utils.NormalizeWhitespace(s.Text()))
			for _, v := range vague {
				if text == v {
					count++
					if len(samples) < 3 {
						samples = append(samples, text)
					}
					return
				}
			}
		})
		if count == 0 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 7, 0.9,
			fmt.Sprintf("%d link(s) carry no destination meaning in their text.", count),
			"Use descriptive link text; agents rank and follow links by their anchor text.",
			&model.Location{Selector: "a"},
			samples...)}, nil
	}}
}

func markupRatioRule() *Rule {
	meta := model.RuleMeta{
		ID:       "content-quality.low-text-ratio",
		Title:    "Low text-to-markup ratio",
		Category: model.CategoryContentQuality,
		Severity: model.SeverityMedium,
		Priority: 45,
	}
	return &Rule{Meta: meta, Execute: func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error) {
		if rctx.Doc == nil || len(rctx.RawHTML) < 2048 {
			return nil, nil
		}
		body := rctx.Doc.Find("body").Clone()
		body.Find("script, style, noscript").Remove()
		textLen := len(utils.NormalizeWhitespace(body.Text()))
		ratio := float64(textLen) / float64(len(rctx.RawHTML))
		if ratio >= 0.10 {
			return nil, nil
		}
		return []model.Issue{emit(meta, 10, 0.75,
			fmt.Sprintf("Visible text is only %.1f%% of the page bytes.", ratio*100),
			"Trim boilerplate markup and inline scripts so extractors keep signal over noise.",
			nil,
			fmt.Sprintf("text=%dB page=%dB", textLen, len(rctx.RawHTML)))}, nil
	}}
}
