package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// The mirror test holds the page up against the model: the declared
// messaging (title, description, headings) on one side, the model's
// independent interpretation of the body on the other. Divergence between
// the two is exactly what an answer engine will get wrong.

const mirrorPrompt = `A web page declares its intended messaging through its title, meta description and headings. Independently interpret the page BODY below, then compare your interpretation against the declared messaging and report mismatches.

Respond with JSON only, no code fences, with keys:
- "alignment": 0.0-1.0, how well the body matches the declared messaging
- "interpretation": your own 1-2 sentence reading of what the page is about
- "mismatches": array of objects with keys "aspect" (what diverges, e.g. "topic", "audience", "claim"), "intended" (what the page declares), "interpreted" (what the body actually conveys), "severity" ("low" | "medium" | "high" | "critical")

Declared messaging:
%s

Page BODY:
%s`

type mirrorWire struct {
	Alignment      float64 `json:"alignment"`
	Interpretation string  `json:"interpretation"`
	Mismatches     []struct {
		Aspect      string `json:"aspect"`
		Intended    string `json:"intended"`
		Interpreted string `json:"interpreted"`
		Severity    string `json:"severity"`
	} `json:"mismatches"`
}

func (e *Enricher) mirrorTest(ctx context.Context, doc *fetcher.Document) (*model.MirrorTestResult, error) {
	declared := declaredMessaging(doc)
	if declared == "" {
		// Nothing declared to mirror against; not a task failure.
		return &model.MirrorTestResult{Alignment: 0}, nil
	}

	content, err := e.call(ctx, fmt.Sprintf(mirrorPrompt, declared, taskText(doc)))
	if err != nil {
		return nil, err
	}

	var wire mirrorWire
	if err := decodeObject(content, &wire); err != nil {
		return nil, fmt.Errorf("mirror test: %w", err)
	}

	result := &model.MirrorTestResult{Alignment: clampUnit(wire.Alignment)}
	dmp := diffmatchpatch.New()

	for _, m := range wire.Mismatches {
		mismatch := model.MirrorMismatch{
			Aspect:      strings.TrimSpace(m.Aspect),
			Intended:    strings.TrimSpace(m.Intended),
			Interpreted: strings.TrimSpace(m.Interpreted),
			Severity:    parseSeverity(m.Severity),
		}
		if mismatch.Intended == "" && mismatch.Interpreted == "" {
			continue
		}
		// Word-level diff between the two phrasings makes the divergence
		// reviewable without re-reading both texts.
		diffs := dmp.DiffMain(mismatch.Intended, mismatch.Interpreted, false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		for _, d := range diffs {
			text := utils.NormalizeWhitespace(d.Text)
			if text == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				mismatch.Evidence = append(mismatch.Evidence, "declared only: "+utils.Truncate(text, 120))
			case diffmatchpatch.DiffInsert:
				mismatch.Evidence = append(mismatch.Evidence, "interpreted only: "+utils.Truncate(text, 120))
			}
		}
		result.Mismatches = append(result.Mismatches, mismatch)
	}

	return result, nil
}

// declaredMessaging assembles the page's explicit statements of intent.
func declaredMessaging(doc *fetcher.Document) string {
	if doc.Doc == nil {
		return ""
	}
	var parts []string
	if title := doc.Title(); title != "" {
		parts = append(parts, "Title: "+title)
	}
	if desc, ok := doc.Doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		parts = append(parts, "Description: "+strings.TrimSpace(desc))
	}
	var headings []string
	doc.Doc.Find("h1, h2").EachWithBreak(func(i int, s *goquery.Selection) bool {
		headings = append(headings, utils.NormalizeWhitespace(s.Text()))
		return i < 9
	})
	if len(headings) > 0 {
		parts = append(parts, "Headings: "+strings.Join(headings, " | "))
	}
	return strings.Join(parts, "\n")
}

func parseSeverity(s string) model.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return model.SeverityCritical
	case "high":
		return model.SeverityHigh
	case "medium":
		return model.SeverityMedium
	case "info":
		return model.SeverityInfo
	default:
		return model.SeverityLow
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
