package hallucination

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// Local contradiction detection compares semantically similar blocks for
// disjoint date or numeric values. It needs no provider.
//
// similarityThreshold is the hand-tuned word-overlap gate; kept exactly.
const similarityThreshold = 0.2

// maxBlocks caps the pairwise comparison so pathological pages stay cheap.
const maxBlocks = 120

// blockSelector lists the semantically meaningful block elements.
const blockSelector = "p, li, td, th, h1, h2, h3, h4, h5, h6, blockquote"

// strongKeywords are topical anchors that pair blocks even below the
// overlap threshold.
var strongKeywords = []string{
	"founded", "established", "since", "launched", "created",
	"ram", "memory", "storage", "cpu",
	"price", "cost", "revenue",
	"employees", "users", "customers",
	"version", "released",
}

var (
	yearPattern   = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)
	numberPattern = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+(?:\.\d+)?\b|\b\d+(?:\.\d+)?\b`)
)

type contentBlock struct {
	text    string
	years   []int
	numbers []float64
}

// detectLocal extracts date-like and number-like tokens from every
// meaningful block and flags contextually similar pairs whose values do not
// overlap at all.
func (d *Detector) detectLocal(doc *fetcher.Document) []model.HallucinationTrigger {
	if doc == nil || doc.Doc == nil {
		return nil
	}

	blocks := extractBlocks(doc)
	var triggers []model.HallucinationTrigger

	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			a, b := blocks[i], blocks[j]
			if !similar(a, b) {
				continue
			}
			if kind, ok := conflict(a, b); ok {
				triggers = append(triggers, model.HallucinationTrigger{
					Type:     model.TriggerContradiction,
					Severity: model.SeverityHigh,
					Description: fmt.Sprintf(
						"Two similar sections of the page state conflicting %s values; a model answering from this page will pick one at random.", kind),
					Evidence: []string{
						utils.Truncate(a.text, 200),
						utils.Truncate(b.text, 200),
					},
					Confidence: 0.7,
				})
			}
		}
	}

	if len(triggers) > 0 {
		d.logger.Debug("local contradictions found",
			interfaces.Field{Key: "count", Value: len(triggers)},
			interfaces.Field{Key: "blocks", Value: len(blocks)})
	}
	return triggers
}

// extractBlocks keeps only blocks that carry at least one comparable value.
func extractBlocks(doc *fetcher.Document) []contentBlock {
	var blocks []contentBlock
	doc.Doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if len(blocks) >= maxBlocks {
			return
		}
		// Skip container blocks whose text is just their children repeated.
		if s.Children().Is(blockSelector) {
			return
		}
		text := utils.NormalizeWhitespace(s.Text())
		if text == "" || utils.CountWords(text) < 3 {
			return
		}
		block := contentBlock{text: text}
		for _, m := range yearPattern.FindAllString(text, -1) {
			if y, err := strconv.Atoi(m); err == nil {
				block.years = append(block.years, y)
			}
		}
		for _, m := range numberPattern.FindAllString(text, -1) {
			clean := strings.ReplaceAll(m, ",", "")
			if v, err := strconv.ParseFloat(clean, 64); err == nil {
				block.numbers = append(block.numbers, v)
			}
		}
		if len(block.years) == 0 && len(block.numbers) == 0 {
			return
		}
		blocks = append(blocks, block)
	})
	return blocks
}

// similar gates a pair on vocabulary overlap or shared strong keywords.
func similar(a, b contentBlock) bool {
	if utils.WordOverlap(a.text, b.text) > similarityThreshold {
		return true
	}
	lowerA, lowerB := strings.ToLower(a.text), strings.ToLower(b.text)
	for _, kw := range strongKeywords {
		if strings.Contains(lowerA, kw) && strings.Contains(lowerB, kw) {
			return true
		}
	}
	return false
}

// conflict reports whether two similar blocks carry entirely disjoint year
// or numeric values. Years are compared first: dates conflict more reliably
// than free-floating numbers.
func conflict(a, b contentBlock) (string, bool) {
	if len(a.years) > 0 && len(b.years) > 0 {
		if !intsOverlap(a.years, b.years) {
			return "date", true
		}
		return "", false
	}
	if len(a.numbers) > 0 && len(b.numbers) > 0 {
		if !floatsOverlap(a.numbers, b.numbers) {
			return "numeric", true
		}
	}
	return "", false
}

func intsOverlap(a, b []int) bool {
	set := make(map[int]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func floatsOverlap(a, b []float64) bool {
	for _, va := range a {
		for _, vb := range b {
			if va == vb {
				return true
			}
		}
	}
	return false
}
