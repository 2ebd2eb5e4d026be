// Package chunker splits a page's primary content region into bounded,
// labeled chunks sized for a model context budget.
package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// Strategy selects how chunk boundaries are chosen.
type Strategy string

const (
	StrategyAuto      Strategy = "auto"
	StrategyHeading   Strategy = "heading-based"
	StrategyParagraph Strategy = "paragraph-based"
)

// labelFallback marks a silent fallback from heading to paragraph chunking
// in the result's strategy label.
const labelFallback = "paragraph-based (fallback)"

// Chunker performs chunking passes over parsed documents.
type Chunker struct {
	tokenBudget int
	logger      interfaces.Logger
}

// DefaultTokenBudget bounds one chunk when the scan options give none.
const DefaultTokenBudget = 800

// New builds a Chunker. tokenBudget <= 0 selects DefaultTokenBudget.
func New(tokenBudget int, logger interfaces.Logger) *Chunker {
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Chunker{
		tokenBudget: tokenBudget,
		logger:      logger.With(interfaces.Field{Key: "component", Value: "chunker"}),
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interfaces.Field)            {}
func (nopLogger) Info(string, ...interfaces.Field)             {}
func (nopLogger) Warn(string, ...interfaces.Field)             {}
func (nopLogger) Error(string, ...interfaces.Field)            {}
func (n nopLogger) With(...interfaces.Field) interfaces.Logger { return n }

// Chunk splits the container selection using the requested strategy.
//
// Auto uses heading-based chunking when the container has any heading
// elements and falls back to paragraph-based otherwise; an explicit heading
// request also falls back silently when no headings exist, and the fallback
// is reported in the strategy label.
func (c *Chunker) Chunk(container *goquery.Selection, containerLabel string, strategy Strategy) (*model.ChunkingResult, error) {
	if container == nil || container.Length() == 0 {
		return nil, fmt.Errorf("chunker: empty container")
	}

	hasHeadings := container.Find("h1, h2, h3, h4, h5, h6").Length() > 0

	label := string(StrategyParagraph)
	useHeadings := false
	switch strategy {
	case StrategyAuto, "":
		if hasHeadings {
			useHeadings = true
			label = string(StrategyHeading)
		}
	case StrategyHeading:
		if hasHeadings {
			useHeadings = true
			label = string(StrategyHeading)
		} else {
			label = labelFallback
		}
	case StrategyParagraph:
		// Forced paragraph chunking ignores headings entirely.
	default:
		return nil, fmt.Errorf("chunker: unknown strategy %q", strategy)
	}

	var chunks []model.ContentChunk
	if useHeadings {
		chunks = c.chunkByHeadings(container)
	} else {
		chunks = c.chunkByParagraphs(container)
	}

	result := analyze(chunks)
	result.Strategy = label
	result.Container = containerLabel

	c.logger.Debug("chunking pass complete",
		interfaces.Field{Key: "strategy", Value: label},
		interfaces.Field{Key: "chunks", Value: len(chunks)})

	return result, nil
}

// headingLevel returns 1-6 for h1..h6 nodes, 0 otherwise.
func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
		return 0
	}
	lvl, err := strconv.Atoi(n.Data[1:])
	if err != nil || lvl < 1 || lvl > 6 {
		return 0
	}
	return lvl
}

// segment is the raw material of one chunk, accumulated during the walk.
type segment struct {
	heading      string
	headingLevel int
	raw          strings.Builder
	scriptBytes  int
	hasCode      bool
	hasList      bool
	hasTable     bool
}

// chunkByHeadings starts a new chunk at every heading whose level is at or
// above (numerically at or below) the open chunk's heading level. Deeper
// headings stay inside the open chunk.
func (c *Chunker) chunkByHeadings(container *goquery.Selection) []model.ContentChunk {
	var segs []*segment
	current := &segment{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				current.scriptBytes += textLen(n)
				return
			case "code", "pre":
				current.hasCode = true
			case "ul", "ol", "dl":
				current.hasList = true
			case "table":
				current.hasTable = true
			}
			if lvl := headingLevel(n); lvl > 0 {
				if current.headingLevel == 0 || lvl <= current.headingLevel {
					segs = append(segs, current)
					current = &segment{heading: utils.NormalizeWhitespace(nodeText(n)), headingLevel: lvl}
				}
				current.raw.WriteString(nodeText(n))
				current.raw.WriteString(" ")
				return
			}
		}
		if n.Type == html.TextNode {
			current.raw.WriteString(n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, root := range container.Nodes {
		walk(root)
	}
	segs = append(segs, current)

	return build(segs)
}

// chunkByParagraphs accumulates paragraphs into a chunk until adding the
// next one would exceed the token budget. A container with no paragraphs
// becomes a single chunk.
func (c *Chunker) chunkByParagraphs(container *goquery.Selection) []model.ContentChunk {
	paras := container.Find("p")
	if paras.Length() == 0 {
		seg := &segment{}
		clone := container.Clone()
		seg.scriptBytes = textLenSel(clone.Find("script, style, noscript"))
		clone.Find("script, style, noscript").Remove()
		seg.raw.WriteString(clone.Text())
		seg.hasCode = container.Find("code, pre").Length() > 0
		seg.hasList = container.Find("ul, ol, dl").Length() > 0
		seg.hasTable = container.Find("table").Length() > 0
		return build([]*segment{seg})
	}

	var segs []*segment
	current := &segment{}
	currentTokens := 0

	paras.Each(func(_ int, p *goquery.Selection) {
		text := p.Text()
		tokens := utils.CountWords(text)
		if currentTokens > 0 && currentTokens+tokens > c.tokenBudget {
			segs = append(segs, current)
			current = &segment{}
			currentTokens = 0
		}
		current.raw.WriteString(text)
		current.raw.WriteString(" ")
		currentTokens += tokens
		if p.Find("code").Length() > 0 {
			current.hasCode = true
		}
	})
	segs = append(segs, current)

	return build(segs)
}

// build converts segments to chunks, dropping empty ones and assigning ids
// and running offsets into the extracted container text.
func build(segs []*segment) []model.ContentChunk {
	var chunks []model.ContentChunk
	offset := 0
	for _, seg := range segs {
		raw := seg.raw.String()
		text := utils.NormalizeWhitespace(raw)
		if text == "" {
			continue
		}
		words := utils.CountWords(text)
		idx := len(chunks)
		chunk := model.ContentChunk{
			ID:            fmt.Sprintf("chunk-%03d", idx+1),
			Index:         idx,
			StartOffset:   offset,
			EndOffset:     offset + len(text),
			Heading:       seg.heading,
			HeadingLevel:  seg.headingLevel,
			Text:          text,
			TokenEstimate: words,
			WordCount:     words,
			CharCount:     len(text),
			NoiseRatio:    noiseRatio(raw, seg.scriptBytes),
			HasCode:       seg.hasCode,
			HasList:       seg.hasList,
			HasTable:      seg.hasTable,
		}
		offset = chunk.EndOffset + 1
		chunks = append(chunks, chunk)
	}
	return chunks
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func textLen(n *html.Node) int {
	return len(nodeText(n))
}

func textLenSel(sel *goquery.Selection) int {
	total := 0
	sel.Each(func(_ int, s *goquery.Selection) {
		total += len(s.Text())
	})
	return total
}
