package chunker

import (
	"strings"
	"testing"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/model"
)

func mustDoc(t *testing.T, html string) *fetcher.Document {
	t.Helper()
	doc, err := fetcher.Parse("http://example.test/", html)
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

const headedPage = `<html><body><main>
<h1>Widgets</h1>
<p>Widgets are small useful things that people buy for many reasons.</p>
<h2>History</h2>
<p>The history of widgets goes back a long time and involves many people.</p>
<h2>Usage</h2>
<p>Widgets are used daily around the world in all sorts of settings.</p>
</main></body></html>`

func TestChunkByHeadings(t *testing.T) {
	doc := mustDoc(t, headedPage)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyAuto)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	if result.Strategy != string(StrategyHeading) {
		t.Fatalf("expected heading-based strategy, got %q", result.Strategy)
	}
	if result.Container != "main" {
		t.Fatalf("expected container main, got %q", result.Container)
	}

	// The h2 sections sit below the page's single h1, so everything belongs
	// to the one h1 chunk.
	if len(result.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(result.Chunks))
	}
	chunk := result.Chunks[0]
	if chunk.Heading != "Widgets" || chunk.HeadingLevel != 1 {
		t.Fatalf("chunk heading %q level %d, want Widgets level 1", chunk.Heading, chunk.HeadingLevel)
	}
	for _, phrase := range []string{"History", "Usage"} {
		if !strings.Contains(chunk.Text, phrase) {
			t.Errorf("subsection %q missing from the h1 chunk", phrase)
		}
	}
}

func TestSiblingHeadingsSplitIntoChunks(t *testing.T) {
	doc := mustDoc(t, `<html><body><main>
<p>An introduction before any heading appears on the page.</p>
<h2>History</h2>
<p>The history of widgets goes back a long time.</p>
<h2>Usage</h2>
<p>Widgets are used daily around the world.</p>
</main></body></html>`)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyHeading)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(result.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(result.Chunks))
	}
	if result.Chunks[0].Heading != "" {
		t.Errorf("preamble chunk carries heading %q", result.Chunks[0].Heading)
	}
	wantHeadings := []string{"History", "Usage"}
	for i, chunk := range result.Chunks[1:] {
		if chunk.Heading != wantHeadings[i] || chunk.HeadingLevel != 2 {
			t.Errorf("chunk %d: heading %q level %d, want %q level 2",
				i+1, chunk.Heading, chunk.HeadingLevel, wantHeadings[i])
		}
	}
}

func TestDeeperHeadingsStayInsideChunk(t *testing.T) {
	doc := mustDoc(t, `<html><body><main>
<h2>Section</h2>
<p>Section intro text goes here.</p>
<h3>Subsection</h3>
<p>Subsection text stays in the same chunk.</p>
<h2>Next section</h2>
<p>New chunk starts here.</p>
</main></body></html>`)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyHeading)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	if !strings.Contains(result.Chunks[0].Text, "Subsection text") {
		t.Fatal("h3 content escaped its parent h2 chunk")
	}
}

func TestHeadingRequestFallsBackWithoutHeadings(t *testing.T) {
	doc := mustDoc(t, `<html><body><main>
<p>Only paragraphs here, not a single heading anywhere on this page.</p>
<p>A second paragraph to make the content non-trivial.</p>
</main></body></html>`)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyHeading)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if result.Strategy != labelFallback {
		t.Fatalf("expected %q, got %q", labelFallback, result.Strategy)
	}
}

func TestAutoWithoutHeadingsUsesParagraphs(t *testing.T) {
	doc := mustDoc(t, `<html><body><main><p>No headings at all.</p></main></body></html>`)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyAuto)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	// Auto picks paragraph chunking directly; no fallback label.
	if result.Strategy != string(StrategyParagraph) {
		t.Fatalf("expected paragraph-based, got %q", result.Strategy)
	}
}

func TestParagraphChunkingRespectsTokenBudget(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for i := 0; i < 10; i++ {
		sb.WriteString("<p>")
		sb.WriteString(strings.Repeat("word ", 40))
		sb.WriteString("</p>")
	}
	sb.WriteString("</main></body></html>")
	doc := mustDoc(t, sb.String())

	c := New(100, nil)
	result, err := c.Chunk(doc.MainContent(), "main", StrategyParagraph)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	// 10 paragraphs of ~40 tokens against a 100 token budget: 2 per chunk.
	if len(result.Chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(result.Chunks))
	}
	for _, chunk := range result.Chunks {
		if chunk.TokenEstimate > 100 {
			t.Errorf("chunk %s exceeds budget: %d tokens", chunk.ID, chunk.TokenEstimate)
		}
	}
}

func TestChunksCoverAllContent(t *testing.T) {
	doc := mustDoc(t, headedPage)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyAuto)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	var joined strings.Builder
	for _, chunk := range result.Chunks {
		joined.WriteString(chunk.Text)
		joined.WriteString(" ")
	}
	for _, phrase := range []string{
		"small useful things",
		"goes back a long time",
		"used daily around the world",
	} {
		if !strings.Contains(joined.String(), phrase) {
			t.Errorf("phrase %q missing from chunk texts", phrase)
		}
	}
}

func TestChunkIDsAndOffsets(t *testing.T) {
	doc := mustDoc(t, headedPage)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyAuto)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	prevEnd := -1
	for i, chunk := range result.Chunks {
		wantID := []string{"chunk-001", "chunk-002", "chunk-003"}[i]
		if chunk.ID != wantID {
			t.Errorf("chunk %d: id %q, want %q", i, chunk.ID, wantID)
		}
		if chunk.Index != i {
			t.Errorf("chunk %d: index %d", i, chunk.Index)
		}
		if chunk.StartOffset <= prevEnd {
			t.Errorf("chunk %d: start %d overlaps previous end %d", i, chunk.StartOffset, prevEnd)
		}
		if chunk.EndOffset-chunk.StartOffset != len(chunk.Text) {
			t.Errorf("chunk %d: offsets do not span the text", i)
		}
		prevEnd = chunk.EndOffset
	}
}

func TestScriptTextExcludedFromChunks(t *testing.T) {
	doc := mustDoc(t, `<html><body><main>
<h1>Title</h1>
<p>Visible content for the reader.</p>
<script>var secret = "analytics payload";</script>
</main></body></html>`)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyAuto)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	for _, chunk := range result.Chunks {
		if strings.Contains(chunk.Text, "analytics payload") {
			t.Fatal("script text leaked into chunk content")
		}
	}
}

func TestChunkFeatureFlags(t *testing.T) {
	doc := mustDoc(t, `<html><body><main>
<h1>Docs</h1>
<p>Intro.</p>
<pre><code>x := 1</code></pre>
<ul><li>one</li><li>two</li></ul>
<table><tr><td>cell</td></tr></table>
</main></body></html>`)
	c := New(0, nil)

	result, err := c.Chunk(doc.MainContent(), "main", StrategyHeading)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(result.Chunks))
	}
	chunk := result.Chunks[0]
	if !chunk.HasCode || !chunk.HasList || !chunk.HasTable {
		t.Fatalf("feature flags wrong: code=%v list=%v table=%v",
			chunk.HasCode, chunk.HasList, chunk.HasTable)
	}
}

func TestEmptyContainerIsAnError(t *testing.T) {
	doc := mustDoc(t, `<html><body></body></html>`)
	c := New(0, nil)
	if _, err := c.Chunk(doc.Doc.Find("article"), "article", StrategyAuto); err == nil {
		t.Fatal("expected error for empty container")
	}
}

func TestUnknownStrategyIsAnError(t *testing.T) {
	doc := mustDoc(t, headedPage)
	c := New(0, nil)
	if _, err := c.Chunk(doc.MainContent(), "main", Strategy("semantic")); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestQualityDemotion(t *testing.T) {
	cases := []struct {
		name  string
		chunk model.ContentChunk
		want  model.ChunkQuality
	}{
		{
			name:  "all checks pass",
			chunk: model.ContentChunk{TokenEstimate: 300, NoiseRatio: 0.1, Heading: "Topic"},
			want:  model.QualityExcellent,
		},
		{
			name:  "one violation",
			chunk: model.ContentChunk{TokenEstimate: 300, NoiseRatio: 0.1},
			want:  model.QualityGood,
		},
		{
			name:  "two violations",
			chunk: model.ContentChunk{TokenEstimate: 10, NoiseRatio: 0.1},
			want:  model.QualityFair,
		},
		{
			name:  "three violations",
			chunk: model.ContentChunk{TokenEstimate: 10, NoiseRatio: 0.8},
			want:  model.QualityPoor,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Quality(&tc.chunk); got != tc.want {
				t.Fatalf("Quality = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNoiseRatioBounds(t *testing.T) {
	if got := noiseRatio("", 0); got != 0 {
		t.Fatalf("empty input: %v", got)
	}
	clean := noiseRatio("plain readable sentence", 0)
	noisy := noiseRatio("    !!!!!    ----    ", 500)
	if noisy <= clean {
		t.Fatalf("noisy text (%v) should outrank clean text (%v)", noisy, clean)
	}
	if noisy > 1 {
		t.Fatalf("noise ratio above 1: %v", noisy)
	}
}

func TestAnalyzeStats(t *testing.T) {
	chunks := []model.ContentChunk{
		{TokenEstimate: 100, WordCount: 100},
		{TokenEstimate: 200, WordCount: 200},
	}
	result := analyze(chunks)
	if result.TotalTokens != 300 || result.TotalWords != 300 {
		t.Fatalf("totals wrong: %d tokens, %d words", result.TotalTokens, result.TotalWords)
	}
	if result.MeanTokens != 150 {
		t.Fatalf("mean %v, want 150", result.MeanTokens)
	}
	if result.StdevTokens == 0 {
		t.Fatal("stdev should be nonzero for unequal chunks")
	}
}
