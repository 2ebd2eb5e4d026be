package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/testutil"
	"github.com/agentlens/agentlens/internal/webclient"
)

// newTestScanner wires a Scanner onto a canned transport.
func newTestScanner(t *testing.T, client *testutil.DummyWebClient) *Scanner {
	t.Helper()
	backend := webclient.Backend("canned")
	webclient.RegisterBackend(backend, func(cfg webclient.Config, logger interfaces.Logger) (webclient.WebClient, error) {
		return client, nil
	})
	s, err := New(Config{WebClient: webclient.Config{Backend: backend}}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func issueIDs(issues []model.Issue) map[string]bool {
	out := make(map[string]bool, len(issues))
	for _, iss := range issues {
		out[iss.ID] = true
	}
	return out
}

const unstructuredPage = `<html><body>
<div>A single run-on block of text describing a product in loose prose with
no headings anywhere, no structured data, and nothing an automated reader
could use to orient itself beyond the raw words in this one container.</div>
</body></html>`

func TestScanUnstructuredPage(t *testing.T) {
	const url = "http://example.test/plain"
	s := newTestScanner(t, &testutil.DummyWebClient{Pages: map[string]string{url: unstructuredPage}})

	result, err := s.Scan(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	ids := issueIDs(result.Issues)
	if !ids["crawlability.missing-h1"] {
		t.Error("expected a missing-h1 finding")
	}
	if !ids["knowledge-graph.missing-jsonld"] {
		t.Error("expected a missing-jsonld finding")
	}

	if result.Chunking == nil {
		t.Fatal("chunking enabled by default but absent from result")
	}
	if result.Chunking.Strategy != "paragraph-based" {
		t.Fatalf("headingless page should chunk by paragraphs, got %q", result.Chunking.Strategy)
	}

	if result.ScanID == "" {
		t.Error("scan id not assigned")
	}
	if result.Scoring == nil || result.Grade != result.Scoring.Grade {
		t.Error("grade not taken from the scoring result")
	}
	if len(result.CategoryScores) == 0 {
		t.Error("per-category score map is empty")
	}
	if result.StatusCode != 200 {
		t.Errorf("status code %d, want 200", result.StatusCode)
	}
}

func TestScanLocalHallucinationWithoutProvider(t *testing.T) {
	const url = "http://example.test/conflict"
	page := `<html><body><main>
<h1>About</h1>
<p>Acme Corporation was founded in 2010 by two engineers.</p>
<p>Our story: the company was founded in 2015 in Berlin.</p>
</main></body></html>`
	s := newTestScanner(t, &testutil.DummyWebClient{Pages: map[string]string{url: page}})

	result, err := s.Scan(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.Hallucination == nil {
		t.Fatal("hallucination report missing")
	}
	if result.Hallucination.Summary.TotalFacts != 0 {
		t.Fatalf("no provider means no model fact checks, got %d", result.Hallucination.Summary.TotalFacts)
	}
	if result.Hallucination.Summary.LocalContradictions != 1 {
		t.Fatalf("expected 1 local contradiction, got %d", result.Hallucination.Summary.LocalContradictions)
	}
	if !issueIDs(result.Issues)["hallucination.contradiction"] {
		t.Fatal("local contradiction did not surface as an issue")
	}
	if result.ModelLimitExceeded {
		t.Fatal("model limit flag set without any provider call")
	}
}

func TestScanTransportFailureDegrades(t *testing.T) {
	s := newTestScanner(t, &testutil.DummyWebClient{Err: errors.New("connection refused")})

	result, err := s.Scan(context.Background(), "http://example.test/down", nil)
	if err != nil {
		t.Fatalf("transport failures must degrade, not abort: %v", err)
	}
	var fetchIssue *model.Issue
	for i := range result.Issues {
		if result.Issues[i].ID == "technical.fetch-failure" {
			fetchIssue = &result.Issues[i]
			break
		}
	}
	if fetchIssue == nil {
		t.Fatal("expected a fetch-failure issue")
	}
	if fetchIssue.Severity != model.SeverityLow {
		t.Fatalf("transport failure severity %q, want %q", fetchIssue.Severity, model.SeverityLow)
	}
	if result.Scoring == nil {
		t.Fatal("scoring must still run on the degraded report")
	}
}

func TestScanRejectsInvalidURL(t *testing.T) {
	s := newTestScanner(t, &testutil.DummyWebClient{})
	if _, err := s.Scan(context.Background(), "not a url", nil); err == nil {
		t.Fatal("expected error for unusable URL")
	}
}

func TestScanRejectsInvalidOptions(t *testing.T) {
	s := newTestScanner(t, &testutil.DummyWebClient{})
	opts := model.DefaultScanOptions()
	opts.MinConfidence = 3
	if _, err := s.Scan(context.Background(), "http://example.test/", &opts); err == nil {
		t.Fatal("expected validation error before any fetch")
	}
	client := &testutil.DummyWebClient{}
	s = newTestScanner(t, client)
	_, _ = s.Scan(context.Background(), "http://example.test/", &opts)
	if len(client.Requests) != 0 {
		t.Fatal("invalid options must fail before the network")
	}
}

func TestScanDocumentFiltering(t *testing.T) {
	doc, err := fetcher.Parse("http://example.test/", unstructuredPage)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := newTestScanner(t, &testutil.DummyWebClient{})

	opts := model.DefaultScanOptions()
	opts.MinImpactScore = 8
	opts.MinConfidence = 0.8
	opts.MaxIssues = 3
	opts.EnableHallucination = false

	result, err := s.ScanDocument(context.Background(), doc, &opts)
	if err != nil {
		t.Fatalf("ScanDocument: %v", err)
	}

	if len(result.Issues) > 3 {
		t.Fatalf("cap of 3 exceeded: %d issues", len(result.Issues))
	}
	for i, iss := range result.Issues {
		if iss.ImpactScore < 8 {
			t.Errorf("issue %s below impact threshold: %d", iss.ID, iss.ImpactScore)
		}
		if iss.Confidence < 0.8 {
			t.Errorf("issue %s below confidence threshold: %v", iss.ID, iss.Confidence)
		}
		if i > 0 && result.Issues[i-1].ImpactScore < iss.ImpactScore {
			t.Errorf("issues not sorted by impact: %d before %d",
				result.Issues[i-1].ImpactScore, iss.ImpactScore)
		}
	}

	// Scoring sees the unfiltered list: more categories carry issues than the
	// three presented ones.
	withIssues := 0
	for _, cs := range result.Scoring.Categories {
		if cs.IssueCount > 0 {
			withIssues++
		}
	}
	if withIssues <= 1 {
		t.Fatalf("scoring appears to have run on the filtered list (%d categories with issues)", withIssues)
	}
}

func TestChunkQualityFollowsExtractabilityToggle(t *testing.T) {
	doc, err := fetcher.Parse("http://example.test/", unstructuredPage)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := newTestScanner(t, &testutil.DummyWebClient{})

	opts := model.DefaultScanOptions()
	opts.EnableHallucination = false

	result, err := s.ScanDocument(context.Background(), doc, &opts)
	if err != nil {
		t.Fatalf("ScanDocument: %v", err)
	}
	if result.Chunking == nil || len(result.Chunking.Chunks) == 0 {
		t.Fatal("expected chunks from the default options")
	}
	for _, c := range result.Chunking.Chunks {
		if c.Quality == "" {
			t.Fatalf("chunk %s carries no quality verdict with extractability enabled", c.ID)
		}
	}

	opts.EnableExtractability = false
	result, err = s.ScanDocument(context.Background(), doc, &opts)
	if err != nil {
		t.Fatalf("ScanDocument: %v", err)
	}
	for _, c := range result.Chunking.Chunks {
		if c.Quality != "" {
			t.Fatalf("chunk %s graded despite extractability being disabled", c.ID)
		}
	}
}

func TestScanDocumentDisablesChunking(t *testing.T) {
	doc, err := fetcher.Parse("http://example.test/", unstructuredPage)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := newTestScanner(t, &testutil.DummyWebClient{})

	opts := model.DefaultScanOptions()
	opts.EnableChunking = false

	result, err := s.ScanDocument(context.Background(), doc, &opts)
	if err != nil {
		t.Fatalf("ScanDocument: %v", err)
	}
	if result.Chunking != nil {
		t.Fatal("chunking result present despite being disabled")
	}
}

func TestRecommendationsComeFromTopIssues(t *testing.T) {
	const url = "http://example.test/plain"
	s := newTestScanner(t, &testutil.DummyWebClient{Pages: map[string]string{url: unstructuredPage}})

	result, err := s.Scan(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Recommendations) == 0 {
		t.Fatal("expected recommendations for a flawed page")
	}
	if len(result.Recommendations) > maxRecommendations {
		t.Fatalf("recommendation cap exceeded: %d", len(result.Recommendations))
	}
	if result.Recommendations[0] != result.Issues[0].Remediation {
		t.Fatalf("first recommendation %q does not match top issue remediation %q",
			result.Recommendations[0], result.Issues[0].Remediation)
	}
}
