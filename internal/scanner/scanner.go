// Package scanner runs the full audit pipeline for one URL: fetch, rule
// execution, chunking, model-assisted enrichment, scoring and report
// assembly. The Scanner itself is stateless between scans and safe for
// concurrent use.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens/internal/chunker"
	"github.com/agentlens/agentlens/internal/enrich"
	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/hallucination"
	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/provider"
	"github.com/agentlens/agentlens/internal/rules"
	"github.com/agentlens/agentlens/internal/scoring"
	"github.com/agentlens/agentlens/internal/webclient"
)

// Config wires the scanner's collaborators. Zero values select the defaults.
type Config struct {
	// WebClient tunes the page transport.
	WebClient webclient.Config

	// Registry supplies the rule set. Nil selects the built-in catalog.
	Registry *rules.Registry
}

// Scanner orchestrates one scan end to end.
type Scanner struct {
	fetcher  *fetcher.Fetcher
	executor *rules.Executor
	logger   interfaces.Logger
}

// New builds a Scanner from config.
func New(cfg Config, logger interfaces.Logger) (*Scanner, error) {
	if logger == nil {
		return nil, fmt.Errorf("scanner: nil logger")
	}

	client, err := webclient.New(cfg.WebClient, logger)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}
	f, err := fetcher.New(client, logger)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}

	registry := cfg.Registry
	if registry == nil {
		registry, err = rules.DefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("scanner: %w", err)
		}
	}
	executor, err := rules.NewExecutor(registry, logger)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}

	return &Scanner{
		fetcher:  f,
		executor: executor,
		logger:   logger.With(interfaces.Field{Key: "component", Value: "scanner"}),
	}, nil
}

// Scan audits one URL. Invalid options and unusable URLs fail fast; after
// the fetch begins every failure degrades the report instead of aborting it.
func (s *Scanner) Scan(ctx context.Context, rawURL string, opts *model.ScanOptions) (*model.ScanResult, error) {
	if opts == nil {
		defaults := model.DefaultScanOptions()
		opts = &defaults
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("scan options: %w", err)
	}

	doc, fetchErr := s.fetcher.Fetch(ctx, rawURL)
	if doc == nil {
		return nil, fetchErr
	}
	return s.ScanFetched(ctx, rawURL, doc, fetchErr, opts)
}

// Fetch retrieves and parses a page without scanning it. Hosts that need the
// raw content before deciding whether to run the pipeline, such as the server
// cache fingerprinting page bytes, enter here and continue with ScanFetched.
func (s *Scanner) Fetch(ctx context.Context, rawURL string) (*fetcher.Document, error) {
	return s.fetcher.Fetch(ctx, rawURL)
}

// ScanFetched audits an already-fetched document. fetchErr carries the
// transport error from the fetch, if any, so a degraded fetch still produces
// the same report Scan would have built.
func (s *Scanner) ScanFetched(ctx context.Context, rawURL string, doc *fetcher.Document, fetchErr error, opts *model.ScanOptions) (*model.ScanResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("scanner: nil document")
	}
	if opts == nil {
		defaults := model.DefaultScanOptions()
		opts = &defaults
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("scan options: %w", err)
	}

	start := time.Now()
	result := &model.ScanResult{
		ScanID:     uuid.NewString(),
		URL:        rawURL,
		ScannedAt:  start.UTC(),
		StatusCode: doc.StatusCode,
		FetchedIn:  doc.FetchedIn,
	}

	var issues []model.Issue
	if fetchErr != nil && doc.Empty() {
		issues = append(issues, transportIssue(rawURL, fetchErr))
	}

	issues = append(issues, s.runRules(ctx, doc, opts)...)
	result.Chunking = s.runChunking(doc, opts)

	enrichment, modelIssues := s.runModelAnalysis(ctx, doc, opts)
	issues = append(issues, modelIssues...)
	if enrichment != nil {
		result.Enrichment = enrichment
		result.Hallucination = enrichment.Hallucination
		result.ModelLimitExceeded = enrichment.ModelLimitExceeded
	}

	// Scoring always sees the complete issue list; filtering only shapes
	// what the report presents.
	result.Scoring = scoring.Compute(issues)
	result.CategoryScores = scoring.LegacyCategoryMap(result.Scoring)
	result.Grade = result.Scoring.Grade

	result.Issues = applyFilters(issues, opts)
	result.Recommendations = recommendations(result)

	s.logger.Info("scan complete",
		interfaces.Field{Key: "scan_id", Value: result.ScanID},
		interfaces.Field{Key: "url", Value: rawURL},
		interfaces.Field{Key: "issues", Value: len(result.Issues)},
		interfaces.Field{Key: "score", Value: result.Scoring.Overall},
		interfaces.Field{Key: "grade", Value: result.Grade},
		interfaces.Field{Key: "elapsed", Value: time.Since(start).String()})

	return result, nil
}

// ScanDocument audits an already-parsed document, bypassing the network.
// Hosts that hold the page body and most tests enter here.
func (s *Scanner) ScanDocument(ctx context.Context, doc *fetcher.Document, opts *model.ScanOptions) (*model.ScanResult, error) {
	if doc == nil || doc.Doc == nil {
		return nil, fmt.Errorf("scanner: nil document")
	}
	return s.ScanFetched(ctx, doc.URL, doc, nil, opts)
}

func (s *Scanner) runRules(ctx context.Context, doc *fetcher.Document, opts *model.ScanOptions) []model.Issue {
	if doc.Doc == nil {
		return nil
	}
	rctx := &model.RuleContext{
		URL:        doc.URL,
		RawHTML:    doc.RawHTML,
		Doc:        doc.Doc,
		Options:    opts,
		StatusCode: doc.StatusCode,
		Headers:    doc.Headers,
	}
	return s.executor.RunAll(ctx, rctx)
}

func (s *Scanner) runChunking(doc *fetcher.Document, opts *model.ScanOptions) *model.ChunkingResult {
	if !opts.EnableChunking || doc.Empty() {
		return nil
	}
	c := chunker.New(opts.ChunkTokenBudget, s.logger)
	chunks, err := c.Chunk(doc.MainContent(), doc.MainContentSelector(), chunker.StrategyAuto)
	if err != nil {
		s.logger.Warn("chunking failed",
			interfaces.Field{Key: "url", Value: doc.URL},
			interfaces.Field{Key: "error", Value: err.Error()})
		return nil
	}
	if opts.EnableExtractability {
		for i := range chunks.Chunks {
			chunks.Chunks[i].Quality = chunker.Quality(&chunks.Chunks[i])
		}
	}
	return chunks
}

// runModelAnalysis dispatches to full enrichment when a provider is both
// configured and enabled, and to the local-only hallucination path otherwise.
func (s *Scanner) runModelAnalysis(ctx context.Context, doc *fetcher.Document, opts *model.ScanOptions) (*model.EnrichmentResult, []model.Issue) {
	if doc.Empty() {
		return nil, nil
	}

	if opts.EnableModelAnalysis && opts.Provider != nil {
		p, err := provider.New(*opts.Provider, s.logger)
		if err != nil {
			s.logger.Warn("provider construction failed, degrading to local analysis",
				interfaces.Field{Key: "error", Value: err.Error()})
			return s.localHallucination(ctx, doc, opts)
		}
		enricher, err := enrich.New(p, s.logger)
		if err != nil {
			return s.localHallucination(ctx, doc, opts)
		}
		return enricher.Enrich(ctx, doc, opts)
	}

	return s.localHallucination(ctx, doc, opts)
}

// localHallucination runs the provider-free contradiction detector so scans
// without model access still report internal inconsistencies.
func (s *Scanner) localHallucination(ctx context.Context, doc *fetcher.Document, opts *model.ScanOptions) (*model.EnrichmentResult, []model.Issue) {
	if !opts.EnableHallucination {
		return nil, nil
	}
	detector, err := hallucination.New(nil, s.logger)
	if err != nil {
		return nil, nil
	}
	report, _ := detector.Detect(ctx, doc)
	return &model.EnrichmentResult{Hallucination: report}, enrich.TriggerIssues(report)
}

// transportIssue records a fetch that produced no usable body as a single
// low-severity informational issue. The scan continues so the report still
// carries scores and the diagnostic.
func transportIssue(rawURL string, err error) model.Issue {
	return model.Issue{
		ID:          "technical.fetch-failure",
		Title:       "The page could not be fetched",
		Severity:    model.SeverityLow,
		Category:    model.CategoryTechnical,
		Description: fmt.Sprintf("Fetching %s failed before any content was received: %v. Crawlers and AI agents hitting the same condition see nothing at all.", rawURL, err),
		Remediation: "Make the URL reachable and serve an HTML body with a 2xx status.",
		ImpactScore: 10,
		Location:    &model.Location{URL: rawURL},
		Tags:        []string{"transport"},
		Confidence:  1.0,
		Timestamp:   time.Now().UTC(),
	}
}
