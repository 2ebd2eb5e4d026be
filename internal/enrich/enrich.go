// Package enrich fans out the model-assisted analysis tasks concurrently
// over one provider and folds their findings back into the issue list.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/hallucination"
	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
)

// Enricher coordinates the five enrichment tasks. All tasks share one parsed
// document and one provider; no task mutates another's inputs, so the fan-out
// needs no locking.
type Enricher struct {
	provider interfaces.Provider
	detector *hallucination.Detector
	logger   interfaces.Logger
}

// New wires an Enricher. provider must be non-nil; the caller decides whether
// enrichment runs at all.
func New(p interfaces.Provider, logger interfaces.Logger) (*Enricher, error) {
	if p == nil {
		return nil, fmt.Errorf("enrich: nil provider")
	}
	if logger == nil {
		return nil, fmt.Errorf("enrich: nil logger")
	}
	detector, err := hallucination.New(p, logger)
	if err != nil {
		return nil, err
	}
	return &Enricher{
		provider: p,
		detector: detector,
		logger:   logger.With(interfaces.Field{Key: "component", Value: "enricher"}),
	}, nil
}

// taskOutcome carries one task's settled result through the fan-in channel.
type taskOutcome struct {
	name  string
	apply func(*model.EnrichmentResult)
	err   error
}

// Enrich runs all requested tasks concurrently and returns the merged result
// plus the issues derived from high-severity findings.
//
// Task isolation: a failing task yields a nil payload for that task only and
// is logged; sibling tasks always run to completion. A rate-limit failure
// anywhere sets ModelLimitExceeded instead of producing a failure issue.
func (e *Enricher) Enrich(ctx context.Context, doc *fetcher.Document, opts *model.ScanOptions) (*model.EnrichmentResult, []model.Issue) {
	type task struct {
		name string
		run  func(context.Context) (func(*model.EnrichmentResult), error)
	}

	tasks := []task{
		{name: "comprehension", run: func(ctx context.Context) (func(*model.EnrichmentResult), error) {
			res, err := e.comprehension(ctx, doc)
			return func(out *model.EnrichmentResult) { out.Comprehension = res }, err
		}},
		{name: "entities", run: func(ctx context.Context) (func(*model.EnrichmentResult), error) {
			res, err := e.entities(ctx, doc)
			return func(out *model.EnrichmentResult) { out.Entities = res }, err
		}},
		{name: "faq", run: func(ctx context.Context) (func(*model.EnrichmentResult), error) {
			res, err := e.faq(ctx, doc)
			return func(out *model.EnrichmentResult) { out.FAQ = res }, err
		}},
		{name: "mirror", run: func(ctx context.Context) (func(*model.EnrichmentResult), error) {
			res, err := e.mirrorTest(ctx, doc)
			return func(out *model.EnrichmentResult) { out.MirrorTest = res }, err
		}},
	}
	if opts == nil || opts.EnableHallucination {
		tasks = append(tasks, task{name: "hallucination", run: func(ctx context.Context) (func(*model.EnrichmentResult), error) {
			// Detect returns a usable local-only report even when the model
			// path failed; keep whatever came back.
			res, err := e.detector.Detect(ctx, doc)
			return func(out *model.EnrichmentResult) { out.Hallucination = res }, err
		}})
	}

	outcomes := make(chan taskOutcome, len(tasks))
	for _, t := range tasks {
		t := t
		go func() {
			defer func() {
				if r := recover(); r != nil {
					outcomes <- taskOutcome{name: t.name, err: fmt.Errorf("task %s panicked: %v", t.name, r)}
				}
			}()
			apply, err := t.run(ctx)
			outcomes <- taskOutcome{name: t.name, apply: apply, err: err}
		}()
	}

	result := &model.EnrichmentResult{}
	var issues []model.Issue

	for range tasks {
		outcome := <-outcomes
		if outcome.apply != nil {
			outcome.apply(result)
		}
		if outcome.err == nil {
			continue
		}
		if isRateLimited(outcome.err) {
			e.logger.Warn("enrichment task hit provider rate limit",
				interfaces.Field{Key: "task", Value: outcome.name})
			result.ModelLimitExceeded = true
			continue
		}
		e.logger.Warn("enrichment task failed",
			interfaces.Field{Key: "task", Value: outcome.name},
			interfaces.Field{Key: "error", Value: outcome.err.Error()})
		issues = append(issues, taskFailureIssue(outcome.name, outcome.err))
	}

	// Fold high-severity findings back into the issue list.
	if result.MirrorTest != nil {
		issues = append(issues, mirrorIssues(result.MirrorTest)...)
	}
	if result.Hallucination != nil {
		issues = append(issues, TriggerIssues(result.Hallucination)...)
	}

	return result, issues
}

func taskFailureIssue(name string, err error) model.Issue {
	return model.Issue{
		ID:          "technical.enrichment-failure",
		Title:       "A model analysis task did not complete",
		Severity:    model.SeverityLow,
		Category:    model.CategoryTechnical,
		Description: fmt.Sprintf("The %s task failed and its result is absent from this report: %v", name, err),
		Remediation: "This is a scanner diagnostic, not a page problem. Re-run the scan with model analysis enabled.",
		ImpactScore: 2,
		Evidence:    []string{name},
		Tags:        []string{"diagnostic", "enrichment"},
		Confidence:  1.0,
		Timestamp:   time.Now().UTC(),
	}
}
