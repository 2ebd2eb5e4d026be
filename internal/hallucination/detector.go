// Package hallucination estimates how likely a downstream language model is
// to misstate facts about a page. Two independent paths feed one report:
// model-assisted claim verification (needs a provider) and local
// contradiction detection (pure heuristics). The subsystem still produces a
// meaningful, smaller report when no provider is configured.
package hallucination

import (
	"context"
	"fmt"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
)

// Risk score constants. Hand-tuned in the original ruleset; kept exactly for
// behavioral compatibility.
const (
	riskPerUnverified         = 7
	riskPerModelContradiction = 25
	riskPerLocalTrigger       = 10
	riskCap                   = 100
)

// Detector runs the fact-verification subsystem for one scan.
type Detector struct {
	provider interfaces.Provider // nil means local-only
	logger   interfaces.Logger
}

// New builds a Detector. provider may be nil, which degrades the subsystem
// to the local contradiction path.
func New(p interfaces.Provider, logger interfaces.Logger) (*Detector, error) {
	if logger == nil {
		return nil, fmt.Errorf("hallucination: nil logger")
	}
	return &Detector{
		provider: p,
		logger:   logger.With(interfaces.Field{Key: "component", Value: "hallucination"}),
	}, nil
}

// Detect runs both detection paths and folds them into one report.
//
// A provider failure on the model path is returned as an error alongside the
// local-only report, so the caller can both keep the degraded report and
// classify the failure (rate limit vs other).
func (d *Detector) Detect(ctx context.Context, doc *fetcher.Document) (*model.HallucinationReport, error) {
	report := &model.HallucinationReport{}

	localTriggers := d.detectLocal(doc)
	report.Triggers = append(report.Triggers, localTriggers...)
	report.Summary.LocalContradictions = len(localTriggers)

	var modelErr error
	if d.provider != nil {
		verifications, err := d.verifyClaims(ctx, doc)
		if err != nil {
			d.logger.Warn("claim verification failed, keeping local-only report",
				interfaces.Field{Key: "error", Value: err.Error()})
			modelErr = err
		} else {
			report.Verifications = verifications
			fillSummary(&report.Summary, verifications)
			report.Triggers = append(report.Triggers, triggersFromVerifications(verifications)...)
		}
	}

	report.RiskScore = riskScore(report.Summary)
	report.Recommendations = recommendations(report.Summary)

	d.logger.Info("hallucination detection complete",
		interfaces.Field{Key: "risk", Value: report.RiskScore},
		interfaces.Field{Key: "facts", Value: report.Summary.TotalFacts},
		interfaces.Field{Key: "local_contradictions", Value: report.Summary.LocalContradictions})

	return report, modelErr
}

func fillSummary(s *model.FactCheckSummary, verifications []model.FactVerification) {
	s.TotalFacts = len(verifications)
	for _, v := range verifications {
		switch v.Status {
		case model.StatusVerified:
			s.VerifiedFacts++
		case model.StatusUnverified:
			s.UnverifiedFacts++
		case model.StatusContradicts:
			s.ModelContradictions++
		}
	}
}

// triggersFromVerifications builds the missing_fact and contradiction
// triggers of the model path.
func triggersFromVerifications(verifications []model.FactVerification) []model.HallucinationTrigger {
	var unverified, contradicted []model.FactVerification
	for _, v := range verifications {
		switch v.Status {
		case model.StatusUnverified:
			unverified = append(unverified, v)
		case model.StatusContradicts:
			contradicted = append(contradicted, v)
		}
	}

	var triggers []model.HallucinationTrigger

	if n := len(unverified); n > 0 {
		severity := model.SeverityMedium
		switch {
		case n > 6:
			severity = model.SeverityCritical
		case n > 3:
			severity = model.SeverityHigh
		}
		trigger := model.HallucinationTrigger{
			Type:        model.TriggerMissingFact,
			Severity:    severity,
			Description: fmt.Sprintf("%d claim(s) on the page cannot be verified from model training knowledge; answer engines are likely to hedge or invent around them.", n),
			Confidence:  0.8,
		}
		for _, v := range unverified {
			trigger.Evidence = append(trigger.Evidence, v.Fact.Statement)
		}
		triggers = append(triggers, trigger)
	}

	if n := len(contradicted); n > 0 {
		trigger := model.HallucinationTrigger{
			Type:        model.TriggerContradiction,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("%d claim(s) contradict what the model believes it knows; downstream answers will pick one side unpredictably.", n),
			Confidence:  0.85,
		}
		for _, v := range contradicted {
			evidence := v.Fact.Statement
			if v.Evidence != "" {
				evidence += " (model: " + v.Evidence + ")"
			}
			trigger.Evidence = append(trigger.Evidence, evidence)
		}
		triggers = append(triggers, trigger)
	}

	return triggers
}

func riskScore(s model.FactCheckSummary) int {
	score := s.UnverifiedFacts*riskPerUnverified +
		s.ModelContradictions*riskPerModelContradiction +
		s.LocalContradictions*riskPerLocalTrigger
	if score > riskCap {
		return riskCap
	}
	return score
}

func recommendations(s model.FactCheckSummary) []string {
	var recs []string
	if s.UnverifiedFacts > 0 {
		recs = append(recs, fmt.Sprintf("%d claim(s) are unverifiable by AI systems; add citations, dates or sources so they can be grounded.", s.UnverifiedFacts))
	}
	if s.ModelContradictions > 0 {
		recs = append(recs, fmt.Sprintf("%d claim(s) conflict with common model knowledge; double-check them or make their context explicit.", s.ModelContradictions))
	}
	if s.LocalContradictions > 0 {
		recs = append(recs, fmt.Sprintf("%d internal contradiction(s) detected between sections of the page; reconcile the conflicting values.", s.LocalContradictions))
	}
	if len(recs) == 0 {
		recs = append(recs, "No hallucination triggers detected.")
	}
	return recs
}
