package model

// FactCategory tags the nature of an extracted claim.
type FactCategory string

const (
	FactDate   FactCategory = "date"
	FactNumber FactCategory = "number"
	FactName   FactCategory = "name"
	FactEvent  FactCategory = "event"
	FactClaim  FactCategory = "claim"
)

// VerificationStatus is the model's own-knowledge judgment of one claim.
type VerificationStatus string

const (
	StatusVerified    VerificationStatus = "verified"
	StatusUnverified  VerificationStatus = "unverified"
	StatusContradicts VerificationStatus = "contradicts"
)

// ExtractedFact is one specific, checkable claim pulled from the content.
// Facts are created once per scan and are read-only inputs to trigger
// construction and issue conversion; they never outlive the scan.
type ExtractedFact struct {
	ID         string       `json:"id"`
	Statement  string       `json:"statement"`
	Category   FactCategory `json:"category"`
	Confidence float64      `json:"confidence"`
	Context    string       `json:"context,omitempty"`
}

// Contradiction records a statement that conflicts with a verified fact.
type Contradiction struct {
	Statement string `json:"statement"`
	Location  string `json:"location,omitempty"`
}

// FactVerification pairs a fact with the model's judgment about it.
type FactVerification struct {
	Fact           ExtractedFact      `json:"fact"`
	Status         VerificationStatus `json:"status"`
	Verified       bool               `json:"verified"`
	Evidence       string             `json:"evidence,omitempty"`
	Contradictions []Contradiction    `json:"contradictions,omitempty"`
}

// TriggerType classifies why a group of facts is hallucination-prone.
type TriggerType string

const (
	TriggerMissingFact   TriggerType = "missing_fact"
	TriggerContradiction TriggerType = "contradiction"
	TriggerAmbiguity     TriggerType = "ambiguity"
	TriggerInconsistency TriggerType = "inconsistency"
)

// HallucinationTrigger groups one or more facts or verifications under a
// trigger type with a severity and supporting evidence.
type HallucinationTrigger struct {
	Type        TriggerType `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Evidence    []string    `json:"evidence,omitempty"`
	Confidence  float64     `json:"confidence"`
}

// FactCheckSummary is the count view surfaced in reports. TotalFacts stays 0
// when no provider was configured; local contradictions are still counted.
type FactCheckSummary struct {
	TotalFacts          int `json:"totalFacts"`
	VerifiedFacts       int `json:"verifiedFacts"`
	UnverifiedFacts     int `json:"unverifiedFacts"`
	ModelContradictions int `json:"modelContradictions"`
	LocalContradictions int `json:"localContradictions"`
}

// HallucinationReport is the full output of the fact-verification subsystem.
type HallucinationReport struct {
	RiskScore       int                    `json:"riskScore"`
	Summary         FactCheckSummary       `json:"factCheckSummary"`
	Verifications   []FactVerification     `json:"verifications,omitempty"`
	Triggers        []HallucinationTrigger `json:"triggers,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
}
