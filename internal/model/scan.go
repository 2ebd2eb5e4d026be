package model

import "time"

// Entity is one named thing the entity-extraction task found on the page.
type Entity struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
}

// ComprehensionResult is the model's summary view of the page.
type ComprehensionResult struct {
	Summary    string   `json:"summary"`
	MainTopics []string `json:"mainTopics,omitempty"`
	Audience   string   `json:"audience,omitempty"`
	Confidence float64  `json:"confidence"`
}

// FAQItem is one generated question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MirrorMismatch is one divergence between what the page says and what the
// model independently understood it to say.
type MirrorMismatch struct {
	Aspect      string   `json:"aspect"`
	Intended    string   `json:"intended"`
	Interpreted string   `json:"interpreted"`
	Severity    Severity `json:"severity"`
	Evidence    []string `json:"evidence,omitempty"`
}

// MirrorTestResult is the outcome of comparing on-page messaging against the
// model's interpretation of the same page.
type MirrorTestResult struct {
	Alignment  float64          `json:"alignment"`
	Mismatches []MirrorMismatch `json:"mismatches,omitempty"`
}

// EnrichmentResult bundles the payloads of the concurrent enrichment tasks.
// A nil field means that task failed or was not requested; sibling tasks are
// unaffected.
type EnrichmentResult struct {
	Comprehension *ComprehensionResult `json:"comprehension,omitempty"`
	Entities      []Entity             `json:"entities,omitempty"`
	FAQ           []FAQItem            `json:"faq,omitempty"`
	Hallucination *HallucinationReport `json:"hallucination,omitempty"`
	MirrorTest    *MirrorTestResult    `json:"mirrorTest,omitempty"`

	// ModelLimitExceeded is set when any task failed on a rate-limit or quota
	// condition. It is a soft warning, not a scan failure.
	ModelLimitExceeded bool `json:"modelLimitExceeded"`
}

// ScanResult is what scan(url, options) hands back to the host.
type ScanResult struct {
	ScanID    string    `json:"scanId"`
	URL       string    `json:"url"`
	ScannedAt time.Time `json:"scannedAt"`

	// Issues is the filtered, sorted, capped list.
	Issues []Issue `json:"issues"`

	// CategoryScores is the legacy per-category map; Scoring is the full view.
	CategoryScores map[Category]float64 `json:"categoryScores"`
	Scoring        *ScoringResult       `json:"scoring"`

	Chunking      *ChunkingResult      `json:"chunking,omitempty"`
	Hallucination *HallucinationReport `json:"hallucination,omitempty"`
	Enrichment    *EnrichmentResult    `json:"enrichment,omitempty"`

	ModelLimitExceeded bool `json:"modelLimitExceeded"`

	// Recommendations are derived from the highest-impact issues.
	Recommendations []string `json:"recommendations,omitempty"`

	Grade string `json:"grade"`

	StatusCode int           `json:"statusCode,omitempty"`
	FetchedIn  time.Duration `json:"fetchedIn,omitempty"`
}
