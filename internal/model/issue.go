package model

import "time"

// Severity buckets findings by how badly they hurt machine readability.
// Ordering matters: info < low < medium < high < critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for comparisons; higher is worse.
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal position of the severity (info=0 .. critical=4).
// Unknown severities rank below info.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is as severe as other or worse.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// Category is the closed set of tags an Issue can carry. Scoring weights are
// keyed by these values, so new categories require a matching weight entry.
type Category string

const (
	CategoryStructure      Category = "structure-readability"
	CategoryCrawlability   Category = "crawlability"
	CategoryKnowledgeGraph Category = "knowledge-graph"
	CategoryAccessibility  Category = "accessibility"
	CategoryChunking       Category = "chunking"
	CategoryHallucination  Category = "hallucination"
	CategoryTechnical      Category = "technical"
	CategoryMetadata       Category = "metadata"
	CategorySemantics      Category = "semantics"
	CategoryContentQuality Category = "content-quality"
	CategoryFreshness      Category = "freshness"
	CategoryLinking        Category = "linking"
	CategoryMedia          Category = "media"
	CategoryLocalization   Category = "localization"
	CategoryTrust          Category = "trust"
	CategoryPerformance    Category = "performance"
)

// AllCategories lists every category in a stable order.
func AllCategories() []Category {
	return []Category{
		CategoryStructure,
		CategoryCrawlability,
		CategoryKnowledgeGraph,
		CategoryAccessibility,
		CategoryChunking,
		CategoryHallucination,
		CategoryTechnical,
		CategoryMetadata,
		CategorySemantics,
		CategoryContentQuality,
		CategoryFreshness,
		CategoryLinking,
		CategoryMedia,
		CategoryLocalization,
		CategoryTrust,
		CategoryPerformance,
	}
}

// Location points at where in the document an issue was observed. All fields
// are optional; an empty Location means "the document as a whole".
type Location struct {
	URL      string `json:"url,omitempty"`
	Selector string `json:"selector,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// Issue is the unit of finding. Issues are immutable once emitted: the
// filtering and scoring stages derive new values from them but never mutate
// the source issue.
//
// ImpactScore and Confidence are independent axes. ImpactScore is the
// author-assigned base weight of the problem (0-100); Confidence is how sure
// the emitter is that the problem is real (0.0-1.0). Scoring multiplies the
// two together with severity and category weights; neither substitutes for
// the other.
type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Severity    Severity  `json:"severity"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Remediation string    `json:"remediation,omitempty"`
	ImpactScore int       `json:"impactScore"`
	Location    *Location `json:"location,omitempty"`
	Evidence    []string  `json:"evidence,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Confidence  float64   `json:"confidence"`
	Timestamp   time.Time `json:"timestamp"`
}
