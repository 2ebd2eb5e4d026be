package model

// SeverityBreakdown counts issues per severity inside one category.
type SeverityBreakdown struct {
	Info     int `json:"info"`
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Add increments the counter matching s.
func (b *SeverityBreakdown) Add(s Severity) {
	switch s {
	case SeverityInfo:
		b.Info++
	case SeverityLow:
		b.Low++
	case SeverityMedium:
		b.Medium++
	case SeverityHigh:
		b.High++
	case SeverityCritical:
		b.Critical++
	}
}

// CategoryScore is the scored view of one category.
type CategoryScore struct {
	Category       Category          `json:"category"`
	Score          float64           `json:"score"`
	IssueCount     int               `json:"issueCount"`
	WeightedImpact float64           `json:"weightedImpact"`
	Weight         float64           `json:"weight"`
	Breakdown      SeverityBreakdown `json:"breakdown"`
}

// ScoringResult aggregates all categories. Scores are always recomputed from
// the full issue set, never incrementally patched, so re-running the scorer
// on identical input yields bit-identical output.
type ScoringResult struct {
	Overall    float64 `json:"overall"`
	Normalized float64 `json:"normalized"`
	Grade      string  `json:"grade"`

	Categories []CategoryScore   `json:"categories"`
	Severities SeverityBreakdown `json:"severities"`
}
