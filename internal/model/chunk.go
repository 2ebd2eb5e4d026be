package model

// ChunkQuality is the four-tier verdict of the chunk quality helper.
type ChunkQuality string

const (
	QualityExcellent ChunkQuality = "excellent"
	QualityGood      ChunkQuality = "good"
	QualityFair      ChunkQuality = "fair"
	QualityPoor      ChunkQuality = "poor"
)

// ContentChunk is one contiguous, labeled slice of document content sized
// for a model context budget.
//
// Invariants: chunks from one chunking pass cover the chosen container
// without overlap; TokenEstimate is a non-negative integer; NoiseRatio is
// clamped to [0,1].
type ContentChunk struct {
	ID           string `json:"id"`
	Index        int    `json:"index"`
	StartOffset  int    `json:"startOffset"`
	EndOffset    int    `json:"endOffset"`
	Heading      string `json:"heading,omitempty"`
	HeadingLevel int    `json:"headingLevel,omitempty"`
	Text         string `json:"text"`

	// TokenEstimate is the whitespace-delimited word count of Text. This is a
	// deliberately cheap proxy, not a real tokenizer; downstream consumers
	// depend on the exact heuristic.
	TokenEstimate int `json:"tokenEstimate"`

	WordCount  int     `json:"wordCount"`
	CharCount  int     `json:"charCount"`
	NoiseRatio float64 `json:"noiseRatio"`

	HasCode  bool `json:"hasCode"`
	HasList  bool `json:"hasList"`
	HasTable bool `json:"hasTable"`

	// Quality is the extractability verdict for the chunk. It is populated
	// only when the scan requests extractability analysis.
	Quality ChunkQuality `json:"quality,omitempty"`
}

// ChunkingResult bundles the output of one chunking pass.
type ChunkingResult struct {
	// Strategy is the label of the strategy actually used, including the
	// fallback marker when heading-based chunking was requested but the
	// container had no headings.
	Strategy string `json:"strategy"`

	Container string         `json:"container"`
	Chunks    []ContentChunk `json:"chunks"`

	TotalTokens int     `json:"totalTokens"`
	TotalWords  int     `json:"totalWords"`
	MeanTokens  float64 `json:"meanTokens"`
	StdevTokens float64 `json:"stdevTokens"`
}
