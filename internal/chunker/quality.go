package chunker

import (
	"gonum.org/v1/gonum/stat"

	"github.com/agentlens/agentlens/internal/model"
)

// Quality grades one chunk against four boundary checks: token count above
// 1000, token count below 50, noise ratio above 0.5, and absence of a
// heading. Each violated check demotes the quality by one tier.
func Quality(chunk *model.ContentChunk) model.ChunkQuality {
	violations := 0
	if chunk.TokenEstimate > 1000 {
		violations++
	}
	if chunk.TokenEstimate < 50 {
		violations++
	}
	if chunk.NoiseRatio > 0.5 {
		violations++
	}
	if chunk.Heading == "" {
		violations++
	}

	switch violations {
	case 0:
		return model.QualityExcellent
	case 1:
		return model.QualityGood
	case 2:
		return model.QualityFair
	default:
		return model.QualityPoor
	}
}

// analyze fills in the summary statistics of one chunking pass.
func analyze(chunks []model.ContentChunk) *model.ChunkingResult {
	result := &model.ChunkingResult{Chunks: chunks}
	if len(chunks) == 0 {
		return result
	}

	tokens := make([]float64, len(chunks))
	for i, c := range chunks {
		tokens[i] = float64(c.TokenEstimate)
		result.TotalTokens += c.TokenEstimate
		result.TotalWords += c.WordCount
	}
	result.MeanTokens = stat.Mean(tokens, nil)
	if len(tokens) > 1 {
		result.StdevTokens = stat.StdDev(tokens, nil)
	}
	return result
}
