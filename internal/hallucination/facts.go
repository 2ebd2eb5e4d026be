package hallucination

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// maxClaimContentChars bounds how much page text travels in the extraction
// prompt.
const maxClaimContentChars = 6000

const claimSystemPrompt = `You are a fact-checking assistant. You extract specific, checkable factual claims from web content and judge each one against your own training knowledge only. You never browse. You answer with JSON only, no prose, no code fences.`

const claimPromptTemplate = `Extract 8 to 12 specific, checkable factual claims (dates, metrics, named facts) from the following web page content. For each claim, state from your own training knowledge only whether it is "verified" (you know it to be true), "unverified" (you cannot confirm it), or "contradicts" (it conflicts with what you know).

Respond with a JSON array of objects with exactly these keys:
- "statement": the claim in one sentence
- "category": one of "date", "number", "name", "event", "claim"
- "confidence": 0.0-1.0, how confident you are in your judgment
- "status": "verified" | "unverified" | "contradicts"
- "evidence": what you know about the claim (empty string if nothing)
- "context": the page text the claim came from, shortened

Page URL: %s

Page content:
%s`

// verifiedClaim is the wire shape expected back from the model.
type verifiedClaim struct {
	Statement  string  `json:"statement"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"`
	Evidence   string  `json:"evidence"`
	Context    string  `json:"context"`
}

// verifyClaims performs the single structured extraction+verification call
// and maps the result onto FactVerification records.
func (d *Detector) verifyClaims(ctx context.Context, doc *fetcher.Document) ([]model.FactVerification, error) {
	text := doc.Text()
	if utils.CountWords(text) < 30 {
		d.logger.Debug("content too thin for claim extraction")
		return nil, nil
	}
	text = utils.Truncate(text, maxClaimContentChars)

	messages := []model.Message{
		{Role: model.RoleSystem, Content: claimSystemPrompt},
		{Role: model.RoleUser, Content: fmt.Sprintf(claimPromptTemplate, doc.URL, text)},
	}

	completion, err := d.provider.Call(ctx, messages, nil)
	if err != nil {
		return nil, fmt.Errorf("claim verification call: %w", err)
	}

	claims, err := parseClaims(completion.Content)
	if err != nil {
		return nil, fmt.Errorf("claim verification response: %w", err)
	}

	verifications := make([]model.FactVerification, 0, len(claims))
	for i, c := range claims {
		statement := strings.TrimSpace(c.Statement)
		if statement == "" {
			continue
		}
		status := parseStatus(c.Status)
		v := model.FactVerification{
			Fact: model.ExtractedFact{
				ID:         fmt.Sprintf("fact-%03d", i+1),
				Statement:  statement,
				Category:   parseFactCategory(c.Category),
				Confidence: clamp01(c.Confidence),
				Context:    utils.Truncate(strings.TrimSpace(c.Context), 300),
			},
			Status:   status,
			Verified: status == model.StatusVerified,
			Evidence: strings.TrimSpace(c.Evidence),
		}
		if status == model.StatusContradicts && v.Evidence != "" {
			v.Contradictions = []model.Contradiction{{Statement: v.Evidence}}
		}
		verifications = append(verifications, v)
	}
	return verifications, nil
}

// parseClaims tolerates prose or code fences around the JSON array the
// prompt asked for.
func parseClaims(content string) ([]verifiedClaim, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	var claims []verifiedClaim
	if err := json.Unmarshal([]byte(content[start:end+1]), &claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return claims, nil
}

func parseStatus(s string) model.VerificationStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verified":
		return model.StatusVerified
	case "contradicts", "contradicted", "contradiction":
		return model.StatusContradicts
	default:
		return model.StatusUnverified
	}
}

func parseFactCategory(s string) model.FactCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return model.FactDate
	case "number", "metric":
		return model.FactNumber
	case "name":
		return model.FactName
	case "event":
		return model.FactEvent
	default:
		return model.FactClaim
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
