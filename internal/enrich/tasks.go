package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agentlens/agentlens/internal/fetcher"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/provider"
	"github.com/agentlens/agentlens/internal/utils"
)

// maxTaskContentChars bounds the page text sent in one task prompt.
const maxTaskContentChars = 6000

func isRateLimited(err error) bool {
	return errors.Is(err, provider.ErrRateLimited)
}

const comprehensionPrompt = `Read the following web page content and summarize how an automated assistant would understand it. Respond with JSON only, no code fences, with keys:
- "summary": 2-3 sentence summary
- "mainTopics": array of up to 5 topic strings
- "audience": who the content addresses, one phrase
- "confidence": 0.0-1.0, how confidently the content can be understood

Page content:
%s`

func (e *Enricher) comprehension(ctx context.Context, doc *fetcher.Document) (*model.ComprehensionResult, error) {
	content, err := e.call(ctx, fmt.Sprintf(comprehensionPrompt, taskText(doc)))
	if err != nil {
		return nil, err
	}
	var out model.ComprehensionResult
	if err := decodeObject(content, &out); err != nil {
		return nil, fmt.Errorf("comprehension: %w", err)
	}
	return &out, nil
}

const entitiesPrompt = `Extract the named entities (people, organizations, products, places, technologies) from the following web page content. Respond with a JSON array only, no code fences; each element has keys "name", "kind", "confidence" (0.0-1.0).

Page content:
%s`

func (e *Enricher) entities(ctx context.Context, doc *fetcher.Document) ([]model.Entity, error) {
	content, err := e.call(ctx, fmt.Sprintf(entitiesPrompt, taskText(doc)))
	if err != nil {
		return nil, err
	}
	var out []model.Entity
	if err := decodeArray(content, &out); err != nil {
		return nil, fmt.Errorf("entities: %w", err)
	}
	return out, nil
}

const faqPrompt = `Generate the questions a user is most likely to ask an AI assistant about the following web page, with answers drawn strictly from the page content. Respond with a JSON array only, no code fences; each element has keys "question" and "answer". Produce 3 to 6 pairs. If the page does not answer a likely question, skip it.

Page content:
%s`

func (e *Enricher) faq(ctx context.Context, doc *fetcher.Document) ([]model.FAQItem, error) {
	content, err := e.call(ctx, fmt.Sprintf(faqPrompt, taskText(doc)))
	if err != nil {
		return nil, err
	}
	var out []model.FAQItem
	if err := decodeArray(content, &out); err != nil {
		return nil, fmt.Errorf("faq: %w", err)
	}
	return out, nil
}

// call wraps one provider round trip with the shared system prompt.
func (e *Enricher) call(ctx context.Context, userPrompt string) (string, error) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "You analyze web content for machine readability. You answer with JSON only."},
		{Role: model.RoleUser, Content: userPrompt},
	}
	completion, err := e.provider.Call(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func taskText(doc *fetcher.Document) string {
	return utils.Truncate(doc.Text(), maxTaskContentChars)
}

// decodeObject finds and decodes the first JSON object in model output,
// tolerating prose or fences around it.
func decodeObject(content string, v any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(content[start:end+1]), v)
}

// decodeArray does the same for a JSON array.
func decodeArray(content string, v any) error {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON array in model output")
	}
	return json.Unmarshal([]byte(content[start:end+1]), v)
}
