package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
)

// anthropicClient speaks the Anthropic messages API. Unlike the OpenAI
// shape, the system prompt travels in its own top-level field.
type anthropicClient struct {
	baseURL    string
	apiKey     string
	model      string
	temp       float64
	maxTokens  int
	httpClient *http.Client
	logger     interfaces.Logger
}

const (
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
	anthropicTimeout      = 60 * time.Second
	anthropicMaxTokens    = 2048
)

func newAnthropic(cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = anthropicBaseURL
	}
	mdl := cfg.Model
	if mdl == "" {
		mdl = anthropicDefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		// The messages API requires max_tokens; pick a sane ceiling.
		maxTokens = anthropicMaxTokens
	}
	return &anthropicClient{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		model:      mdl,
		temp:       cfg.Temperature,
		maxTokens:  maxTokens,
		httpClient: &http.Client{},
		logger:     logger.With(interfaces.Field{Key: "provider", Value: "anthropic"}),
	}, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *anthropicClient) Name() string { return "anthropic" }

func (c *anthropicClient) Call(ctx context.Context, messages []model.Message, opts *model.CallOptions) (*model.Completion, error) {
	req := anthropicRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temp,
	}
	if opts != nil {
		if opts.Model != "" {
			req.Model = opts.Model
		}
		if opts.Temperature != 0 {
			req.Temperature = opts.Temperature
		}
		if opts.MaxTokens != 0 {
			req.MaxTokens = opts.MaxTokens
		}
	}
	for _, m := range messages {
		if m.Role == model.RoleSystem {
			if req.System != "" {
				req.System += "\n\n"
			}
			req.System += m.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, anthropicTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus("anthropic", resp.StatusCode, string(body))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("anthropic: api error: %s", parsed.Error.Message)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic: response contained no text content")
	}

	return &model.Completion{
		Content:      text.String(),
		Model:        parsed.Model,
		FinishReason: parsed.StopReason,
		Usage: model.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}
