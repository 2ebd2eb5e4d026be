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

// openAIClient speaks the OpenAI chat-completions wire shape. The aggregator
// (OpenRouter) and bare custom endpoints share the same shape, so they reuse
// this client with different base URLs, default models and timeouts.
type openAIClient struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	temp       float64
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
	logger     interfaces.Logger
}

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	openAIDefaultModel     = "gpt-4o-mini"
	openRouterDefaultModel = "openai/gpt-4o-mini"

	openAITimeout = 45 * time.Second
	// Aggregators route through a second hop and are allowed a longer budget.
	openRouterTimeout = 90 * time.Second
)

func newOpenAI(cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error) {
	return newOpenAIShaped("openai", openAIBaseURL, openAIDefaultModel, openAITimeout, cfg, logger)
}

func newOpenRouter(cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error) {
	return newOpenAIShaped("openrouter", openRouterBaseURL, openRouterDefaultModel, openRouterTimeout, cfg, logger)
}

func newCustom(cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("custom provider requires a base URL")
	}
	return newOpenAIShaped("custom", cfg.BaseURL, cfg.Model, openAITimeout, cfg, logger)
}

func newOpenAIShaped(name, defaultBase, defaultModel string, timeout time.Duration, cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBase
	}
	mdl := cfg.Model
	if mdl == "" {
		mdl = defaultModel
	}
	if mdl == "" {
		return nil, fmt.Errorf("%s provider requires a model name", name)
	}
	return &openAIClient{
		name:       name,
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		model:      mdl,
		temp:       cfg.Temperature,
		maxTokens:  cfg.MaxTokens,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger.With(interfaces.Field{Key: "provider", Value: name}),
	}, nil
}

type oaRequest struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      oaMessage `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *openAIClient) Name() string { return c.name }

func (c *openAIClient) Call(ctx context.Context, messages []model.Message, opts *model.CallOptions) (*model.Completion, error) {
	req := oaRequest{
		Model:       c.model,
		Temperature: c.temp,
		MaxTokens:   c.maxTokens,
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
		req.Messages = append(req.Messages, oaMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", c.name, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: call: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(c.name, resp.StatusCode, string(body))
	}

	var parsed oaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%s: api error: %s", c.name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%s: response contained no choices", c.name)
	}

	c.logger.Debug("provider call complete",
		interfaces.Field{Key: "model", Value: parsed.Model},
		interfaces.Field{Key: "elapsed", Value: time.Since(start).String()},
		interfaces.Field{Key: "tokens", Value: parsed.Usage.TotalTokens})

	return &model.Completion{
		Content:      parsed.Choices[0].Message.Content,
		Model:        parsed.Model,
		FinishReason: parsed.Choices[0].FinishReason,
		Usage: model.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}
