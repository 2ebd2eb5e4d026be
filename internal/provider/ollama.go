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

// ollamaClient talks to a local inference daemon. The daemon keeps
// generating after the HTTP connection drops, so the call is raced against a
// timer and timer expiry is treated as a plain failure of this call only.
type ollamaClient struct {
	baseURL    string
	model      string
	temp       float64
	maxTokens  int
	httpClient *http.Client
	logger     interfaces.Logger
}

const (
	ollamaBaseURL      = "http://localhost:11434"
	ollamaDefaultModel = "llama3.1"
	ollamaTimeout      = 120 * time.Second
)

func newOllama(cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = ollamaBaseURL
	}
	mdl := cfg.Model
	if mdl == "" {
		mdl = ollamaDefaultModel
	}
	return &ollamaClient{
		baseURL:    strings.TrimRight(base, "/"),
		model:      mdl,
		temp:       cfg.Temperature,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{},
		logger:     logger.With(interfaces.Field{Key: "provider", Value: "ollama"}),
	}, nil
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Model      string        `json:"model"`
	Message    ollamaMessage `json:"message"`
	DoneReason string        `json:"done_reason"`
	PromptEval int           `json:"prompt_eval_count"`
	EvalCount  int           `json:"eval_count"`
	Error      string        `json:"error"`
}

func (c *ollamaClient) Name() string { return "ollama" }

func (c *ollamaClient) Call(ctx context.Context, messages []model.Message, opts *model.CallOptions) (*model.Completion, error) {
	req := ollamaRequest{
		Model:  c.model,
		Stream: false,
		Options: ollamaOptions{
			Temperature: c.temp,
			NumPredict:  c.maxTokens,
		},
	}
	if opts != nil {
		if opts.Model != "" {
			req.Model = opts.Model
		}
		if opts.Temperature != 0 {
			req.Options.Temperature = opts.Temperature
		}
		if opts.MaxTokens != 0 {
			req.Options.NumPredict = opts.MaxTokens
		}
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	type callResult struct {
		completion *model.Completion
		err        error
	}
	resultCh := make(chan callResult, 1)

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		completion, err := c.do(callCtx, payload)
		resultCh <- callResult{completion, err}
	}()

	timer := time.NewTimer(ollamaTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		return res.completion, res.err
	case <-timer.C:
		cancel()
		return nil, fmt.Errorf("ollama: call exceeded %s deadline", ollamaTimeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("ollama: call canceled: %w", ctx.Err())
	}
}

func (c *ollamaClient) do(ctx context.Context, payload []byte) (*model.Completion, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ollama: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus("ollama", resp.StatusCode, string(body))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("ollama: api error: %s", parsed.Error)
	}

	return &model.Completion{
		Content:      parsed.Message.Content,
		Model:        parsed.Model,
		FinishReason: parsed.DoneReason,
		Usage: model.Usage{
			PromptTokens:     parsed.PromptEval,
			CompletionTokens: parsed.EvalCount,
			TotalTokens:      parsed.PromptEval + parsed.EvalCount,
		},
	}, nil
}
