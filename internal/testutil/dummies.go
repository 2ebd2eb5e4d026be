// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/logging"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient with canned per-URL pages.
// Unmapped URLs return 404 with an empty body.
type DummyWebClient struct {
	mu    sync.Mutex
	Pages map[string]string
	Err   error

	// Requests records every fetched URL in order.
	Requests []string
}

func (c *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	return c.Get(ctx, req.URL)
}

func (c *DummyWebClient) Get(_ context.Context, url string) (*webclient.Response, error) {
	c.mu.Lock()
	c.Requests = append(c.Requests, url)
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}

	body, ok := c.Pages[url]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return &webclient.Response{
		Headers:    http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       []byte(body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (c *DummyWebClient) Close() error { return nil }

// ─── Provider ──────────────────────────────────────────────────────────

// DummyProvider implements interfaces.Provider with scripted answers. The
// response is selected by substring match against the last user message;
// Fallback answers everything unmatched.
type DummyProvider struct {
	mu sync.Mutex

	// Responses maps a prompt substring to canned output.
	Responses map[string]string
	Fallback  string

	// Err, when set, fails every call.
	Err error

	// Calls records the prompts seen, in order.
	Calls []string
}

func (p *DummyProvider) Call(_ context.Context, messages []model.Message, _ *model.CallOptions) (*model.Completion, error) {
	var prompt string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			prompt = messages[i].Content
			break
		}
	}

	p.mu.Lock()
	p.Calls = append(p.Calls, prompt)
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}

	for marker, response := range p.Responses {
		if strings.Contains(prompt, marker) {
			return &model.Completion{Content: response, Model: "dummy"}, nil
		}
	}
	if p.Fallback != "" {
		return &model.Completion{Content: p.Fallback, Model: "dummy"}, nil
	}
	return nil, fmt.Errorf("no scripted response for prompt")
}

func (p *DummyProvider) Name() string { return "dummy" }

var (
	_ interfaces.Provider = (*DummyProvider)(nil)
	_ webclient.WebClient = (*DummyWebClient)(nil)
)
