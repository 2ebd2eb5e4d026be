package interfaces

import (
	"context"

	"github.com/agentlens/agentlens/internal/model"
)

// Provider is the uniform call surface over every language-model backend
// (hosted chat API, local daemon, aggregator, or a bare HTTP endpoint that
// speaks the same message shape). The concrete backend is selected once at
// configuration time; callers never branch on the backend kind.
//
// Implementations must NOT retry internally; retry policy belongs to the
// caller. A rate-limit or quota condition must be returned as an error that
// matches provider.ErrRateLimited via errors.Is, because callers treat it
// differently from ordinary failures.
type Provider interface {
	// Call sends the conversation to the backend and returns the completion.
	// opts may be nil; backends fall back to their configured defaults.
	Call(ctx context.Context, messages []model.Message, opts *model.CallOptions) (*model.Completion, error)

	// Name identifies the backend kind (e.g. "openai", "ollama").
	Name() string
}
