// Package provider implements the uniform call interface over the supported
// language-model backends. A backend is selected once at configuration time
// via New; callers only ever see interfaces.Provider.
//
// No backend retries internally, and every backend surfaces rate-limit or
// quota failures as ErrRateLimited so callers can treat them as a soft
// condition rather than a hard failure.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
)

// ErrRateLimited marks a rate-limit or quota condition. Match with
// errors.Is; the concrete error wraps it with backend detail.
var ErrRateLimited = errors.New("provider rate limited")

// Constructor builds one backend from its configuration.
type Constructor func(cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error)

var (
	mu       sync.RWMutex
	registry = map[model.ProviderKind]Constructor{}
)

// Register adds a backend constructor for a kind. Registering the same kind
// again overwrites the previous constructor.
func Register(kind model.ProviderKind, ctor Constructor) {
	if kind == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = ctor
}

func init() {
	Register(model.ProviderOpenAI, newOpenAI)
	Register(model.ProviderOpenRouter, newOpenRouter)
	Register(model.ProviderCustom, newCustom)
	Register(model.ProviderAnthropic, newAnthropic)
	Register(model.ProviderOllama, newOllama)
}

// New validates the configuration and constructs the selected backend.
// Configuration problems (unknown kind, missing credentials) fail here,
// before any network activity.
func New(cfg model.ProviderConfig, logger interfaces.Logger) (interfaces.Provider, error) {
	if logger == nil {
		return nil, fmt.Errorf("provider: nil logger")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("provider config: %w", err)
	}

	mu.RLock()
	ctor, ok := registry[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider kind %q not registered: available=%v", cfg.Kind, Kinds())
	}
	p, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("construct provider %q: %w", cfg.Kind, err)
	}
	return p, nil
}

// Kinds returns the sorted list of registered provider kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// rateLimitMarkers are body substrings that indicate quota exhaustion even
// when the status code is not 429.
var rateLimitMarkers = []string{
	"rate limit",
	"rate_limit",
	"quota",
	"too many requests",
	"insufficient_quota",
	"overloaded",
}

// classifyStatus converts a non-2xx backend response into an error,
// distinguishing rate-limit/quota conditions from everything else.
func classifyStatus(backend string, status int, body string) error {
	lower := strings.ToLower(body)
	if status == http.StatusTooManyRequests || status == http.StatusPaymentRequired {
		return fmt.Errorf("%s: status %d: %w", backend, status, ErrRateLimited)
	}
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%s: status %d (%s): %w", backend, status, marker, ErrRateLimited)
		}
	}
	snippet := body
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return fmt.Errorf("%s: status %d: %s", backend, status, snippet)
}

// IsRateLimited reports whether err is (or wraps) a rate-limit condition.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
