package rules

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agentlens/agentlens/internal/model"
)

// ExecuteFunc is the single capability a rule implements: a pure function
// from the read-only context to zero, one, or many issues, or a failure.
type ExecuteFunc func(ctx context.Context, rctx *model.RuleContext) ([]model.Issue, error)

// Rule pairs static metadata with its check body.
type Rule struct {
	Meta    model.RuleMeta
	Execute ExecuteFunc
}

// Registry holds the ordered set of registered rules. Registration happens
// once at process start; duplicate ids are a startup error.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*Rule)}
}

// Register adds a rule, rejecting duplicate ids and incomplete declarations.
func (r *Registry) Register(rule *Rule) error {
	if rule == nil || rule.Execute == nil {
		return fmt.Errorf("rules: nil rule or execute func")
	}
	if rule.Meta.ID == "" {
		return fmt.Errorf("rules: rule with empty id")
	}
	if rule.Meta.Category == "" {
		return fmt.Errorf("rules: rule %q has no category", rule.Meta.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[rule.Meta.ID]; exists {
		return fmt.Errorf("rules: duplicate rule id %q", rule.Meta.ID)
	}
	r.rules[rule.Meta.ID] = rule
	return nil
}

// MustRegister panics on registration failure. Only for process-start
// catalog wiring, where a duplicate id is a programming error.
func (r *Registry) MustRegister(rule *Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Ordered returns all rules sorted by priority (higher first), ties broken
// by id so executor output order is fully deterministic.
func (r *Registry) Ordered() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meta.Priority != out[j].Meta.Priority {
			return out[i].Meta.Priority > out[j].Meta.Priority
		}
		return out[i].Meta.ID < out[j].Meta.ID
	})
	return out
}
