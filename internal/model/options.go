package model

import "fmt"

// ProviderKind selects one of the supported language-model backends.
type ProviderKind string

const (
	ProviderOpenAI     ProviderKind = "openai"
	ProviderAnthropic  ProviderKind = "anthropic"
	ProviderOllama     ProviderKind = "ollama"
	ProviderOpenRouter ProviderKind = "openrouter"
	ProviderCustom     ProviderKind = "custom"
)

// ProviderConfig carries everything needed to construct one backend.
// Credentials are supplied per scan through ScanOptions; no backend reads
// the environment on its own.
type ProviderConfig struct {
	Kind        ProviderKind `json:"kind"`
	Model       string       `json:"model,omitempty"`
	APIKey      string       `json:"-"`
	BaseURL     string       `json:"baseUrl,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"maxTokens,omitempty"`
}

// ScanOptions configures a single scan. The value is read-only for the
// duration of the scan; every call site receives its own copy and there is
// no global mutable configuration.
type ScanOptions struct {
	// ChunkTokenBudget caps the estimated token count of one content chunk.
	ChunkTokenBudget int `json:"chunkTokenBudget"`

	// Feature toggles.
	EnableChunking       bool `json:"enableChunking"`
	EnableExtractability bool `json:"enableExtractability"`
	EnableModelAnalysis  bool `json:"enableModelAnalysis"`
	EnableHallucination  bool `json:"enableHallucination"`

	// DisabledCategories lists rule categories the executor must skip.
	DisabledCategories []Category `json:"disabledCategories,omitempty"`

	// Filtering thresholds applied after scoring.
	MinImpactScore int     `json:"minImpactScore"`
	MinConfidence  float64 `json:"minConfidence"`
	MaxIssues      int     `json:"maxIssues"`

	// Provider is optional; without it, model-assisted analysis degrades to
	// the local-only paths.
	Provider *ProviderConfig `json:"provider,omitempty"`
}

// DefaultScanOptions returns the options used when the caller supplies none.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		ChunkTokenBudget:     800,
		EnableChunking:       true,
		EnableExtractability: true,
		EnableModelAnalysis:  false,
		EnableHallucination:  true,
		MinImpactScore:       0,
		MinConfidence:        0,
		MaxIssues:            100,
	}
}

// CategoryEnabled reports whether rules of the given category should run.
func (o *ScanOptions) CategoryEnabled(c Category) bool {
	for _, d := range o.DisabledCategories {
		if d == c {
			return false
		}
	}
	return true
}

// Validate checks option ranges and provider completeness. Validation errors
// are the only fatal error class: they fail the scan request before any
// network activity begins.
func (o *ScanOptions) Validate() error {
	if o.ChunkTokenBudget < 0 {
		return fmt.Errorf("chunk token budget must be >= 0, got %d", o.ChunkTokenBudget)
	}
	if o.MinImpactScore < 0 || o.MinImpactScore > 100 {
		return fmt.Errorf("min impact score must be in [0,100], got %d", o.MinImpactScore)
	}
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be in [0,1], got %v", o.MinConfidence)
	}
	if o.MaxIssues < 0 {
		return fmt.Errorf("max issues must be >= 0, got %d", o.MaxIssues)
	}
	if o.Provider != nil {
		if err := o.Provider.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the provider selection is complete enough to construct
// a backend. Local daemons and custom endpoints need a base URL rather than a
// key; hosted backends need a key.
func (p *ProviderConfig) Validate() error {
	switch p.Kind {
	case ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter:
		if p.APIKey == "" {
			return fmt.Errorf("provider %q requires an API key", p.Kind)
		}
	case ProviderOllama:
		// Base URL is optional; the backend defaults to the local daemon.
	case ProviderCustom:
		if p.BaseURL == "" {
			return fmt.Errorf("provider %q requires a base URL", p.Kind)
		}
	case "":
		return fmt.Errorf("provider kind is empty")
	default:
		return fmt.Errorf("unknown provider kind %q", p.Kind)
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("provider temperature must be in [0,2], got %v", p.Temperature)
	}
	if p.MaxTokens < 0 {
		return fmt.Errorf("provider max tokens must be >= 0, got %d", p.MaxTokens)
	}
	return nil
}
