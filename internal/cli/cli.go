// Package cli parses the one-shot scan command line into scan options.
package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/agentlens/agentlens/internal/model"
)

// CLIArgs are the command-line arguments for a single scan run.
type CLIArgs struct {
	// URL is the page to audit.
	URL string

	// Provider selection; empty Provider disables model-assisted analysis.
	Provider string
	Model    string
	APIKey   string
	BaseURL  string

	// Pipeline toggles and thresholds.
	TokenBudget   int
	NoChunking    bool
	NoFactCheck   bool
	MinImpact     int
	MinConfidence float64
	MaxIssues     int

	// Pretty indents the JSON report for humans.
	Pretty bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not read
// os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("agentlens", flag.ContinueOnError)
	var (
		url           = fs.String("url", "", "Page URL to audit (required)")
		providerKind  = fs.String("provider", "", "Model provider: openai|anthropic|ollama|openrouter|custom (empty disables model analysis)")
		modelName     = fs.String("model", "", "Model name override for the selected provider")
		apiKey        = fs.String("api-key", "", "API key for hosted providers")
		baseURL       = fs.String("base-url", "", "Base URL for ollama or custom providers")
		tokenBudget   = fs.Int("token-budget", 0, "Chunk token budget (0=use default)")
		noChunking    = fs.Bool("no-chunking", false, "Disable content chunking analysis")
		noFactCheck   = fs.Bool("no-fact-check", false, "Disable hallucination trigger detection")
		minImpact     = fs.Int("min-impact", 0, "Drop issues below this impact score")
		minConfidence = fs.Float64("min-confidence", 0, "Drop issues below this confidence")
		maxIssues     = fs.Int("max-issues", 0, "Cap the reported issue list (0=use default)")
		pretty        = fs.Bool("pretty", false, "Indent the JSON report")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(nil)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*url) == "" {
		return nil, fmt.Errorf("missing required -url argument")
	}

	return &CLIArgs{
		URL:           *url,
		Provider:      *providerKind,
		Model:         *modelName,
		APIKey:        *apiKey,
		BaseURL:       *baseURL,
		TokenBudget:   *tokenBudget,
		NoChunking:    *noChunking,
		NoFactCheck:   *noFactCheck,
		MinImpact:     *minImpact,
		MinConfidence: *minConfidence,
		MaxIssues:     *maxIssues,
		Pretty:        *pretty,
		RawArgs:       args,
	}, nil
}

// ScanOptions translates the parsed flags into scan options, starting from
// the defaults so unset flags keep default behavior.
func (a *CLIArgs) ScanOptions() *model.ScanOptions {
	opts := model.DefaultScanOptions()

	if a.TokenBudget > 0 {
		opts.ChunkTokenBudget = a.TokenBudget
	}
	if a.NoChunking {
		opts.EnableChunking = false
	}
	if a.NoFactCheck {
		opts.EnableHallucination = false
	}
	if a.MinImpact > 0 {
		opts.MinImpactScore = a.MinImpact
	}
	if a.MinConfidence > 0 {
		opts.MinConfidence = a.MinConfidence
	}
	if a.MaxIssues > 0 {
		opts.MaxIssues = a.MaxIssues
	}

	if a.Provider != "" {
		opts.EnableModelAnalysis = true
		opts.Provider = &model.ProviderConfig{
			Kind:    model.ProviderKind(a.Provider),
			Model:   a.Model,
			APIKey:  a.APIKey,
			BaseURL: a.BaseURL,
		}
	}

	return &opts
}
