package cli

import (
	"testing"

	"github.com/agentlens/agentlens/internal/model"
)

func TestParseArgsRequiresURL(t *testing.T) {
	if _, err := ParseArgs([]string{}); err == nil {
		t.Fatal("expected error without -url")
	}
	if _, err := ParseArgs([]string{"-url", "   "}); err == nil {
		t.Fatal("expected error for blank -url")
	}
}

func TestParseArgsRejectsUnknownFlags(t *testing.T) {
	if _, err := ParseArgs([]string{"-url", "http://example.test/", "-bogus"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestParseArgsMapsAllFlags(t *testing.T) {
	args, err := ParseArgs([]string{
		"-url", "http://example.test/page",
		"-provider", "anthropic",
		"-model", "claude-3-5-haiku-latest",
		"-api-key", "k",
		"-base-url", "http://localhost:9999",
		"-token-budget", "400",
		"-no-chunking",
		"-no-fact-check",
		"-min-impact", "10",
		"-min-confidence", "0.6",
		"-max-issues", "20",
		"-pretty",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}

	if args.URL != "http://example.test/page" {
		t.Errorf("url %q", args.URL)
	}
	if args.Provider != "anthropic" || args.Model != "claude-3-5-haiku-latest" {
		t.Errorf("provider flags wrong: %q %q", args.Provider, args.Model)
	}
	if args.APIKey != "k" || args.BaseURL != "http://localhost:9999" {
		t.Errorf("credential flags wrong: %q %q", args.APIKey, args.BaseURL)
	}
	if args.TokenBudget != 400 || !args.NoChunking || !args.NoFactCheck {
		t.Errorf("pipeline flags wrong: %+v", args)
	}
	if args.MinImpact != 10 || args.MinConfidence != 0.6 || args.MaxIssues != 20 {
		t.Errorf("threshold flags wrong: %+v", args)
	}
	if !args.Pretty {
		t.Error("pretty flag not set")
	}
}

func TestScanOptionsKeepDefaultsWhenUnset(t *testing.T) {
	args, err := ParseArgs([]string{"-url", "http://example.test/"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}

	opts := args.ScanOptions()
	defaults := model.DefaultScanOptions()

	if opts.ChunkTokenBudget != defaults.ChunkTokenBudget {
		t.Errorf("token budget changed: %d", opts.ChunkTokenBudget)
	}
	if !opts.EnableChunking || !opts.EnableHallucination {
		t.Error("default toggles lost")
	}
	if opts.EnableModelAnalysis {
		t.Error("model analysis enabled without a provider")
	}
	if opts.Provider != nil {
		t.Error("provider config present without a provider flag")
	}
	if opts.MaxIssues != defaults.MaxIssues {
		t.Errorf("max issues changed: %d", opts.MaxIssues)
	}
}

func TestScanOptionsTranslation(t *testing.T) {
	args, err := ParseArgs([]string{
		"-url", "http://example.test/",
		"-provider", "openai",
		"-api-key", "sk-1",
		"-token-budget", "500",
		"-no-chunking",
		"-min-impact", "15",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}

	opts := args.ScanOptions()
	if !opts.EnableModelAnalysis {
		t.Error("naming a provider must enable model analysis")
	}
	if opts.Provider == nil || opts.Provider.Kind != model.ProviderOpenAI || opts.Provider.APIKey != "sk-1" {
		t.Errorf("provider config wrong: %+v", opts.Provider)
	}
	if opts.ChunkTokenBudget != 500 {
		t.Errorf("token budget %d", opts.ChunkTokenBudget)
	}
	if opts.EnableChunking {
		t.Error("-no-chunking not honored")
	}
	if opts.MinImpactScore != 15 {
		t.Errorf("min impact %d", opts.MinImpactScore)
	}
}
