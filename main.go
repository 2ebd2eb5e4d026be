// Command agentlens audits one URL for AI readability and prints the JSON
// report to stdout.
// Usage: go run . -url https://example.com/docs [-provider openai -api-key ...]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentlens/agentlens/internal/cli"
	"github.com/agentlens/agentlens/internal/logging"
	"github.com/agentlens/agentlens/internal/scanner"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Hosted providers can take the key from the environment as well.
	if args.Provider != "" && args.APIKey == "" {
		args.APIKey = os.Getenv("AGENTLENS_API_KEY")
	}

	// The report goes to stdout; logs stay on stderr so piping the JSON works.
	logger := logging.NewStdoutLogger("agentlens").WithWriter(os.Stderr)

	s, err := scanner.New(scanner.Config{}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := s.Scan(ctx, args.URL, args.ScanOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if args.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
