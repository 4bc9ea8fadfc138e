package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	trader "github.com/thuva4/am-i-bad-trader"
	"github.com/thuva4/am-i-bad-trader/agent"
)

// AssistCmd is the subcommand for the AI coach.
type AssistCmd struct{}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short one-line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "Discuss your trading history with the AI coach." }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `assist [question]:
  Runs the analysis, then starts an interactive session with the AI coach
  about the resulting report.
`
}

// SetFlags sets the flags for the command.
func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := runAnalysis(ctx, trader.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	initialPrompt := strings.Join(f.Args(), " ")
	coach := agent.New(os.Stdout, os.Stdin, report)
	if err := coach.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Coach failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
