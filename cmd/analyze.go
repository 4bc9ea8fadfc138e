package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	trader "github.com/thuva4/am-i-bad-trader"
)

// analyzeCmd holds the flags for the 'analyze' subcommand.
type analyzeCmd struct {
	output      string
	benchmark   string
	concurrency int
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "run the timing analysis and write the report as JSON" }
func (*analyzeCmd) Usage() string {
	return `abt analyze [-o <file>] [-benchmark <ticker>]

  Replays the transaction history against the market data bundle and writes
  the complete analysis report as JSON.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write the report to this file instead of stdout.")
	f.StringVar(&c.benchmark, "benchmark", trader.DefaultConfig().Benchmark, "Ticker to compare the portfolio against.")
	f.IntVar(&c.concurrency, "concurrency", 0, "Bound on per-instrument analysis workers, 0 for unbounded.")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := trader.DefaultConfig()
	cfg.Benchmark = c.benchmark
	cfg.Concurrency = c.concurrency

	report, err := runAnalysis(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if c.output != "" {
		out, err = os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		fmt.Printf("Report written to %s\n", c.output)
	}
	return subcommands.ExitSuccess
}
