// Package cmd implements the CLI application that analyzes a transaction
// history against market data.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	trader "github.com/thuva4/am-i-bad-trader"
)

// Register the subcommands.
// A main package calls Register() and then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&analyzeCmd{}, "analysis")
	c.Register(&reportCmd{}, "analysis")
	c.Register(&AssistCmd{}, "assistant")
}

// As a CLI application it has a very short lived lifecycle, so shared input
// paths live in global flags.

var actionsFile = flag.String("actions-file", "actions.json", "Path to the normalized actions file (JSON)")
var marketFile = flag.String("market-file", "market_data.json", "Path to the market data bundle (JSON)")

// decodeInputs reads both input files. A missing market bundle is reported
// but not fatal: the engine degrades to an unpriced analysis.
func decodeInputs() ([]trader.Action, *trader.MarketData, error) {
	f, err := os.Open(*actionsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open actions file: %w", err)
	}
	defer f.Close()
	actions, err := trader.DecodeActions(f)
	if err != nil {
		return nil, nil, err
	}

	m, err := os.Open(*marketFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: no market data bundle at %q, timing analysis will be skipped\n", *marketFile)
		return actions, trader.NewMarketData(), nil
	}
	defer m.Close()
	market, err := trader.DecodeMarketData(m)
	if err != nil {
		return nil, nil, err
	}
	return actions, market, nil
}

// runAnalysis decodes the inputs and runs the whole engine.
func runAnalysis(ctx context.Context, cfg trader.Config) (*trader.Report, error) {
	actions, market, err := decodeInputs()
	if err != nil {
		return nil, err
	}
	return trader.Analyze(ctx, actions, market, cfg)
}
