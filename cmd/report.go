package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	trader "github.com/thuva4/am-i-bad-trader"
	"github.com/thuva4/am-i-bad-trader/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	benchmark string
	chart     string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the timing analysis as a readable report" }
func (*reportCmd) Usage() string {
	return `abt report [-benchmark <ticker>] [-chart <file.png>]

  Runs the analysis and renders the report as markdown on the terminal.
  With -chart, also writes a PNG of the holdings value over time.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.benchmark, "benchmark", trader.DefaultConfig().Benchmark, "Ticker to compare the portfolio against.")
	f.StringVar(&c.chart, "chart", "", "Also write a value chart to this PNG file.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := trader.DefaultConfig()
	cfg.Benchmark = c.benchmark

	report, err := runAnalysis(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ReportMarkdown(report))

	if c.chart != "" {
		png, err := renderer.ValueChartPNG(report.Series)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.chart, png, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart file %q: %v\n", c.chart, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Chart written to %s\n", c.chart)
	}
	return subcommands.ExitSuccess
}
