package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/thuva4/am-i-bad-trader/cmd"
)

func main() {
	// Shell completion. When invoked by the shell's completion hook this
	// prints the candidates and exits.
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"analyze": {Flags: map[string]complete.Predictor{
				"o":           predict.Files("*.json"),
				"benchmark":   predict.Something,
				"concurrency": predict.Something,
			}},
			"report": {Flags: map[string]complete.Predictor{
				"benchmark": predict.Something,
				"chart":     predict.Files("*.png"),
			}},
			"assist": {},
		},
		Flags: map[string]complete.Predictor{
			"actions-file": predict.Files("*.json"),
			"market-file":  predict.Files("*.json"),
		},
	}
	completion.Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
