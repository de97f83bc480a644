package main

import (
	"fmt"
	"os"

	"github.com/dietfit/meal-mapping-services/export"
	"github.com/dietfit/meal-mapping-services/util/cli"
	"github.com/dietfit/meal-mapping-services/workers"
)

func main() {
	cli.Init()
	opts := cli.ParseOpts()
	if opts.PrintHelp {
		printHelp()
		cli.PrintDefaults()
		os.Exit(0)
	}

	runner := workers.NewMatchRunner(opts.Days, opts.NumWorkers, opts.SkipExportQueue)
	run, err := runner.Run()
	if err != nil {
		runner.Context.Logger.Errorf("Match run failed: %v", err)
		fmt.Fprintf(os.Stderr, "Match run failed: %v\n", err)
		os.Exit(1)
	}

	report := export.NewReport(os.Stdout, runner.Context.Normalizer.Location())
	report.Summary(run)
}

func printHelp() {
	message := `
match_runner fetches traces from the tracing backend for the selected
time window, scans the meal-image bucket, and pairs each image with
its closest strictly-preceding trace per user. The completed run is
saved to Redis under its run ID and the run ID is posted to the NSQ
export topic, where the export worker picks it up and writes the JSON
and CSV artifacts.

Run with -no-queue to skip the export topic for one-off manual runs.

`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
