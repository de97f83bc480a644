package main

import (
	"fmt"
	"os"

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

	stopChan := make(chan struct{})

	worker := workers.NewExportWorker(opts.ChannelBufferSize)
	if err := worker.RegisterAsNsqConsumer(); err != nil {
		worker.Context.Logger.Errorf("Cannot register NSQ consumer: %v", err)
		fmt.Fprintf(os.Stderr, "Cannot register NSQ consumer: %v\n", err)
		os.Exit(1)
	}

	<-stopChan
}

func printHelp() {
	message := `
export_worker listens on the NSQ export topic for completed match run
IDs. For each run ID it loads the run from Redis and writes two
artifacts under EXPORT_DIR: a full JSON mirror of the run, and a CSV
with one row per matched image-trace pair.

`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
