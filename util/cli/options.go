package cli

import (
	"flag"
)

type Options struct {
	ChannelBufferSize int
	Days              int
	NumWorkers        int
	PrintHelp         bool
	SkipExportQueue   bool
}

var opts = Options{}
var defaultBufSize = 20
var defaultDays = 1
var defaultWorkers = 3

var EnvMessage = `This requires the following environment vars:

MEAL_CONFIG_DIR - Path to the directory containing the .env settings file.

MEAL_SERVICES_CONFIG - Name of the configuration to load. For example:
    test - Loads .env.test from MEAL_CONFIG_DIR
    demo - Loads .env.demo from MEAL_CONFIG_DIR
`

func Init() {
	flag.IntVar(&opts.ChannelBufferSize, "bufsize", defaultBufSize, "Channel buffer size for go workers")
	flag.IntVar(&opts.Days, "days", defaultDays, "Number of days back to select traces from the tracing backend")
	flag.IntVar(&opts.NumWorkers, "workers", defaultWorkers, "Number of go routines to handle per-user matching work")
	flag.BoolVar(&opts.PrintHelp, "help", false, "Print help message")
	flag.BoolVar(&opts.SkipExportQueue, "no-queue", false, "Do not post the completed run to the NSQ export topic")
}

func ParseOpts() Options {
	flag.Parse()
	return opts
}

func PrintDefaults() {
	flag.PrintDefaults()
}
