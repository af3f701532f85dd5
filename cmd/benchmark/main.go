// Command benchmark runs the S16Sim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-format     text, csv or json (default: text)
//	-core       Run only the quick core subset
//	-config     Path to timing configuration JSON file
//	-no-dcache  Disable data cache simulation
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -format csv > results.csv
//
// The exit status is 1 if any benchmark fails its register checks.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/s16sim/benchmarks"
	"github.com/sarchlab/s16sim/timing/latency"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "Output format: text, csv or json")
	coreOnly := fs.Bool("core", false, "Run only the core benchmarks")
	configPath := fs.String("config", "", "Path to timing configuration JSON file")
	noDCache := fs.Bool("no-dcache", false, "Disable data cache simulation")
	verbose := fs.Bool("v", false, "Log assembler input")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	config := benchmarks.DefaultConfig()
	config.Output = stdout
	config.Verbose = *verbose

	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err == nil {
			err = timing.Validate()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error loading timing config: %v\n", err)
			return 1
		}
		config.Timing = timing
	}
	if *noDCache {
		config.Timing.DCache = latency.CacheConfig{}
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch *format {
	case "csv":
		harness.PrintCSV(results)
	case "json":
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case "text":
		fmt.Fprintln(stdout, "S16Sim Timing Benchmark Harness")
		fmt.Fprintln(stdout, "===============================")
		fmt.Fprintf(stdout, "D-Cache: %v\n", config.Timing.DCache.Enabled())
		fmt.Fprintln(stdout, "")
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Fprintln(stdout, "=== Summary ===")
		fmt.Fprintf(stdout, "Passed: %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Fprintf(stdout, "Average CPI: %.3f\n", summary.AverageCPI)
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		return 1
	}

	if benchmarks.Summarize(results).Passed != len(results) {
		return 1
	}

	return 0
}
