// Package main provides the entry point for S16Sim, a simulator for a
// 16-bit educational instruction set.
//
// Usage:
//
//	s16sim [flags] [program.txt]
//
// The program image is read from -program (default program.txt) unless a
// path is given as an argument. The final processor state is printed to
// stdout. Exit status is 1 if the program cannot be loaded and 2 if it
// faulted or ran out of instruction budget.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/s16sim/dump"
	"github.com/sarchlab/s16sim/emu"
	"github.com/sarchlab/s16sim/loader"
	"github.com/sarchlab/s16sim/timing/core"
	"github.com/sarchlab/s16sim/timing/latency"
)

const (
	exitOK      = 0
	exitSetup   = 1
	exitFaulted = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	programPath     string
	maxInstructions uint64
	format          string
	timing          bool
	configPath      string
	verbose         bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("s16sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.programPath, "program", "program.txt", "Path to the program image")
	fs.Uint64Var(&opts.maxInstructions, "max-instructions", 1000000,
		"Stop after this many instructions (0 = unlimited)")
	fs.StringVar(&opts.format, "format", "text", "Dump format: text or json")
	fs.BoolVar(&opts.timing, "timing", false, "Enable timing simulation mode")
	fs.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		opts.programPath = fs.Arg(0)
	}

	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("unknown dump format %q", opts.format)
	}

	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	prog, err := loader.Load(opts.programPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitSetup
	}

	var timingConfig *latency.TimingConfig
	if opts.timing {
		timingConfig, err = loadTimingConfig(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading timing config: %v\n", err)
			return exitSetup
		}
	}

	var dumpErr error
	onErr := func(err error) {
		if dumpErr == nil {
			dumpErr = err
		}
	}

	hook := dump.Hook(stdout, onErr)
	info := stdout
	if opts.format == "json" {
		hook = dump.JSONHook(stdout, onErr)
		info = stderr
	}

	emulator := emu.NewEmulator(
		emu.WithDumpHook(hook),
		emu.WithMaxInstructions(opts.maxInstructions),
	)
	if err := prog.LoadInto(emulator); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitSetup
	}

	if opts.verbose {
		fmt.Fprintf(info, "Loaded: %s\n", opts.programPath)
		fmt.Fprintf(info, "Words: %d\n", len(prog.Words()))
		fmt.Fprintf(info, "Highest address: 0x%04X\n", prog.HighestAddress)
	}

	var (
		reason emu.HaltReason
		runErr error
	)
	if opts.timing {
		c := core.NewCore(emulator, timingConfig)
		reason, runErr = c.Run()
		if opts.verbose {
			printTimingReport(info, c.Stats())
		}
	} else {
		reason, runErr = emulator.Run()
	}

	if opts.verbose {
		fmt.Fprintf(info, "\nProgram: %s\n", opts.programPath)
		fmt.Fprintf(info, "Halt reason: %v\n", reason)
		fmt.Fprintf(info, "Instructions executed: %d\n", emulator.InstructionCount())
	}

	if dumpErr != nil {
		fmt.Fprintf(stderr, "Error writing state: %v\n", dumpErr)
		return exitSetup
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return exitFaulted
	}

	return exitOK
}

func loadTimingConfig(path string) (*latency.TimingConfig, error) {
	if path == "" {
		return latency.DefaultTimingConfig(), nil
	}

	config, err := latency.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func printTimingReport(w io.Writer, stats core.Stats) {
	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Breakdown:\n")
	fmt.Fprintf(w, "  Memory stalls:   %4d cycles (%5.1f%%)\n",
		stats.Stalls, 100.0*float64(stats.Stalls)/float64(totalCycles))
	fmt.Fprintf(w, "  Branch flushes:  %4d\n", stats.Flushes)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Branch Predictor:\n")
	fmt.Fprintf(w, "  Predictions: %d\n", stats.Branch.Predictions)
	fmt.Fprintf(w, "  Accuracy:    %.1f%%\n", stats.Branch.Accuracy())
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "D-Cache:\n")
	fmt.Fprintf(w, "  Hits:     %d\n", stats.DCache.Hits)
	fmt.Fprintf(w, "  Misses:   %d\n", stats.DCache.Misses)
	fmt.Fprintf(w, "  Hit rate: %.1f%%\n", 100.0*stats.DCache.HitRate())
}
