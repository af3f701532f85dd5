// Command s16asm assembles S16 source into a program image for s16sim.
//
// Usage:
//
//	s16asm [-o program.txt] [-D NAME=VALUE]... [-v] source.s
//
// With no -o the image is written to stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/s16sim/asm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// defines collects repeated -D NAME=VALUE flags.
type defines map[string]int64

func (d defines) String() string {
	parts := make([]string, 0, len(d))
	for name, value := range d {
		parts = append(parts, fmt.Sprintf("%s=%d", name, value))
	}
	return strings.Join(parts, ",")
}

func (d defines) Set(text string) error {
	name, valueText, ok := strings.Cut(text, "=")
	if !ok {
		return fmt.Errorf("expected NAME=VALUE, got %q", text)
	}
	value, err := strconv.ParseInt(valueText, 0, 64)
	if err != nil {
		return err
	}
	d[name] = value
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		output  string
		verbose bool
	)
	predefined := defines{}

	fs := flag.NewFlagSet("s16asm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&output, "o", "", "Output image path (default: stdout)")
	fs.Var(predefined, "D", "Predefine an equate as NAME=VALUE (repeatable)")
	fs.BoolVar(&verbose, "v", false, "Log each source line")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Usage: s16asm [options] <source.s>\n")
		fs.PrintDefaults()
		return 1
	}

	source, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = source.Close() }()

	assembler := &asm.Assembler{Verbose: verbose}
	for name, value := range predefined {
		if err := assembler.Predefine(name, value); err != nil {
			fmt.Fprintf(stderr, "Error: -D %s: %v\n", name, err)
			return 1
		}
	}

	prog, err := assembler.Parse(source)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", fs.Arg(0), err)
		return 1
	}

	if output == "" {
		if err := prog.WriteImage(stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	file, err := os.Create(output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := prog.WriteImage(file); err != nil {
		_ = file.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := file.Close(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
