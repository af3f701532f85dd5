// Package main provides the entry point for S16Sim.
// S16Sim simulates a 16-bit educational instruction set, with an optional
// timing model built on Akita cache components.
//
// For the full CLI, use: go run ./cmd/s16sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("S16Sim - 16-bit ISA Simulator")
	fmt.Println("")
	fmt.Println("Usage: s16sim [options] [program.txt]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -program            Path to the program image (default program.txt)")
	fmt.Println("  -max-instructions   Instruction budget (default 1000000, 0 = unlimited)")
	fmt.Println("  -format             Dump format: text or json")
	fmt.Println("  -timing             Enable timing simulation mode")
	fmt.Println("  -config             Path to timing configuration JSON file")
	fmt.Println("  -v                  Verbose output")
	fmt.Println("")
	fmt.Println("Tools:")
	fmt.Println("  go run ./cmd/s16asm     Assemble source into a program image")
	fmt.Println("  go run ./cmd/benchmark  Run the timing benchmarks")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/s16sim' instead.")
	}
}
