// Package core provides the timing model of the S16 processor.
// It wraps the functional emulator and charges cycles for every retired
// instruction from the latency table, the data cache and the branch
// predictor.
package core

import (
	"github.com/sarchlab/s16sim/emu"
	"github.com/sarchlab/s16sim/insts"
	"github.com/sarchlab/s16sim/timing/cache"
	"github.com/sarchlab/s16sim/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls counts cycles spent waiting on data cache misses.
	Stalls uint64
	// Flushes counts branch mispredictions.
	Flushes uint64

	Branch BranchPredictorStats
	// DCache is zero when no data cache is modelled.
	DCache cache.Statistics
}

// CPI returns cycles per instruction, or 0 before anything retired.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core represents the timing model of one S16 processor.
type Core struct {
	emulator  *emu.Emulator
	table     *latency.Table
	predictor *BranchPredictor
	dcache    *cache.Cache

	cycles       uint64
	instructions uint64
	stalls       uint64
	flushes      uint64
}

// NewCore creates a Core around emulator. A nil config selects
// latency.DefaultTimingConfig.
func NewCore(emulator *emu.Emulator, config *latency.TimingConfig) *Core {
	if config == nil {
		config = latency.DefaultTimingConfig()
	}

	c := &Core{
		emulator:  emulator,
		table:     latency.NewTableWithConfig(config),
		predictor: NewBranchPredictor(config.BHTSize),
	}

	if config.DCache.Enabled() {
		c.dcache = cache.New(cache.Config{
			Size:          config.DCache.Size,
			Associativity: config.DCache.Associativity,
			BlockSize:     config.DCache.BlockSize,
			HitLatency:    config.DCache.HitLatency,
			MissLatency:   config.DCache.MissLatency,
		}, cache.NewMemoryBacking(emulator.DataMemory()))
	}

	return c
}

// Emulator returns the wrapped functional emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Halted returns true if the wrapped emulator has stopped.
func (c *Core) Halted() bool {
	halted, _ := c.emulator.Halted()
	return halted
}

// Step retires one instruction and charges its cycles.
func (c *Core) Step() emu.StepResult {
	if c.Halted() {
		return c.emulator.Step()
	}

	result := c.emulator.Step()
	if result.Inst == nil {
		return result
	}

	c.instructions++
	c.cycles += c.charge(result)

	return result
}

// Run steps until the emulator halts, then passes the final state to the
// emulator's dump hook.
func (c *Core) Run() (emu.HaltReason, error) {
	var result emu.StepResult
	for !result.Halted {
		result = c.Step()
	}

	c.emulator.Dump()

	return result.Reason, result.Err
}

// RunCycles steps until at least cycles more cycles have elapsed.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	target := c.cycles + cycles
	for c.cycles < target && !c.Halted() {
		c.Step()
	}
	return !c.Halted()
}

func (c *Core) charge(result emu.StepResult) uint64 {
	inst := result.Inst
	cycles := c.table.GetLatency(inst)

	if result.Err != nil {
		return cycles
	}

	switch {
	case c.dcache != nil && result.Access.Kind == emu.AccessLoad:
		access := c.dcache.Read(uint64(result.Access.Addr), result.Access.Size)
		cycles = c.cacheCycles(access)

	case c.dcache != nil && result.Access.Kind == emu.AccessStore:
		access := c.dcache.Write(uint64(result.Access.Addr), result.Access.Size,
			c.storedValue(result.Access))
		cycles = c.cacheCycles(access)

	case inst.IsBranch() && inst.Cond != insts.CondAlways:
		if !c.predictor.Update(result.PC, result.BranchTaken) {
			c.flushes++
			cycles += c.table.Config().BranchMispredictPenalty
		}
	}

	return cycles
}

func (c *Core) cacheCycles(access cache.AccessResult) uint64 {
	if !access.Hit {
		c.stalls += access.Latency - c.dcache.Config().HitLatency
	}
	return access.Latency
}

// storedValue reads back what the emulator just wrote so the cache line
// holds the same bytes as data memory.
func (c *Core) storedValue(access emu.Access) uint16 {
	mem := c.emulator.DataMemory()
	if access.Size == 1 {
		b, _ := mem.Read8(access.Addr)
		return uint16(b)
	}
	v, _ := mem.Read16(access.Addr)
	return v
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	stats := Stats{
		Cycles:       c.cycles,
		Instructions: c.instructions,
		Stalls:       c.stalls,
		Flushes:      c.flushes,
		Branch:       c.predictor.Stats(),
	}
	if c.dcache != nil {
		stats.DCache = c.dcache.Stats()
	}
	return stats
}

// Reset clears timing state and statistics. The emulator is left alone.
func (c *Core) Reset() {
	c.cycles, c.instructions, c.stalls, c.flushes = 0, 0, 0, 0
	c.predictor.Reset()
	if c.dcache != nil {
		c.dcache.Reset()
	}
}
