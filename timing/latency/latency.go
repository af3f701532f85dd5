// Package latency provides instruction timing models for the S16 timing
// core. The values can be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/s16sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given instruction.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpMUL:
		return t.config.MultiplyLatency

	case insts.OpJMP, insts.OpJEQ, insts.OpJLT, insts.OpJGT:
		return t.config.BranchLatency

	case insts.OpLOAD:
		return t.config.LoadLatency

	case insts.OpSTORE:
		return t.config.StoreLatency

	case insts.OpPUSH, insts.OpPOP:
		return t.config.StackLatency

	case insts.OpMOV, insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpOR,
		insts.OpNOT, insts.OpXOR, insts.OpSHR, insts.OpSHL, insts.OpROR,
		insts.OpROL, insts.OpCMP:
		return t.config.ALULatency

	default:
		return 1
	}
}

// IsMemoryOp returns true if the instruction accesses data memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return t.IsLoadOp(inst) || t.IsStoreOp(inst)
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLOAD
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpSTORE
}

// IsBranchOp returns true if the instruction is a branch operation.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.IsBranch()
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
