// Package emu provides functional S16 emulation.
package emu

import "github.com/sarchlab/s16sim/insts"

// BranchUnit implements S16 jumps.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Branch adds offset to PC if cond holds and reports whether it did. PC
// must already point past the branch word.
func (b *BranchUnit) Branch(offset int16, cond insts.Cond) bool {
	if !b.CheckCondition(cond) {
		return false
	}
	b.regFile.PC += uint16(offset)
	return true
}

// CheckCondition evaluates a branch condition against the current flags.
func (b *BranchUnit) CheckCondition(cond insts.Cond) bool {
	flags := &b.regFile.Flags

	switch cond {
	case insts.CondAlways:
		return true
	case insts.CondEQ:
		// Equal: Z == 1 && S == 0
		return flags.Zero && !flags.Sign
	case insts.CondLT:
		// Less: Z == 0 && S == 1
		return !flags.Zero && flags.Sign
	case insts.CondGT:
		// Greater: Z == 0 && S == 0
		return !flags.Zero && !flags.Sign
	default:
		return false
	}
}
