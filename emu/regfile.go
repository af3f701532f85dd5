// Package emu provides functional S16 emulation.
package emu

import "github.com/sarchlab/s16sim/insts"

// StackBase is the initial stack pointer. The stack grows down from here.
const StackBase uint16 = 0x8200

// RegFile represents the S16 register file.
// It contains 8 general-purpose registers (R0-R7), the program counter,
// the stack pointer, the instruction register and the status flags.
type RegFile struct {
	// R holds general-purpose registers R0-R7.
	R [insts.NumRegs]uint16

	// PC is the program counter, a byte address into instruction memory.
	PC uint16

	// SP is the stack pointer.
	SP uint16

	// IR holds the most recently fetched instruction word.
	IR uint16

	// Flags holds the status flags.
	Flags Flags
}

// Flags represents the status flags. Instructions write only the flags
// they define; the others keep their previous value.
type Flags struct {
	Carry    bool
	Overflow bool
	Zero     bool
	Sign     bool
}

// NewRegFile returns a register file with SP at StackBase.
func NewRegFile() *RegFile {
	return &RegFile{SP: StackBase}
}

// ReadReg reads a register value. Only the low three bits of reg are used.
func (r *RegFile) ReadReg(reg uint8) uint16 {
	return r.R[reg&0x7]
}

// WriteReg writes a value to a register.
func (r *RegFile) WriteReg(reg uint8, value uint16) {
	r.R[reg&0x7] = value
}
