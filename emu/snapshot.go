package emu

import "github.com/sarchlab/s16sim/insts"

// Snapshot is a read-only copy of processor state, taken for display.
type Snapshot struct {
	Registers [insts.NumRegs]uint16
	PC        uint16
	SP        uint16
	IR        uint16
	Flags     Flags

	Data         [MemorySize]byte
	DataTouched  [MemorySize]bool
	Stack        [MemorySize]byte
	StackTouched [MemorySize]bool

	// StackLow is the address of stack index 0; StackBase is the address
	// just past the top of the stack region.
	StackLow  uint32
	StackBase uint16
}

// DumpHook receives a snapshot on every NOP and once when Run returns.
type DumpHook func(Snapshot)

// Snapshot copies the current processor state.
func (e *Emulator) Snapshot() Snapshot {
	return Snapshot{
		Registers:    e.regFile.R,
		PC:           e.regFile.PC,
		SP:           e.regFile.SP,
		IR:           e.regFile.IR,
		Flags:        e.regFile.Flags,
		Data:         e.data.Bytes(),
		DataTouched:  e.data.TouchedMap(),
		Stack:        e.stack.Bytes(),
		StackTouched: e.stack.TouchedMap(),
		StackLow:     e.stack.Base(),
		StackBase:    StackBase,
	}
}

// Dump passes a snapshot to the dump hook, if one is installed.
func (e *Emulator) Dump() {
	if e.dumpHook != nil {
		e.dumpHook(e.Snapshot())
	}
}
