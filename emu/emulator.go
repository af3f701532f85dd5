// Package emu provides functional S16 emulation.
package emu

import (
	"fmt"

	"github.com/sarchlab/s16sim/insts"
)

// HaltReason explains why execution stopped.
type HaltReason uint8

// Halt reasons.
const (
	// HaltNone means the emulator is still running.
	HaltNone HaltReason = iota
	// HaltInstruction means a HALT (0xFFFF) word was fetched.
	HaltInstruction
	// HaltMalformed means a reserved opcode-0 pattern was fetched.
	HaltMalformed
	// HaltEndOfProgram means PC passed the highest loaded address, or a
	// taken branch landed exactly on it.
	HaltEndOfProgram
	// HaltFault means an access fell outside a memory region.
	HaltFault
	// HaltInstructionLimit means the instruction budget ran out.
	HaltInstructionLimit
)

func (r HaltReason) String() string {
	switch r {
	case HaltNone:
		return "running"
	case HaltInstruction:
		return "halt instruction"
	case HaltMalformed:
		return "malformed instruction"
	case HaltEndOfProgram:
		return "end of program"
	case HaltFault:
		return "fault"
	case HaltInstructionLimit:
		return "instruction limit"
	default:
		return fmt.Sprintf("HaltReason(%d)", uint8(r))
	}
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// PC is the address the instruction was fetched from.
	PC uint16

	// Inst is the decoded instruction, nil if nothing was fetched.
	Inst *insts.Instruction

	// BranchTaken is true if a jump changed PC.
	BranchTaken bool

	// Access is the data-side memory access the instruction made.
	Access Access

	// Halted is true if execution must not continue.
	Halted bool

	// Reason is why execution stopped, if Halted.
	Reason HaltReason

	// Err is set if the step faulted or the budget ran out.
	Err error
}

// Emulator executes S16 instructions functionally.
type Emulator struct {
	regFile *RegFile
	imem    *Memory
	data    *Memory
	stack   *Memory
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	dumpHook DumpHook

	// Execution state
	highestAddress   uint16
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
	halted           bool
	reason           HaltReason
	err              error
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithDumpHook sets the function that receives state dumps.
func WithDumpHook(hook DumpHook) EmulatorOption {
	return func(e *Emulator) {
		e.dumpHook = hook
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithHighestAddress sets the end-of-program address explicitly.
func WithHighestAddress(addr uint16) EmulatorOption {
	return func(e *Emulator) {
		e.highestAddress = addr
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint16) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.SP = sp
	}
}

// NewEmulator creates a new S16 emulator with zeroed memories.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: NewRegFile(),
		imem:    NewMemory("instruction", 0),
		data:    NewMemory("data", 0),
		stack:   NewMemory("stack", uint32(StackBase)-MemorySize),
		decoder: insts.NewDecoder(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.buildUnits()

	return e
}

func (e *Emulator) buildUnits() {
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.data, e.stack)
	e.branchUnit = NewBranchUnit(e.regFile)
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// InstructionMemory returns the memory instructions are fetched from.
func (e *Emulator) InstructionMemory() *Memory {
	return e.imem
}

// DataMemory returns the memory LOAD and STORE operate on.
func (e *Emulator) DataMemory() *Memory {
	return e.data
}

// StackMemory returns the memory backing PUSH and POP.
func (e *Emulator) StackMemory() *Memory {
	return e.stack
}

// InstructionCount returns the number of instructions fetched.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// HighestAddress returns the end-of-program address.
func (e *Emulator) HighestAddress() uint16 {
	return e.highestAddress
}

// SetHighestAddress sets the end-of-program address.
func (e *Emulator) SetHighestAddress(addr uint16) {
	e.highestAddress = addr
}

// LoadWord writes an instruction word at addr and raises the highest
// address if addr is above it.
func (e *Emulator) LoadWord(addr uint16, word uint16) error {
	if err := e.imem.Write16(uint32(addr), word); err != nil {
		return err
	}
	if addr > e.highestAddress {
		e.highestAddress = addr
	}
	return nil
}

// LoadProgram loads consecutive words starting at addr.
func (e *Emulator) LoadProgram(addr uint16, words ...uint16) error {
	for i, w := range words {
		if err := e.LoadWord(addr+uint16(i*insts.WordSize), w); err != nil {
			return err
		}
	}
	return nil
}

// Reset returns the emulator to its power-on state. The dump hook and the
// instruction budget are kept.
func (e *Emulator) Reset() {
	e.regFile = NewRegFile()
	e.imem.Reset()
	e.data.Reset()
	e.stack.Reset()
	e.highestAddress = 0
	e.instructionCount = 0
	e.halted = false
	e.reason = HaltNone
	e.err = nil

	e.buildUnits()
}

// Halted reports whether execution has stopped, and why.
func (e *Emulator) Halted() (bool, HaltReason) {
	return e.halted, e.reason
}

// Step executes a single fetch-decode-execute cycle.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{PC: e.regFile.PC, Halted: true, Reason: e.reason, Err: e.err}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return e.halt(StepResult{PC: e.regFile.PC}, HaltInstructionLimit,
			fmt.Errorf("%w (%d)", ErrInstructionLimit, e.maxInstructions))
	}

	// 1. Fetch: Read 2 bytes at PC
	pc := e.regFile.PC
	word, err := e.imem.Read16(uint32(pc))
	if err != nil {
		return e.halt(StepResult{PC: pc}, HaltFault,
			fmt.Errorf("fetch at PC=0x%04X: %w", pc, err))
	}
	e.regFile.IR = word
	e.regFile.PC += insts.WordSize
	e.instructionCount++

	// 2. Decode
	inst := e.decoder.Decode(word)
	result := StepResult{PC: pc, Inst: inst}

	switch inst.Format {
	case insts.FormatHalt:
		return e.halt(result, HaltInstruction, nil)
	case insts.FormatMalformed:
		return e.halt(result, HaltMalformed, nil)
	}

	if word == 0 {
		e.Dump()
	}

	// 3. Execute
	if err := e.execute(inst, &result); err != nil {
		return e.halt(result, HaltFault,
			fmt.Errorf("%v at PC=0x%04X: %w", inst.Op, pc, err))
	}

	// 4. End-of-program detection
	if result.BranchTaken && e.regFile.PC == e.highestAddress {
		return e.halt(result, HaltEndOfProgram, nil)
	}
	if e.regFile.PC > e.highestAddress {
		return e.halt(result, HaltEndOfProgram, nil)
	}

	return result
}

func (e *Emulator) halt(result StepResult, reason HaltReason, err error) StepResult {
	e.halted = true
	e.reason = reason
	e.err = err

	result.Halted = true
	result.Reason = reason
	result.Err = err
	return result
}

// Run executes instructions until the program halts, then passes the final
// state to the dump hook. The returned error is non-nil only for faults and
// an exhausted instruction budget.
func (e *Emulator) Run() (HaltReason, error) {
	var result StepResult
	for !result.Halted {
		result = e.Step()
	}

	e.Dump()

	return result.Reason, result.Err
}

// execute dispatches and executes a decoded instruction.
func (e *Emulator) execute(inst *insts.Instruction, result *StepResult) error {
	var err error

	switch inst.Format {
	case insts.FormatMoveImm:
		e.regFile.WriteReg(inst.Rd, inst.Imm)
	case insts.FormatMoveReg:
		e.regFile.WriteReg(inst.Rd, e.regFile.ReadReg(inst.Rn))
	case insts.FormatStoreImm:
		result.Access, err = e.lsu.STOREImm(inst.Rn, uint8(inst.Imm))
	case insts.FormatStoreReg:
		result.Access, err = e.lsu.STORE(inst.Rn, inst.Rm)
	case insts.FormatLoad:
		result.Access, err = e.lsu.LOAD(inst.Rd, inst.Rn)
	case insts.FormatALU:
		e.executeALU(inst)
	case insts.FormatUnary:
		e.executeUnary(inst)
	case insts.FormatShift:
		e.executeShift(inst)
	case insts.FormatCompare:
		e.alu.CMP(inst.Rn, inst.Rm)
	case insts.FormatPush:
		result.Access, err = e.lsu.PUSH(inst.Rm)
	case insts.FormatPop:
		result.Access, err = e.lsu.POP(inst.Rd)
	case insts.FormatBranch:
		result.BranchTaken = e.branchUnit.Branch(inst.BranchOffset, inst.Cond)
	case insts.FormatNop, insts.FormatUnknown:
		// Retires without effect.
	}

	return err
}

// executeALU executes three-register operations.
func (e *Emulator) executeALU(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpADD:
		e.alu.ADD(inst.Rd, inst.Rn, inst.Rm)
	case insts.OpSUB:
		e.alu.SUB(inst.Rd, inst.Rn, inst.Rm)
	case insts.OpMUL:
		e.alu.MUL(inst.Rd, inst.Rn, inst.Rm)
	case insts.OpAND:
		e.alu.AND(inst.Rd, inst.Rn, inst.Rm)
	case insts.OpOR:
		e.alu.OR(inst.Rd, inst.Rn, inst.Rm)
	case insts.OpXOR:
		e.alu.XOR(inst.Rd, inst.Rn, inst.Rm)
	}
}

// executeUnary executes single-source operations.
func (e *Emulator) executeUnary(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpNOT:
		e.alu.NOT(inst.Rd, inst.Rn)
	case insts.OpROR:
		e.alu.ROR(inst.Rd, inst.Rn)
	case insts.OpROL:
		e.alu.ROL(inst.Rd, inst.Rn)
	}
}

// executeShift executes shifts by an immediate.
func (e *Emulator) executeShift(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpSHR:
		e.alu.SHR(inst.Rd, inst.Rn, inst.Imm)
	case insts.OpSHL:
		e.alu.SHL(inst.Rd, inst.Rn, inst.Imm)
	}
}
