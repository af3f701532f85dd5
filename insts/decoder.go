// Package insts provides S16 instruction definitions and decoding.
package insts

import "fmt"

// Op represents an S16 operation.
type Op uint8

// S16 operations.
const (
	OpUnknown Op = iota
	OpMOV
	OpSTORE
	OpLOAD
	OpADD
	OpSUB
	OpMUL
	OpAND
	OpOR
	OpNOT
	OpXOR
	OpSHR
	OpSHL
	OpROR
	OpROL
	OpCMP
	OpPUSH
	OpPOP
	OpJMP
	OpJEQ
	OpJLT
	OpJGT
	OpNOP
	OpHALT
)

var opNames = [...]string{
	OpUnknown: "UNKNOWN",
	OpMOV:     "MOV",
	OpSTORE:   "STORE",
	OpLOAD:    "LOAD",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpMUL:     "MUL",
	OpAND:     "AND",
	OpOR:      "OR",
	OpNOT:     "NOT",
	OpXOR:     "XOR",
	OpSHR:     "SHR",
	OpSHL:     "SHL",
	OpROR:     "ROR",
	OpROL:     "ROL",
	OpCMP:     "CMP",
	OpPUSH:    "PUSH",
	OpPOP:     "POP",
	OpJMP:     "JMP",
	OpJEQ:     "JEQ",
	OpJLT:     "JLT",
	OpJGT:     "JGT",
	OpNOP:     "NOP",
	OpHALT:    "HALT",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Format identifies which variant of Instruction is populated.
type Format uint8

// Instruction formats.
const (
	FormatUnknown   Format = iota
	FormatMoveImm          // MOV Rd, #imm8
	FormatMoveReg          // MOV Rd, Rn
	FormatStoreImm         // STORE [Rn], #imm8
	FormatStoreReg         // STORE [Rn], Rm
	FormatLoad             // LOAD Rd, [Rn]
	FormatALU              // Rd = Rn op Rm
	FormatUnary            // Rd = op Rn
	FormatShift            // Rd = Rn shift #imm5
	FormatCompare          // CMP Rn, Rm
	FormatPush             // PUSH Rm
	FormatPop              // POP Rd
	FormatBranch           // Jcc offset
	FormatHalt             // 0xFFFF
	FormatMalformed        // reserved opcode-0 pattern
	FormatNop              // no operation
)

// Cond represents a branch condition.
type Cond uint8

// Branch conditions, encoded in bits [1:0] of a branch word.
const (
	CondAlways Cond = 0b00 // Unconditional
	CondEQ     Cond = 0b01 // Z == 1 && S == 0
	CondLT     Cond = 0b10 // Z == 0 && S == 1
	CondGT     Cond = 0b11 // Z == 0 && S == 0
)

// Sub-opcodes in bits [1:0] of an opcode-0 word with bit 11 clear.
const (
	subMisc    = 0b00
	subPush    = 0b01
	subPop     = 0b10
	subCompare = 0b11
)

// Instruction represents a decoded S16 instruction.
type Instruction struct {
	Word   uint16 // Raw instruction word
	Op     Op     // Operation
	Format Format // Encoding variant

	Rd uint8 // Destination register
	Rn uint8 // First source register (address register for LOAD/STORE)
	Rm uint8 // Second source register (source for STORE/PUSH)

	// Imm holds the 8-bit MOV/STORE immediate or the 5-bit shift amount.
	Imm uint16

	// Branch fields
	BranchOffset int16 // Signed offset in bytes, relative to the next PC
	Cond         Cond  // Branch condition
}

// SetsFlags reports whether executing the instruction may write a flag.
func (i *Instruction) SetsFlags() bool {
	switch i.Op {
	case OpADD, OpSUB, OpMUL, OpAND, OpOR, OpNOT, OpXOR, OpCMP:
		return true
	default:
		return false
	}
}

// IsBranch reports whether the instruction is a member of the jump family.
func (i *Instruction) IsBranch() bool {
	return i.Format == FormatBranch
}

// Decoder decodes S16 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new S16 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 16-bit S16 instruction word. It never fails; words that
// do not name an operation decode to FormatUnknown or FormatMalformed.
func (d *Decoder) Decode(word uint16) *Instruction {
	inst := &Instruction{Word: word, Op: OpUnknown, Format: FormatUnknown}

	if word == HaltWord {
		inst.Op = OpHALT
		inst.Format = FormatHalt
		return inst
	}

	opcode := word >> 12
	inst.Rd = uint8((word >> 8) & 0x7) // bits [10:8]
	inst.Rn = uint8((word >> 5) & 0x7) // bits [7:5]
	inst.Rm = uint8((word >> 2) & 0x7) // bits [4:2]

	switch opcode {
	case 0x0:
		d.decodeSystem(word, inst)
	case 0x1:
		d.decodeMove(word, inst)
	case 0x2:
		d.decodeStore(word, inst)
	case 0x3:
		inst.Op = OpLOAD
		inst.Format = FormatLoad
	case 0x4, 0x5, 0x6, 0x7, 0x8, 0xA:
		inst.Op = aluOps[opcode]
		inst.Format = FormatALU
	case 0x9, 0xD, 0xE:
		inst.Op = aluOps[opcode]
		inst.Format = FormatUnary
	case 0xB, 0xC:
		inst.Op = aluOps[opcode]
		inst.Format = FormatShift
		inst.Imm = word & 0x1F // bits [4:0]
	default:
		// Opcode 0xF is unassigned apart from HALT.
	}

	return inst
}

var aluOps = [16]Op{
	0x4: OpADD,
	0x5: OpSUB,
	0x6: OpMUL,
	0x7: OpAND,
	0x8: OpOR,
	0x9: OpNOT,
	0xA: OpXOR,
	0xB: OpSHR,
	0xC: OpSHL,
	0xD: OpROR,
	0xE: OpROL,
}

// decodeMove decodes MOV.
// Format: 0001 | 1 | Rd | imm8  or  0001 | 0 | Rd | Rn | xxxxx
func (d *Decoder) decodeMove(word uint16, inst *Instruction) {
	inst.Op = OpMOV
	if word&0x0800 != 0 {
		inst.Format = FormatMoveImm
		inst.Imm = word & 0x00FF // bits [7:0]
		return
	}
	inst.Format = FormatMoveReg
}

// decodeStore decodes STORE.
// Format: 0010 | 1 | imm[7:5] | Rn | imm[4:0]  or  0010 | 0 | xxx | Rn | Rm | xx
func (d *Decoder) decodeStore(word uint16, inst *Instruction) {
	inst.Op = OpSTORE
	if word&0x0800 != 0 {
		inst.Format = FormatStoreImm
		inst.Imm = (word&0x0700)>>3 | word&0x001F
		return
	}
	inst.Format = FormatStoreReg
}

// decodeSystem decodes the opcode-0 space: NOP, CMP, PUSH, POP and the
// branch family.
func (d *Decoder) decodeSystem(word uint16, inst *Instruction) {
	if word&0x0800 != 0 {
		d.decodeBranch(word, inst)
		return
	}

	switch word & 0x3 {
	case subCompare:
		inst.Op = OpCMP
		inst.Format = FormatCompare
	case subPush:
		inst.Op = OpPUSH
		inst.Format = FormatPush
	case subPop:
		inst.Op = OpPOP
		inst.Format = FormatPop
	case subMisc:
		if word&0x00FC != 0 {
			inst.Format = FormatMalformed
			return
		}
		// 0x0000 and the words that only set bits [10:8] retire without
		// effect; only 0x0000 triggers a state dump.
		inst.Op = OpNOP
		inst.Format = FormatNop
	}
}

// decodeBranch decodes the jump family.
// Format: 0000 | 1 | offset9 | cond
func (d *Decoder) decodeBranch(word uint16, inst *Instruction) {
	inst.Format = FormatBranch

	imm9 := (word >> 2) & 0x1FF // bits [10:2]
	offset := int16(imm9)
	if imm9&0x100 != 0 {
		// Sign extend
		offset = int16(imm9 | 0xFE00)
	}
	inst.BranchOffset = offset
	inst.Cond = Cond(word & 0x3)

	switch inst.Cond {
	case CondAlways:
		inst.Op = OpJMP
	case CondEQ:
		inst.Op = OpJEQ
	case CondLT:
		inst.Op = OpJLT
	case CondGT:
		inst.Op = OpJGT
	}
}
