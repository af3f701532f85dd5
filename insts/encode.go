package insts

import (
	"errors"
	"fmt"
)

// ErrBranchRange is returned when a branch offset does not fit the 9-bit
// signed field.
var ErrBranchRange = errors.New("branch offset out of range")

// Branch offsets are 9-bit two's complement byte counts.
const (
	MinBranchOffset = -256
	MaxBranchOffset = 255
)

func reg(r uint8) uint16 { return uint16(r & 0x7) }

// EncodeMOVImm encodes MOV Rd, #imm8.
func EncodeMOVImm(rd uint8, imm uint8) uint16 {
	return 0x1000 | 0x0800 | reg(rd)<<8 | uint16(imm)
}

// EncodeMOVReg encodes MOV Rd, Rn.
func EncodeMOVReg(rd, rn uint8) uint16 {
	return 0x1000 | reg(rd)<<8 | reg(rn)<<5
}

// EncodeSTOREImm encodes STORE [Rn], #imm8. The immediate is split across
// bits [10:8] (high three bits) and [4:0] (low five bits).
func EncodeSTOREImm(rn uint8, imm uint8) uint16 {
	hi := uint16(imm>>5) & 0x7
	lo := uint16(imm) & 0x1F
	return 0x2000 | 0x0800 | hi<<8 | reg(rn)<<5 | lo
}

// EncodeSTOREReg encodes STORE [Rn], Rm.
func EncodeSTOREReg(rn, rm uint8) uint16 {
	return 0x2000 | reg(rn)<<5 | reg(rm)<<2
}

// EncodeLOAD encodes LOAD Rd, [Rn].
func EncodeLOAD(rd, rn uint8) uint16 {
	return 0x3000 | reg(rd)<<8 | reg(rn)<<5
}

var aluOpcodes = map[Op]uint16{
	OpADD: 0x4,
	OpSUB: 0x5,
	OpMUL: 0x6,
	OpAND: 0x7,
	OpOR:  0x8,
	OpNOT: 0x9,
	OpXOR: 0xA,
	OpSHR: 0xB,
	OpSHL: 0xC,
	OpROR: 0xD,
	OpROL: 0xE,
}

// EncodeALU encodes a three-register operation: Rd = Rn op Rm. It also
// accepts the unary operations, in which case Rm is ignored by hardware.
func EncodeALU(op Op, rd, rn, rm uint8) uint16 {
	opcode, ok := aluOpcodes[op]
	if !ok || op == OpSHR || op == OpSHL {
		panic(fmt.Sprintf("insts: %v is not a register ALU operation", op))
	}
	return opcode<<12 | reg(rd)<<8 | reg(rn)<<5 | reg(rm)<<2
}

// EncodeUnary encodes NOT, ROR or ROL: Rd = op Rn.
func EncodeUnary(op Op, rd, rn uint8) uint16 {
	return EncodeALU(op, rd, rn, 0)
}

// EncodeShift encodes SHR or SHL: Rd = Rn shift #amount.
func EncodeShift(op Op, rd, rn uint8, amount uint8) uint16 {
	if op != OpSHR && op != OpSHL {
		panic(fmt.Sprintf("insts: %v is not a shift", op))
	}
	return aluOpcodes[op]<<12 | reg(rd)<<8 | reg(rn)<<5 | uint16(amount&0x1F)
}

// EncodeCMP encodes CMP Rn, Rm.
func EncodeCMP(rn, rm uint8) uint16 {
	return reg(rn)<<5 | reg(rm)<<2 | subCompare
}

// EncodePUSH encodes PUSH Rm.
func EncodePUSH(rm uint8) uint16 {
	return reg(rm)<<2 | subPush
}

// EncodePOP encodes POP Rd.
func EncodePOP(rd uint8) uint16 {
	return reg(rd)<<8 | subPop
}

// EncodeBranch encodes a jump with the given condition. The offset is in
// bytes relative to the address of the following instruction.
func EncodeBranch(cond Cond, offset int) (uint16, error) {
	if offset < MinBranchOffset || offset > MaxBranchOffset {
		return 0, fmt.Errorf("%w: %d", ErrBranchRange, offset)
	}
	imm9 := uint16(offset) & 0x1FF
	return 0x0800 | imm9<<2 | uint16(cond&0x3), nil
}

// EncodeNOP encodes NOP.
func EncodeNOP() uint16 {
	return 0x0000
}

// EncodeHALT encodes HALT.
func EncodeHALT() uint16 {
	return HaltWord
}
