// Package emu provides functional S16 emulation.
package emu

import "math/bits"

// ALU implements S16 arithmetic and logic operations. All arithmetic is
// 16-bit and wraps modulo 65536.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// ADD performs Rd = Rn + Rm and sets all four flags.
func (a *ALU) ADD(rd, rn, rm uint8) {
	op1 := a.regFile.ReadReg(rn)
	op2 := a.regFile.ReadReg(rm)
	sum := uint32(op1) + uint32(op2)
	result := uint16(sum)

	a.regFile.WriteReg(rd, result)
	a.setAddFlags(op1, op2, result, sum)
}

// SUB performs Rd = Rn - Rm and sets all four flags.
func (a *ALU) SUB(rd, rn, rm uint8) {
	op1 := a.regFile.ReadReg(rn)
	op2 := a.regFile.ReadReg(rm)
	result := op1 - op2

	a.regFile.WriteReg(rd, result)
	a.setSubFlags(op1, op2, result)
}

// MUL performs Rd = Rn * Rm and sets all four flags. Carry and overflow
// both report that the full product did not fit in 16 bits.
func (a *ALU) MUL(rd, rn, rm uint8) {
	op1 := a.regFile.ReadReg(rn)
	op2 := a.regFile.ReadReg(rm)
	product := uint32(op1) * uint32(op2)
	result := uint16(product)

	a.regFile.WriteReg(rd, result)

	flags := &a.regFile.Flags
	flags.Carry = product > 0xFFFF
	flags.Overflow = flags.Carry
	a.setLogicFlags(result)
}

// AND performs Rd = Rn & Rm.
func (a *ALU) AND(rd, rn, rm uint8) {
	result := a.regFile.ReadReg(rn) & a.regFile.ReadReg(rm)
	a.regFile.WriteReg(rd, result)
	a.setLogicFlags(result)
}

// OR performs Rd = Rn | Rm.
func (a *ALU) OR(rd, rn, rm uint8) {
	result := a.regFile.ReadReg(rn) | a.regFile.ReadReg(rm)
	a.regFile.WriteReg(rd, result)
	a.setLogicFlags(result)
}

// XOR performs Rd = Rn ^ Rm.
func (a *ALU) XOR(rd, rn, rm uint8) {
	result := a.regFile.ReadReg(rn) ^ a.regFile.ReadReg(rm)
	a.regFile.WriteReg(rd, result)
	a.setLogicFlags(result)
}

// NOT performs Rd = ^Rn.
func (a *ALU) NOT(rd, rn uint8) {
	result := ^a.regFile.ReadReg(rn)
	a.regFile.WriteReg(rd, result)
	a.setLogicFlags(result)
}

// SHR performs a logical right shift: Rd = Rn >> amount. Flags are not
// touched.
func (a *ALU) SHR(rd, rn uint8, amount uint16) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rn)>>amount)
}

// SHL performs a logical left shift: Rd = Rn << amount. Flags are not
// touched.
func (a *ALU) SHL(rd, rn uint8, amount uint16) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rn)<<amount)
}

// ROR rotates Rn right by one bit into Rd.
func (a *ALU) ROR(rd, rn uint8) {
	a.regFile.WriteReg(rd, bits.RotateLeft16(a.regFile.ReadReg(rn), -1))
}

// ROL rotates Rn left by one bit into Rd.
func (a *ALU) ROL(rd, rn uint8) {
	a.regFile.WriteReg(rd, bits.RotateLeft16(a.regFile.ReadReg(rn), 1))
}

// CMP compares Rn with Rm. Zero is set on equality and Sign when Rn is
// below Rm as an unsigned value. Carry and overflow are not touched.
func (a *ALU) CMP(rn, rm uint8) {
	op1 := a.regFile.ReadReg(rn)
	op2 := a.regFile.ReadReg(rm)

	a.regFile.Flags.Zero = op1 == op2
	a.regFile.Flags.Sign = op1 < op2
}

// setAddFlags sets all flags for addition.
func (a *ALU) setAddFlags(op1, op2, result uint16, sum uint32) {
	flags := &a.regFile.Flags

	// Carry: the unwrapped sum needs a 17th bit
	flags.Carry = sum > 0xFFFF

	// Overflow: two operands of the same sign produce a result of the
	// other sign
	op1Sign := op1 >> 15
	op2Sign := op2 >> 15
	resultSign := result >> 15
	flags.Overflow = (op1Sign == op2Sign) && (op1Sign != resultSign)

	a.setLogicFlags(result)
}

// setSubFlags sets all flags for subtraction.
func (a *ALU) setSubFlags(op1, op2, result uint16) {
	flags := &a.regFile.Flags

	// Carry: unsigned borrow
	flags.Carry = op1 < op2

	// Overflow: operands of different sign and the result takes the sign
	// of the subtrahend
	op1Sign := op1 >> 15
	op2Sign := op2 >> 15
	resultSign := result >> 15
	flags.Overflow = (op1Sign != op2Sign) && (op2Sign == resultSign)

	a.setLogicFlags(result)
}

// setLogicFlags sets Z and S from a result.
func (a *ALU) setLogicFlags(result uint16) {
	a.regFile.Flags.Zero = result == 0
	a.regFile.Flags.Sign = result>>15 == 1
}
