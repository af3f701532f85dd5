// Package insts provides S16 instruction definitions and decoding.
//
// Every instruction is one little-endian 16-bit word. The fields are laid
// out as follows (bit 15 is the MSB):
//
//	[15:12] opcode
//	[11]    mode bit (immediate form of MOV/STORE, branch family in opcode 0)
//	[10:8]  Rd
//	[7:5]   Rn
//	[4:2]   Rm
//	[1:0]   sub-opcode within opcode 0
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x4128) // ADD R1, R1, R2
//	fmt.Printf("Op: %v, Rd: %d, Rn: %d, Rm: %d\n", inst.Op, inst.Rd, inst.Rn, inst.Rm)
package insts

// NumRegs is the size of the general-purpose register file.
const NumRegs = 8

// WordSize is the size of one instruction word in bytes.
const WordSize = 2

// HaltWord is the instruction word that stops execution unconditionally.
const HaltWord uint16 = 0xFFFF
