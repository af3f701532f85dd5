// Package emu provides functional S16 emulation.
package emu

// AccessKind classifies a data-side memory access.
type AccessKind uint8

// Access kinds.
const (
	AccessNone AccessKind = iota
	AccessLoad
	AccessStore
	AccessPush
	AccessPop
)

// Access describes the data-side memory access an instruction made.
type Access struct {
	Kind AccessKind
	Addr uint32 // Address of the low byte
	Size int    // Bytes transferred
}

// LoadStoreUnit implements S16 data memory and stack operations.
type LoadStoreUnit struct {
	regFile *RegFile
	data    *Memory
	stack   *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file, data memory and stack memory.
func NewLoadStoreUnit(regFile *RegFile, data, stack *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		data:    data,
		stack:   stack,
	}
}

// LOAD performs Rd = mem16[Rn].
func (lsu *LoadStoreUnit) LOAD(rd, rn uint8) (Access, error) {
	addr := uint32(lsu.regFile.ReadReg(rn))
	value, err := lsu.data.Read16(addr)
	if err != nil {
		return Access{}, err
	}
	lsu.regFile.WriteReg(rd, value)
	return Access{Kind: AccessLoad, Addr: addr, Size: 2}, nil
}

// STORE performs mem16[Rn] = Rm and marks the low address touched.
func (lsu *LoadStoreUnit) STORE(rn, rm uint8) (Access, error) {
	addr := uint32(lsu.regFile.ReadReg(rn))
	if err := lsu.data.Write16(addr, lsu.regFile.ReadReg(rm)); err != nil {
		return Access{}, err
	}
	if err := lsu.data.Touch(addr); err != nil {
		return Access{}, err
	}
	return Access{Kind: AccessStore, Addr: addr, Size: 2}, nil
}

// STOREImm performs mem8[Rn] = imm and marks the address touched.
func (lsu *LoadStoreUnit) STOREImm(rn uint8, imm uint8) (Access, error) {
	addr := uint32(lsu.regFile.ReadReg(rn))
	if err := lsu.data.Write8(addr, imm); err != nil {
		return Access{}, err
	}
	if err := lsu.data.Touch(addr); err != nil {
		return Access{}, err
	}
	return Access{Kind: AccessStore, Addr: addr, Size: 1}, nil
}

// PUSH decrements SP by 2, then writes Rm at the new SP. SP is left
// unchanged if the slot falls outside the stack region.
func (lsu *LoadStoreUnit) PUSH(rm uint8) (Access, error) {
	sp := lsu.regFile.SP - 2
	addr := uint32(sp)
	if lsu.regFile.SP < 2 {
		// Keep a wrapped SP from landing back inside the window.
		addr = uint32(lsu.regFile.SP) - 2
	}
	if err := lsu.stack.Write16(addr, lsu.regFile.ReadReg(rm)); err != nil {
		return Access{}, err
	}
	if err := lsu.stack.Touch(addr); err != nil {
		return Access{}, err
	}
	lsu.regFile.SP = sp
	return Access{Kind: AccessPush, Addr: addr, Size: 2}, nil
}

// POP reads Rd from SP, then increments SP by 2. Popping an empty stack
// reads past the top of the stack region and fails.
func (lsu *LoadStoreUnit) POP(rd uint8) (Access, error) {
	addr := uint32(lsu.regFile.SP)
	value, err := lsu.stack.Read16(addr)
	if err != nil {
		return Access{}, err
	}
	lsu.regFile.WriteReg(rd, value)
	lsu.regFile.SP += 2
	return Access{Kind: AccessPop, Addr: addr, Size: 2}, nil
}
