package emu

// MemorySize is the size in bytes of each memory region.
const MemorySize = 255

// Memory is a fixed-size, bounds-checked byte region. Alongside the bytes
// it records which addresses were marked by Touch, so that a state dump can
// show only the cells a program wrote.
type Memory struct {
	region  string
	base    uint32
	data    [MemorySize]byte
	touched [MemorySize]bool
}

// NewMemory creates a region whose index 0 corresponds to address base.
// The region name appears in bounds errors.
func NewMemory(region string, base uint32) *Memory {
	return &Memory{region: region, base: base}
}

// Base returns the architectural address of index 0.
func (m *Memory) Base() uint32 {
	return m.base
}

func (m *Memory) index(addr uint32) (int, error) {
	idx := int64(addr) - int64(m.base)
	if idx < 0 || idx >= MemorySize {
		return 0, &BoundsError{Region: m.region, Addr: addr, Index: idx}
	}
	return int(idx), nil
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint32) (byte, error) {
	i, err := m.index(addr)
	if err != nil {
		return 0, err
	}
	return m.data[i], nil
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint32, value byte) error {
	i, err := m.index(addr)
	if err != nil {
		return err
	}
	m.data[i] = value
	return nil
}

// Read16 reads a little-endian 16-bit value. Both bytes are checked before
// anything is read.
func (m *Memory) Read16(addr uint32) (uint16, error) {
	lo, err := m.index(addr)
	if err != nil {
		return 0, err
	}
	hi, err := m.index(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(m.data[lo]) | uint16(m.data[hi])<<8, nil
}

// Write16 writes a little-endian 16-bit value. Nothing is written unless
// both bytes are in range.
func (m *Memory) Write16(addr uint32, value uint16) error {
	lo, err := m.index(addr)
	if err != nil {
		return err
	}
	hi, err := m.index(addr + 1)
	if err != nil {
		return err
	}
	m.data[lo] = byte(value)
	m.data[hi] = byte(value >> 8)
	return nil
}

// Touch marks addr as written.
func (m *Memory) Touch(addr uint32) error {
	i, err := m.index(addr)
	if err != nil {
		return err
	}
	m.touched[i] = true
	return nil
}

// Touched reports whether addr was marked. Out-of-range addresses are never
// touched.
func (m *Memory) Touched(addr uint32) bool {
	i, err := m.index(addr)
	if err != nil {
		return false
	}
	return m.touched[i]
}

// Bytes returns a copy of the region.
func (m *Memory) Bytes() [MemorySize]byte {
	return m.data
}

// TouchedMap returns a copy of the touched bitmap.
func (m *Memory) TouchedMap() [MemorySize]bool {
	return m.touched
}

// Reset zeroes the region and clears the touched bitmap.
func (m *Memory) Reset() {
	m.data = [MemorySize]byte{}
	m.touched = [MemorySize]bool{}
}
