package cache

import (
	"github.com/sarchlab/s16sim/emu"
)

// MemoryBacking wraps an emu.Memory region as a BackingStore. Line fills
// that run past the end of the region read as zero and write-backs there are
// dropped, since the last line of a 255-byte region is always partial.
// Write-backs never mark cells as touched.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		b, err := m.memory.Read8(uint32(addr) + uint32(i))
		if err != nil {
			continue
		}
		data[i] = b
	}
	return data
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		_ = m.memory.Write8(uint32(addr)+uint32(i), b)
	}
}
