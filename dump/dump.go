// Package dump renders S16 processor state for inspection.
//
// The text form lists, in order: the registers, PC and SP, the flags, the
// data-memory cells a program wrote and the live stack slots it pushed.
package dump

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/s16sim/emu"
)

// Cell is one 16-bit little-endian value shown at an address.
type Cell struct {
	Addr  uint16 `json:"addr"`
	Value uint16 `json:"value"`
}

// DataCells returns every touched data address in ascending order with
// the 16-bit value starting there. A high byte past the end of the region
// reads as zero.
func DataCells(s emu.Snapshot) []Cell {
	var cells []Cell
	for i, touched := range s.DataTouched {
		if !touched {
			continue
		}
		cells = append(cells, Cell{Addr: uint16(i), Value: word(s.Data[:], i)})
	}
	return cells
}

// StackCells returns the touched stack slots between SP and the stack
// base, starting at SP.
func StackCells(s emu.Snapshot) []Cell {
	var cells []Cell
	for addr := uint32(s.SP); addr < uint32(s.StackBase); addr += 2 {
		if addr < s.StackLow {
			continue
		}
		i := int(addr - s.StackLow)
		if i >= len(s.StackTouched) || !s.StackTouched[i] {
			continue
		}
		cells = append(cells, Cell{Addr: uint16(addr), Value: word(s.Stack[:], i)})
	}
	return cells
}

func word(region []byte, i int) uint16 {
	value := uint16(region[i])
	if i+1 < len(region) {
		value |= uint16(region[i+1]) << 8
	}
	return value
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Write renders the snapshot as text.
func Write(w io.Writer, s emu.Snapshot) error {
	p := &printer{w: w}

	p.printf("REGISTERS:\n")
	for i, value := range s.Registers {
		p.printf("R%d: 0x%04X\n", i, value)
	}
	p.printf("PC: 0x%04X SP: 0x%04X\n", s.PC, s.SP)
	p.printf("FLAGS:\n")
	p.printf("Carry: %d\nOverflow: %d\nZero: %d\nSign: %d\n",
		bit(s.Flags.Carry), bit(s.Flags.Overflow), bit(s.Flags.Zero), bit(s.Flags.Sign))
	p.printf("DATA MEMORY:\n")
	for _, cell := range DataCells(s) {
		p.printf("0x%04X: 0x%04X\n", cell.Addr, cell.Value)
	}
	p.printf("STACK:\n")
	for _, cell := range StackCells(s) {
		p.printf("0x%04X: 0x%04X\n", cell.Addr, cell.Value)
	}

	return p.err
}

// printer remembers the first write error so Write can report it once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// State is the JSON form of a snapshot.
type State struct {
	Registers []uint16 `json:"registers"`
	PC        uint16   `json:"pc"`
	SP        uint16   `json:"sp"`
	IR        uint16   `json:"ir"`
	Flags     Flags    `json:"flags"`
	Data      []Cell   `json:"data"`
	Stack     []Cell   `json:"stack"`
}

// Flags is the JSON form of the status flags.
type Flags struct {
	Carry    bool `json:"carry"`
	Overflow bool `json:"overflow"`
	Zero     bool `json:"zero"`
	Sign     bool `json:"sign"`
}

// NewState projects a snapshot into its JSON form.
func NewState(s emu.Snapshot) State {
	return State{
		Registers: s.Registers[:],
		PC:        s.PC,
		SP:        s.SP,
		IR:        s.IR,
		Flags:     Flags(s.Flags),
		Data:      nonNil(DataCells(s)),
		Stack:     nonNil(StackCells(s)),
	}
}

func nonNil(cells []Cell) []Cell {
	if cells == nil {
		return []Cell{}
	}
	return cells
}

// WriteJSON renders the snapshot as one JSON document.
func WriteJSON(w io.Writer, s emu.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewState(s)); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return nil
}

// Hook returns an emu.DumpHook that writes text dumps to w. Write errors
// are passed to onErr, which may be nil.
func Hook(w io.Writer, onErr func(error)) emu.DumpHook {
	return func(s emu.Snapshot) {
		if err := Write(w, s); err != nil && onErr != nil {
			onErr(err)
		}
	}
}

// JSONHook returns an emu.DumpHook that writes JSON dumps to w.
func JSONHook(w io.Writer, onErr func(error)) emu.DumpHook {
	return func(s emu.Snapshot) {
		if err := WriteJSON(w, s); err != nil && onErr != nil {
			onErr(err)
		}
	}
}
