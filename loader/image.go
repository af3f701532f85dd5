// Package loader reads S16 program images.
//
// A program image is text with one instruction per line:
//
//	0000: 0x1805
//	0002: 0xFFFF
//
// Both fields are exactly four hexadecimal digits. Lines that do not match
// are ignored, addresses may appear in any order, and a later line for the
// same address overwrites an earlier one.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/sarchlab/s16sim/emu"
	"github.com/sarchlab/s16sim/insts"
)

var linePattern = regexp.MustCompile(`^([0-9A-Fa-f]{4}): 0x([0-9A-Fa-f]{4})`)

// Entry is one instruction word at an address.
type Entry struct {
	Addr uint16
	Word uint16
}

// Program represents a parsed program image ready for loading into the
// emulator.
type Program struct {
	// Entries holds the words in image order, duplicates included.
	Entries []Entry
	// HighestAddress is the largest address in the image (0 if empty).
	HighestAddress uint16
}

// Load parses the program image at path.
func Load(path string) (*Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() { _ = file.Close() }()

	return Parse(file)
}

// Parse reads a program image.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		match := linePattern.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}

		// The pattern guarantees four hex digits, so these cannot fail.
		addr, _ := strconv.ParseUint(match[1], 16, 16)
		word, _ := strconv.ParseUint(match[2], 16, 16)

		if addr+insts.WordSize > emu.MemorySize {
			return nil, &AddressError{LineNo: lineNo, Addr: uint16(addr)}
		}

		prog.Entries = append(prog.Entries, Entry{Addr: uint16(addr), Word: uint16(word)})
		if uint16(addr) > prog.HighestAddress {
			prog.HighestAddress = uint16(addr)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}

	return prog, nil
}

// LoadInto writes the program into the emulator's instruction memory and
// sets its end-of-program address.
func (p *Program) LoadInto(e *emu.Emulator) error {
	for _, entry := range p.Entries {
		if err := e.LoadWord(entry.Addr, entry.Word); err != nil {
			return err
		}
	}
	e.SetHighestAddress(p.HighestAddress)
	return nil
}

// Words returns the final word at each address, after duplicates are
// resolved.
func (p *Program) Words() map[uint16]uint16 {
	words := make(map[uint16]uint16, len(p.Entries))
	for _, entry := range p.Entries {
		words[entry.Addr] = entry.Word
	}
	return words
}
