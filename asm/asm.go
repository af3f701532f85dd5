// Package asm implements a two-pass assembler for the S16 instruction set.
//
// Source is line oriented:
//
//	; comment
//	.equ COUNT 3
//	start:  mov r0, #COUNT
//	loop:   sub r0, r0, r1
//	        cmp r0, r2
//	        jgt loop
//	        store [r3], #$(COUNT * 2)
//	        halt
//
// Operands are registers r0-r7, immediates #expr and memory operands [rN].
// An expr is a number, a label or equate, or a $(...) Starlark expression
// over labels, equates and HERE (the address of the current line).
// Branch operands are absolute target addresses.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/sarchlab/s16sim/insts"
)

// MemorySize is the size in bytes of instruction memory.
const MemorySize = 255

// Entry is one assembled word.
type Entry struct {
	Addr   uint16
	Word   uint16
	LineNo int
}

// Program is the output of the assembler, sorted by address.
type Program struct {
	Entries []Entry
	Symbols map[string]int64
}

// WriteImage writes the program in the image format read by the loader.
func (p *Program) WriteImage(w io.Writer) error {
	for _, e := range p.Entries {
		if _, err := fmt.Fprintf(w, "%04X: 0x%04X\n", e.Addr, e.Word); err != nil {
			return err
		}
	}
	return nil
}

// Words returns the program as addr → word.
func (p *Program) Words() map[uint16]uint16 {
	words := make(map[uint16]uint16, len(p.Entries))
	for _, e := range p.Entries {
		words[e.Addr] = e.Word
	}
	return words
}

// Assembler converts S16 assembly into a Program.
type Assembler struct {
	Verbose bool // If set, logs each source line.

	predefine symbols
}

// Predefine defines an equate visible to every Parse.
func (asm *Assembler) Predefine(name string, value int64) error {
	if asm.predefine == nil {
		asm.predefine = symbols{}
	}
	return asm.predefine.define(name, value)
}

// statement is one line that occupies a word of the image.
type statement struct {
	lineNo   int
	line     string
	addr     int64
	mnemonic string
	operands []string
}

// Parse assembles the input stream.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	var (
		line   string
		lineNo int
	)

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineNo, Line: line, Err: err}
		}
	}()

	syms := symbols{}
	maps.Copy(syms, asm.predefine)

	var (
		stmts []statement
		here  int64
	)

	// Pass 1: addresses, labels, equates.
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		text := scanner.Text()
		lineNo++

		if asm.Verbose {
			log.Printf("%v: %v\n", lineNo, text)
		}

		line = strings.TrimSpace(strings.SplitN(text, ";", 2)[0])
		rest := line

		for {
			label, after, ok := cutLabel(rest)
			if !ok {
				break
			}
			if err = syms.define(label, here); err != nil {
				return nil, err
			}
			rest = after
		}

		if rest == "" {
			continue
		}

		mnemonic, operandText := cutMnemonic(rest)
		operands := splitOperands(operandText)

		switch mnemonic {
		case ".equ":
			if err = asm.equate(syms, operandText, here); err != nil {
				return nil, err
			}
			continue
		case ".org":
			if len(operands) != 1 {
				return nil, ErrOrgSyntax
			}
			if here, err = syms.eval(operands[0], here); err != nil {
				return nil, err
			}
			continue
		case ".word":
			if len(operands) != 1 {
				return nil, ErrWordSyntax
			}
		default:
			if strings.HasPrefix(mnemonic, ".") {
				return nil, ErrDirectiveUnknown
			}
		}

		if here < 0 || here+insts.WordSize > MemorySize {
			return nil, fmt.Errorf("%w: 0x%X", ErrAddressRange, here)
		}

		stmts = append(stmts, statement{
			lineNo:   lineNo,
			line:     line,
			addr:     here,
			mnemonic: mnemonic,
			operands: operands,
		})
		here += insts.WordSize
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}

	// Pass 2: encode with every symbol known.
	used := map[int64]bool{}
	prog = &Program{Symbols: syms}
	for _, st := range stmts {
		lineNo, line = st.lineNo, st.line

		if used[st.addr] || used[st.addr-1] || used[st.addr+1] {
			return nil, fmt.Errorf("%w: 0x%04X", ErrAddressOverlap, st.addr)
		}
		used[st.addr] = true

		var word uint16
		if word, err = encode(syms, st); err != nil {
			return nil, err
		}

		prog.Entries = append(prog.Entries, Entry{
			Addr:   uint16(st.addr),
			Word:   word,
			LineNo: st.lineNo,
		})
	}

	slices.SortFunc(prog.Entries, func(a, b Entry) int {
		return int(a.Addr) - int(b.Addr)
	})

	return prog, nil
}

// equate handles ".equ NAME expr". The expression may contain spaces.
func (asm *Assembler) equate(syms symbols, text string, here int64) error {
	name, expr := cutWord(strings.TrimSpace(text))
	if name == "" || strings.TrimSpace(expr) == "" {
		return ErrEquateSyntax
	}

	value, err := syms.eval(expr, here)
	if err != nil {
		return err
	}

	return syms.define(name, value)
}

// cutWord splits the first whitespace-delimited word from the line.
func cutWord(line string) (word, rest string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// cutMnemonic is cutWord with the word folded to lower case.
func cutMnemonic(line string) (mnemonic, rest string) {
	word, rest := cutWord(line)
	return strings.ToLower(word), rest
}

// cutLabel splits a leading "name:" from the line.
func cutLabel(line string) (label, rest string, ok bool) {
	before, after, found := strings.Cut(line, ":")
	if !found || !symbolRe.MatchString(before) {
		return "", line, false
	}
	return before, strings.TrimSpace(after), true
}
