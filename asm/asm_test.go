package asm_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/s16sim/asm"
	"github.com/sarchlab/s16sim/emu"
	"github.com/sarchlab/s16sim/insts"
	"github.com/sarchlab/s16sim/loader"
)

func assemble(lines ...string) (*asm.Program, error) {
	a := &asm.Assembler{}
	return a.Parse(strings.NewReader(strings.Join(lines, "\n")))
}

func mustAssemble(lines ...string) map[uint16]uint16 {
	prog, err := assemble(lines...)
	Expect(err).NotTo(HaveOccurred())
	return prog.Words()
}

var _ = Describe("Assembler", func() {
	It("should match the instruction memory size", func() {
		Expect(asm.MemorySize).To(Equal(emu.MemorySize))
	})

	It("should assemble nothing from an empty source", func() {
		prog, err := assemble("", "; only a comment", "   ")
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Entries).To(BeEmpty())
	})

	DescribeTable("single instructions",
		func(source string, expected uint16) {
			Expect(mustAssemble(source)).To(Equal(map[uint16]uint16{0: expected}))
		},
		Entry("mov immediate", "mov r3, #0xA5", insts.EncodeMOVImm(3, 0xA5)),
		Entry("mov negative immediate", "mov r3, #-1", insts.EncodeMOVImm(3, 0xFF)),
		Entry("mov register", "MOV R2, R5", insts.EncodeMOVReg(2, 5)),
		Entry("store immediate", "store [r1], #0xB3", insts.EncodeSTOREImm(1, 0xB3)),
		Entry("store register", "store [r2], r3", insts.EncodeSTOREReg(2, 3)),
		Entry("load", "load r4, [r6]", insts.EncodeLOAD(4, 6)),
		Entry("add", "add r1, r2, r3", insts.EncodeALU(insts.OpADD, 1, 2, 3)),
		Entry("sub", "sub r0, r0, r1", insts.EncodeALU(insts.OpSUB, 0, 0, 1)),
		Entry("mul", "mul r7, r6, r5", insts.EncodeALU(insts.OpMUL, 7, 6, 5)),
		Entry("and", "and r1, r1, r1", insts.EncodeALU(insts.OpAND, 1, 1, 1)),
		Entry("or", "or r1, r2, r3", insts.EncodeALU(insts.OpOR, 1, 2, 3)),
		Entry("xor", "xor r1, r2, r3", insts.EncodeALU(insts.OpXOR, 1, 2, 3)),
		Entry("not", "not r1, r2", insts.EncodeUnary(insts.OpNOT, 1, 2)),
		Entry("ror", "ror r1, r2", insts.EncodeUnary(insts.OpROR, 1, 2)),
		Entry("rol", "rol r1, r2", insts.EncodeUnary(insts.OpROL, 1, 2)),
		Entry("shr", "shr r1, r2, #15", insts.EncodeShift(insts.OpSHR, 1, 2, 15)),
		Entry("shl", "shl r1, r2, #0b11", insts.EncodeShift(insts.OpSHL, 1, 2, 3)),
		Entry("cmp", "cmp r5, r6", insts.EncodeCMP(5, 6)),
		Entry("push", "push r3", insts.EncodePUSH(3)),
		Entry("pop", "pop r4", insts.EncodePOP(4)),
		Entry("nop", "nop", insts.EncodeNOP()),
		Entry("halt", "halt", insts.EncodeHALT()),
		Entry("word", ".word 0x1234", uint16(0x1234)),
		Entry("negative word", ".word -2", uint16(0xFFFE)),
	)

	Describe("Labels and branches", func() {
		It("should resolve backward branches", func() {
			words := mustAssemble(
				"        mov r0, #3",
				"        mov r1, #1",
				"loop:   sub r0, r0, r1",
				"        cmp r0, r2",
				"        jgt loop",
				"        halt",
			)

			Expect(words[0x08]).To(Equal(uint16(0x0FEB)))
			Expect(insts.NewDecoder().Decode(words[0x08]).BranchOffset).To(Equal(int16(-6)))
		})

		It("should resolve forward branches", func() {
			words := mustAssemble(
				"jmp end",
				"nop",
				"end: halt",
			)

			Expect(words[0]).To(Equal(uint16(0x0808)))
		})

		It("should accept several labels on one line", func() {
			prog, err := assemble("a: b: halt")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Symbols).To(HaveKeyWithValue("a", int64(0)))
			Expect(prog.Symbols).To(HaveKeyWithValue("b", int64(0)))
		})

		It("should reject a branch offset out of the 9-bit range", func() {
			_, err := assemble("jmp $(HERE + 300)")
			Expect(err).To(MatchError(insts.ErrBranchRange))
		})

		It("should reject undefined labels", func() {
			_, err := assemble("jmp nowhere")

			var undefined asm.ErrSymbolUndefined
			Expect(errors.As(err, &undefined)).To(BeTrue())
			Expect(string(undefined)).To(Equal("nowhere"))
		})

		It("should reject duplicate labels", func() {
			_, err := assemble("x: nop", "x: halt")
			Expect(err).To(MatchError(asm.ErrSymbolDuplicate))
		})

		It("should reject a register name as a label", func() {
			_, err := assemble("r1: halt")
			Expect(err).To(MatchError(asm.ErrLabelInvalid))
		})
	})

	Describe("Directives", func() {
		It("should substitute equates", func() {
			words := mustAssemble(
				".equ COUNT 0x10",
				"mov r0, #COUNT",
			)
			Expect(words[0]).To(Equal(insts.EncodeMOVImm(0, 0x10)))
		})

		It("should place code with .org", func() {
			words := mustAssemble(
				".org 0x20",
				"halt",
			)
			Expect(words).To(Equal(map[uint16]uint16{0x20: 0xFFFF}))
		})

		It("should evaluate Starlark expressions", func() {
			words := mustAssemble(
				".equ BASE 0x10",
				".equ SIZE $(BASE * 2 + 1)",
				"mov r0, #$(SIZE - 1)",
				"mov r1, #$(max(3, BASE))",
				"data: .word $(data + 2)",
			)

			Expect(words[0]).To(Equal(insts.EncodeMOVImm(0, 0x20)))
			Expect(words[2]).To(Equal(insts.EncodeMOVImm(1, 0x10)))
			Expect(words[4]).To(Equal(uint16(6)))
		})

		It("should expose HERE to expressions", func() {
			words := mustAssemble(
				"nop",
				".word $(HERE)",
			)
			Expect(words[2]).To(Equal(uint16(2)))
		})

		It("should use predefined equates", func() {
			a := &asm.Assembler{}
			Expect(a.Predefine("LIMIT", 7)).To(Succeed())

			prog, err := a.Parse(strings.NewReader("mov r0, #LIMIT"))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Words()[0]).To(Equal(insts.EncodeMOVImm(0, 7)))
		})

		It("should reject malformed directives", func() {
			_, err := assemble(".equ ONLYNAME")
			Expect(err).To(MatchError(asm.ErrEquateSyntax))

			_, err = assemble(".org")
			Expect(err).To(MatchError(asm.ErrOrgSyntax))

			_, err = assemble(".bss 4")
			Expect(err).To(MatchError(asm.ErrDirectiveUnknown))
		})

		It("should reject broken expressions", func() {
			_, err := assemble("mov r0, #$(1 +)")

			var bad asm.ErrParseExpression
			Expect(errors.As(err, &bad)).To(BeTrue())
		})
	})

	Describe("Operand checks", func() {
		DescribeTable("errors",
			func(source string, expected error) {
				_, err := assemble(source)
				Expect(err).To(MatchError(expected))
			},
			Entry("unknown opcode", "frob r0", asm.ErrOpcodeInvalid),
			Entry("operand count", "add r0, r1", asm.ErrOperandCount),
			Entry("register", "add r0, r1, r8", asm.ErrRegisterInvalid),
			Entry("missing #", "shr r0, r1, 3", asm.ErrImmediateMissing),
			Entry("memory operand", "load r0, r1", asm.ErrMemoryOperand),
			Entry("immediate range", "mov r0, #256", asm.ErrImmediateRange),
			Entry("shift range", "shl r0, r1, #32", asm.ErrImmediateRange),
			Entry("word range", ".word 0x10000", asm.ErrImmediateRange),
		)

		It("should report the failing line", func() {
			_, err := assemble("nop", "  add r0  ; broken")

			var syntax *asm.ErrSyntax
			Expect(errors.As(err, &syntax)).To(BeTrue())
			Expect(syntax.LineNo).To(Equal(2))
			Expect(syntax.Line).To(Equal("add r0"))
		})
	})

	Describe("Layout", func() {
		It("should reject code past the end of instruction memory", func() {
			_, err := assemble(".org 0xFE", "halt")
			Expect(err).To(MatchError(asm.ErrAddressRange))
		})

		It("should reject overlapping words", func() {
			_, err := assemble("nop", ".org 1", "halt")
			Expect(err).To(MatchError(asm.ErrAddressOverlap))
		})

		It("should sort entries by address", func() {
			prog, err := assemble(".org 0x10", "halt", ".org 0", "nop")
			Expect(err).NotTo(HaveOccurred())

			Expect(prog.Entries[0].Addr).To(Equal(uint16(0)))
			Expect(prog.Entries[1].Addr).To(Equal(uint16(0x10)))
			Expect(prog.Entries[1].LineNo).To(Equal(2))
		})
	})

	Describe("Image output", func() {
		It("should write the loader format", func() {
			prog, err := assemble("mov r0, #1", "halt")
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(prog.WriteImage(&buf)).To(Succeed())

			Expect(buf.String()).To(Equal("0000: 0x1801\n0002: 0xFFFF\n"))
		})

		It("should run on the emulator after loading", func() {
			prog, err := assemble(
				".equ ADDR 0x10",
				"      mov r0, #ADDR",
				"      mov r1, #0x42",
				"      store [r0], r1",
				"      load r2, [r0]",
				"      push r2",
				"      pop r3",
				"      halt",
			)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(prog.WriteImage(&buf)).To(Succeed())
			image, err := loader.Parse(&buf)
			Expect(err).NotTo(HaveOccurred())

			e := emu.NewEmulator()
			Expect(image.LoadInto(e)).To(Succeed())
			reason, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(reason).To(Equal(emu.HaltInstruction))
			Expect(e.RegFile().R[3]).To(Equal(uint16(0x42)))
		})
	})
})
