package dump_test

import (
	"bytes"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/s16sim/dump"
	"github.com/sarchlab/s16sim/emu"
	"github.com/sarchlab/s16sim/insts"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

var _ = Describe("Dump", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator()
	})

	run := func(words ...uint16) emu.Snapshot {
		Expect(e.LoadProgram(0, words...)).To(Succeed())
		_, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		return e.Snapshot()
	}

	It("should render the initial state", func() {
		var buf bytes.Buffer

		Expect(dump.Write(&buf, run(insts.EncodeHALT()))).To(Succeed())

		Expect(buf.String()).To(Equal(`REGISTERS:
R0: 0x0000
R1: 0x0000
R2: 0x0000
R3: 0x0000
R4: 0x0000
R5: 0x0000
R6: 0x0000
R7: 0x0000
PC: 0x0002 SP: 0x8200
FLAGS:
Carry: 0
Overflow: 0
Zero: 0
Sign: 0
DATA MEMORY:
STACK:
`))
	})

	It("should list touched data cells in ascending order", func() {
		e.RegFile().WriteReg(1, 0x40)
		e.RegFile().WriteReg(2, 0x10)
		e.RegFile().WriteReg(3, 0xBEEF)
		snap := run(
			insts.EncodeSTOREReg(1, 3),
			insts.EncodeSTOREImm(2, 0x7A),
			insts.EncodeHALT(),
		)

		Expect(dump.DataCells(snap)).To(Equal([]dump.Cell{
			{Addr: 0x10, Value: 0x007A},
			{Addr: 0x40, Value: 0xBEEF},
		}))
	})

	It("should read a zero high byte for the last data cell", func() {
		e.RegFile().WriteReg(1, emu.MemorySize-1)
		snap := run(insts.EncodeSTOREImm(1, 0xFF), insts.EncodeHALT())

		Expect(dump.DataCells(snap)).To(Equal([]dump.Cell{{Addr: emu.MemorySize - 1, Value: 0x00FF}}))
	})

	It("should list live stack slots from SP toward the base", func() {
		e.RegFile().WriteReg(1, 0x1111)
		e.RegFile().WriteReg(2, 0x2222)
		e.RegFile().WriteReg(3, 0x3333)
		snap := run(
			insts.EncodePUSH(1),
			insts.EncodePUSH(2),
			insts.EncodePUSH(3),
			insts.EncodePOP(4),
			insts.EncodeHALT(),
		)

		Expect(dump.StackCells(snap)).To(Equal([]dump.Cell{
			{Addr: 0x81FC, Value: 0x2222},
			{Addr: 0x81FE, Value: 0x1111},
		}))
	})

	It("should render flags as 0 and 1", func() {
		var buf bytes.Buffer
		e.RegFile().WriteReg(1, 0xFFFF)
		e.RegFile().WriteReg(2, 0x0001)
		e.RegFile().WriteReg(7, 0x8000)
		snap := run(
			insts.EncodePUSH(7),
			insts.EncodeALU(insts.OpADD, 0, 1, 2),
			insts.EncodeHALT(),
		)

		Expect(dump.Write(&buf, snap)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("R7: 0x8000\n"))
		Expect(buf.String()).To(ContainSubstring("PC: 0x0006 SP: 0x81FE\n"))
		Expect(buf.String()).To(ContainSubstring("Carry: 1\nOverflow: 0\nZero: 1\nSign: 0\n"))
		Expect(buf.String()).To(HaveSuffix("STACK:\n0x81FE: 0x8000\n"))
	})

	It("should encode the same projection as JSON", func() {
		var buf bytes.Buffer
		e.RegFile().WriteReg(1, 2)
		snap := run(insts.EncodeSTOREImm(1, 9), insts.EncodeHALT())

		Expect(dump.WriteJSON(&buf, snap)).To(Succeed())

		var state dump.State
		Expect(json.Unmarshal(buf.Bytes(), &state)).To(Succeed())
		Expect(state.Registers).To(HaveLen(insts.NumRegs))
		Expect(state.PC).To(Equal(uint16(4)))
		Expect(state.SP).To(Equal(emu.StackBase))
		Expect(state.Data).To(Equal([]dump.Cell{{Addr: 2, Value: 9}}))
		Expect(state.Stack).To(BeEmpty())
	})

	It("should report write errors through the hook", func() {
		var got error
		hook := dump.Hook(failingWriter{}, func(err error) { got = err })

		hook(e.Snapshot())

		Expect(got).To(MatchError("disk full"))
	})

	It("should drive dumps from the emulator", func() {
		var buf bytes.Buffer
		e = emu.NewEmulator(emu.WithDumpHook(dump.Hook(&buf, nil)))

		run(insts.EncodeNOP(), insts.EncodeHALT())

		Expect(bytes.Count(buf.Bytes(), []byte("REGISTERS:\n"))).To(Equal(2))
	})
})
