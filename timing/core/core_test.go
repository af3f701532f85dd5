package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/s16sim/emu"
	"github.com/sarchlab/s16sim/insts"
	"github.com/sarchlab/s16sim/timing/core"
	"github.com/sarchlab/s16sim/timing/latency"
)

func mustBranch(cond insts.Cond, offset int) uint16 {
	word, err := insts.EncodeBranch(cond, offset)
	Expect(err).NotTo(HaveOccurred())
	return word
}

var _ = Describe("Core", func() {
	var (
		emulator *emu.Emulator
		dumps    int
	)

	BeforeEach(func() {
		dumps = 0
		emulator = emu.NewEmulator(emu.WithDumpHook(func(emu.Snapshot) {
			dumps++
		}))
	})

	Context("with a countdown loop", func() {
		var c *core.Core

		BeforeEach(func() {
			Expect(emulator.LoadProgram(0,
				insts.EncodeMOVImm(0, 3),
				insts.EncodeMOVImm(1, 1),
				insts.EncodeALU(insts.OpSUB, 0, 0, 1), // loop
				insts.EncodeCMP(0, 2),
				mustBranch(insts.CondGT, -6),
				insts.EncodeHALT(),
			)).To(Succeed())
			c = core.NewCore(emulator, nil)
		})

		It("should not be halted initially", func() {
			Expect(c.Halted()).To(BeFalse())
			Expect(c.Stats()).To(Equal(core.Stats{}))
		})

		It("should produce the same architectural state as the emulator", func() {
			reason, err := c.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(reason).To(Equal(emu.HaltInstruction))
			Expect(emulator.RegFile().R[0]).To(Equal(uint16(0)))
			Expect(dumps).To(Equal(1))
		})

		It("should charge the mispredicted loop exit", func() {
			_, _ = c.Run()
			stats := c.Stats()

			Expect(stats.Instructions).To(Equal(uint64(12)))
			Expect(stats.Cycles).To(Equal(uint64(14)))
			Expect(stats.Flushes).To(Equal(uint64(1)))
			Expect(stats.Branch.Predictions).To(Equal(uint64(3)))
			Expect(stats.Branch.Correct).To(Equal(uint64(2)))
			Expect(stats.CPI()).To(BeNumerically("~", 14.0/12.0))
		})

		It("should stop early with RunCycles", func() {
			Expect(c.RunCycles(3)).To(BeTrue())
			Expect(c.Stats().Cycles).To(Equal(uint64(3)))

			Expect(c.RunCycles(100)).To(BeFalse())
		})

		It("should clear statistics on Reset", func() {
			_, _ = c.Run()
			c.Reset()

			Expect(c.Stats()).To(Equal(core.Stats{}))
		})
	})

	Context("with data memory accesses", func() {
		BeforeEach(func() {
			Expect(emulator.LoadProgram(0,
				insts.EncodeMOVImm(0, 0x10),
				insts.EncodeMOVImm(1, 0x42),
				insts.EncodeSTOREReg(0, 1),
				insts.EncodeLOAD(2, 0),
				insts.EncodeHALT(),
			)).To(Succeed())
		})

		It("should charge a store miss and a load hit", func() {
			c := core.NewCore(emulator, nil)
			_, err := c.Run()
			Expect(err).NotTo(HaveOccurred())

			stats := c.Stats()
			Expect(stats.Cycles).To(Equal(uint64(14)))
			Expect(stats.Stalls).To(Equal(uint64(9)))
			Expect(stats.DCache.Misses).To(Equal(uint64(1)))
			Expect(stats.DCache.Hits).To(Equal(uint64(1)))
			Expect(emulator.RegFile().R[2]).To(Equal(uint16(0x42)))
			Expect(emulator.DataMemory().Touched(0x10)).To(BeTrue())
		})

		It("should use flat latencies without a data cache", func() {
			config := latency.DefaultTimingConfig()
			config.DCache = latency.CacheConfig{}
			c := core.NewCore(emulator, config)
			_, _ = c.Run()

			stats := c.Stats()
			Expect(stats.Cycles).To(Equal(uint64(6)))
			Expect(stats.DCache).To(BeZero())
		})
	})

	It("should report faults from the emulator", func() {
		Expect(emulator.LoadProgram(0, insts.EncodePOP(0))).To(Succeed())
		c := core.NewCore(emulator, nil)

		reason, err := c.Run()

		Expect(reason).To(Equal(emu.HaltFault))
		Expect(err).To(MatchError(emu.ErrBoundsViolation))
		Expect(c.Stats().Instructions).To(Equal(uint64(1)))
	})
})

var _ = Describe("BranchPredictor", func() {
	var bp *core.BranchPredictor

	BeforeEach(func() {
		bp = core.NewBranchPredictor(16)
	})

	It("should initially predict taken", func() {
		Expect(bp.Predict(0x10)).To(BeTrue())
	})

	It("should learn a not-taken pattern", func() {
		bp.Update(0x10, false)
		bp.Update(0x10, false)

		Expect(bp.Predict(0x10)).To(BeFalse())
		Expect(bp.Stats().Mispredictions).To(Equal(uint64(1)))
	})

	It("should saturate", func() {
		for i := 0; i < 10; i++ {
			bp.Update(0x10, true)
		}
		Expect(bp.Update(0x10, false)).To(BeFalse())
		Expect(bp.Predict(0x10)).To(BeTrue())
	})

	It("should keep neighbouring words separate", func() {
		bp.Update(0x10, false)
		bp.Update(0x10, false)

		Expect(bp.Predict(0x12)).To(BeTrue())
	})

	It("should alias words a table apart", func() {
		bp.Update(0x10, false)
		bp.Update(0x10, false)

		Expect(bp.Predict(0x10 + 32)).To(BeFalse())
	})

	It("should report accuracy", func() {
		bp.Update(0x10, true)
		bp.Update(0x10, false)

		Expect(bp.Stats().Accuracy()).To(BeNumerically("~", 50.0))
		Expect(bp.Stats().MispredictionRate()).To(BeNumerically("~", 50.0))
	})

	It("should reset counters", func() {
		bp.Update(0x10, false)
		bp.Update(0x10, false)
		bp.Reset()

		Expect(bp.Predict(0x10)).To(BeTrue())
		Expect(bp.Stats()).To(Equal(core.BranchPredictorStats{}))
	})
})
