package asm

import (
	"fmt"
	"strings"

	"github.com/sarchlab/s16sim/insts"
)

var aluOps = map[string]insts.Op{
	"add": insts.OpADD,
	"sub": insts.OpSUB,
	"mul": insts.OpMUL,
	"and": insts.OpAND,
	"or":  insts.OpOR,
	"xor": insts.OpXOR,
}

var unaryOps = map[string]insts.Op{
	"not": insts.OpNOT,
	"ror": insts.OpROR,
	"rol": insts.OpROL,
}

var shiftOps = map[string]insts.Op{
	"shr": insts.OpSHR,
	"shl": insts.OpSHL,
}

var branchConds = map[string]insts.Cond{
	"jmp": insts.CondAlways,
	"jeq": insts.CondEQ,
	"jlt": insts.CondLT,
	"jgt": insts.CondGT,
}

func isRegister(word string) bool {
	_, err := register(word)
	return err == nil
}

// register parses r0..r7.
func register(word string) (uint8, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) != 2 || word[0] != 'r' || word[1] < '0' || word[1] > '7' {
		return 0, fmt.Errorf("%w: '%v'", ErrRegisterInvalid, word)
	}
	return word[1] - '0', nil
}

// memory parses [rN].
func memory(word string) (uint8, error) {
	word = strings.TrimSpace(word)
	if !strings.HasPrefix(word, "[") || !strings.HasSuffix(word, "]") {
		return 0, ErrMemoryOperand
	}
	return register(word[1 : len(word)-1])
}

// immediate parses #expr and checks it fits in [lo, hi].
func (s symbols) immediate(word string, here, lo, hi int64) (int64, error) {
	word = strings.TrimSpace(word)
	if !strings.HasPrefix(word, "#") {
		return 0, ErrImmediateMissing
	}
	value, err := s.eval(word[1:], here)
	if err != nil {
		return 0, err
	}
	if value < lo || value > hi {
		return 0, fmt.Errorf("%w: %v", ErrImmediateRange, value)
	}
	return value, nil
}

func registers(words []string) ([]uint8, error) {
	regs := make([]uint8, len(words))
	for i, word := range words {
		reg, err := register(word)
		if err != nil {
			return nil, err
		}
		regs[i] = reg
	}
	return regs, nil
}

func expect(st statement, n int) error {
	if len(st.operands) != n {
		return fmt.Errorf("%w: %v wants %d", ErrOperandCount, st.mnemonic, n)
	}
	return nil
}

// encode produces the word for one statement.
func encode(syms symbols, st statement) (uint16, error) {
	ops := st.operands

	if op, ok := aluOps[st.mnemonic]; ok {
		if err := expect(st, 3); err != nil {
			return 0, err
		}
		regs, err := registers(ops)
		if err != nil {
			return 0, err
		}
		return insts.EncodeALU(op, regs[0], regs[1], regs[2]), nil
	}

	if op, ok := unaryOps[st.mnemonic]; ok {
		if err := expect(st, 2); err != nil {
			return 0, err
		}
		regs, err := registers(ops)
		if err != nil {
			return 0, err
		}
		return insts.EncodeUnary(op, regs[0], regs[1]), nil
	}

	if op, ok := shiftOps[st.mnemonic]; ok {
		if err := expect(st, 3); err != nil {
			return 0, err
		}
		regs, err := registers(ops[:2])
		if err != nil {
			return 0, err
		}
		amount, err := syms.immediate(ops[2], st.addr, 0, 31)
		if err != nil {
			return 0, err
		}
		return insts.EncodeShift(op, regs[0], regs[1], uint8(amount)), nil
	}

	if cond, ok := branchConds[st.mnemonic]; ok {
		if err := expect(st, 1); err != nil {
			return 0, err
		}
		target, err := syms.eval(ops[0], st.addr)
		if err != nil {
			return 0, err
		}
		return insts.EncodeBranch(cond, int(target-(st.addr+insts.WordSize)))
	}

	switch st.mnemonic {
	case "mov":
		return encodeMove(syms, st)
	case "store":
		return encodeStore(syms, st)
	case "load":
		if err := expect(st, 2); err != nil {
			return 0, err
		}
		rd, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		rn, err := memory(ops[1])
		if err != nil {
			return 0, err
		}
		return insts.EncodeLOAD(rd, rn), nil
	case "cmp":
		if err := expect(st, 2); err != nil {
			return 0, err
		}
		regs, err := registers(ops)
		if err != nil {
			return 0, err
		}
		return insts.EncodeCMP(regs[0], regs[1]), nil
	case "push", "pop":
		if err := expect(st, 1); err != nil {
			return 0, err
		}
		reg, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		if st.mnemonic == "push" {
			return insts.EncodePUSH(reg), nil
		}
		return insts.EncodePOP(reg), nil
	case "nop":
		return insts.EncodeNOP(), expect(st, 0)
	case "halt":
		return insts.EncodeHALT(), expect(st, 0)
	case ".word":
		value, err := syms.eval(ops[0], st.addr)
		if err != nil {
			return 0, err
		}
		if value < -0x8000 || value > 0xFFFF {
			return 0, fmt.Errorf("%w: %v", ErrImmediateRange, value)
		}
		return uint16(value), nil
	}

	return 0, fmt.Errorf("%w: '%v'", ErrOpcodeInvalid, st.mnemonic)
}

// encodeMove handles "mov rd, #imm" and "mov rd, rn".
func encodeMove(syms symbols, st statement) (uint16, error) {
	if err := expect(st, 2); err != nil {
		return 0, err
	}
	rd, err := register(st.operands[0])
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(st.operands[1], "#") {
		imm, err := syms.immediate(st.operands[1], st.addr, -0x80, 0xFF)
		if err != nil {
			return 0, err
		}
		return insts.EncodeMOVImm(rd, uint8(imm)), nil
	}
	rn, err := register(st.operands[1])
	if err != nil {
		return 0, err
	}
	return insts.EncodeMOVReg(rd, rn), nil
}

// encodeStore handles "store [rn], #imm" and "store [rn], rm".
func encodeStore(syms symbols, st statement) (uint16, error) {
	if err := expect(st, 2); err != nil {
		return 0, err
	}
	rn, err := memory(st.operands[0])
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(st.operands[1], "#") {
		imm, err := syms.immediate(st.operands[1], st.addr, -0x80, 0xFF)
		if err != nil {
			return 0, err
		}
		return insts.EncodeSTOREImm(rn, uint8(imm)), nil
	}
	rm, err := register(st.operands[1])
	if err != nil {
		return 0, err
	}
	return insts.EncodeSTOREReg(rn, rm), nil
}
