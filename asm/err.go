package asm

import (
	"errors"

	"github.com/sarchlab/s16sim/translate"
)

var f = translate.From

var (
	// Directive errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrOrgSyntax       = errors.New(f(".org syntax"))
	ErrWordSyntax      = errors.New(f(".word syntax"))
	ErrDirectiveUnknown = errors.New(f("directive unknown"))

	// Symbol errors
	ErrSymbolDuplicate = errors.New(f("symbol duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))

	// Instruction errors
	ErrOpcodeInvalid    = errors.New(f("opcode invalid"))
	ErrOperandCount     = errors.New(f("wrong number of operands"))
	ErrRegisterInvalid  = errors.New(f("register invalid"))
	ErrImmediateMissing = errors.New(f("immediate must start with '#'"))
	ErrMemoryOperand    = errors.New(f("memory operand must be [rN]"))
	ErrImmediateRange   = errors.New(f("immediate out of range"))

	// Layout errors
	ErrAddressRange   = errors.New(f("address out of range"))
	ErrAddressOverlap = errors.New(f("address already assembled"))
)

type ErrSymbolUndefined string

func (err ErrSymbolUndefined) Error() string {
	return f("symbol '%v' undefined", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("'%v' is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
