package emu

import (
	"errors"

	"github.com/sarchlab/s16sim/translate"
)

var f = translate.From

var (
	// ErrBoundsViolation is wrapped by every out-of-range memory or stack
	// access.
	ErrBoundsViolation = errors.New(f("bounds violation"))
	// ErrInstructionLimit is returned once the instruction budget is spent.
	ErrInstructionLimit = errors.New(f("instruction limit reached"))
)

// BoundsError locates an out-of-range access.
type BoundsError struct {
	Region string // "instruction", "data" or "stack"
	Addr   uint32 // Architectural address of the access
	Index  int64  // Offset into the region that was rejected
}

func (err *BoundsError) Error() string {
	return f("%v %v memory address 0x%04X (index %v)",
		ErrBoundsViolation.Error(), err.Region, err.Addr, err.Index)
}

func (err *BoundsError) Unwrap() error {
	return ErrBoundsViolation
}
