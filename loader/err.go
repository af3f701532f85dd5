package loader

import (
	"errors"

	"github.com/sarchlab/s16sim/emu"
	"github.com/sarchlab/s16sim/translate"
)

var f = translate.From

// ErrOpen is wrapped when the program image cannot be opened.
var ErrOpen = errors.New(f("failed to open program image"))

// AddressError reports an image line whose word does not fit in
// instruction memory.
type AddressError struct {
	LineNo int
	Addr   uint16
}

func (err *AddressError) Error() string {
	return f("line %d: address 0x%04X outside instruction memory", err.LineNo, err.Addr)
}

func (err *AddressError) Unwrap() error {
	return emu.ErrBoundsViolation
}
