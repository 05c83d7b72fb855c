package asm

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	ErrAddressRange    = errors.New("address out of range")
	ErrInvalidOperand  = errors.New("invalid operand")
	ErrInvalidLabel    = errors.New("invalid label")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrReservedLabel   = errors.New("label shadows predefined symbol")
	ErrOutOfMemory     = errors.New("no free variable address")
)

// LineError ties a translation failure to the source line that caused it.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v on line %d: %s", e.Err, e.Line, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
