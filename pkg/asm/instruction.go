package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction is one parsed line of Hack assembly.
type Instruction interface {
	// Binary renders the instruction as sixteen '0'/'1' characters.
	Binary() string
	// Word returns the same encoding as a machine word.
	Word() uint16
}

// AInstruction loads a 15-bit value into the A register.
type AInstruction struct {
	symbol  string
	address uint16
}

// NewAInstruction builds a literal A-instruction.
func NewAInstruction(address uint16) (AInstruction, error) {
	if address > MaxAddress {
		return AInstruction{}, fmt.Errorf("%w: %d", ErrAddressRange, address)
	}
	return AInstruction{address: address}, nil
}

// Symbol is the operand name, empty for literal operands.
func (a AInstruction) Symbol() string {
	return a.symbol
}

func (a AInstruction) Address() uint16 {
	return a.address
}

func (a AInstruction) Binary() string {
	return fmt.Sprintf("%016b", a.Word())
}

func (a AInstruction) Word() uint16 {
	return a.address & MaxAddress
}

// CInstruction is a compute instruction of the form dest=comp;jump.
// The zero value encodes "D&A" with no destination and no jump.
type CInstruction struct {
	dest, comp, jump string
	// bits holds comp(7) dest(3) jump(3) in their word positions.
	bits uint16
}

// NewCInstruction looks up each field in its table. An unknown mnemonic
// is an error.
func NewCInstruction(dest, comp, jump string) (CInstruction, error) {
	compBits, ok := compTable[comp]
	if !ok {
		return CInstruction{}, fmt.Errorf("%w: comp %q", ErrUnknownMnemonic, comp)
	}
	destBits, ok := destTable[dest]
	if !ok {
		return CInstruction{}, fmt.Errorf("%w: dest %q", ErrUnknownMnemonic, dest)
	}
	jumpBits, ok := jumpTable[jump]
	if !ok {
		return CInstruction{}, fmt.Errorf("%w: jump %q", ErrUnknownMnemonic, jump)
	}

	return CInstruction{
		dest: dest,
		comp: comp,
		jump: jump,
		bits: compBits<<6 | destBits<<3 | jumpBits,
	}, nil
}

func (c CInstruction) Dest() string { return c.dest }
func (c CInstruction) Comp() string { return c.comp }
func (c CInstruction) Jump() string { return c.jump }

func (c CInstruction) Binary() string {
	return fmt.Sprintf("%016b", c.Word())
}

func (c CInstruction) Word() uint16 {
	return 0xE000 | c.bits&0x1FFF
}

// ParseInstruction parses a cleaned instruction line. Symbolic operands are
// resolved through syms, which may allocate a variable.
func ParseInstruction(line string, syms *SymbolTable) (Instruction, error) {
	if strings.HasPrefix(line, "@") {
		return parseAInstruction(line[1:], syms)
	}
	return parseCInstruction(line)
}

func parseAInstruction(operand string, syms *SymbolTable) (AInstruction, error) {
	if operand == "" {
		return AInstruction{}, fmt.Errorf("%w: missing address", ErrInvalidOperand)
	}

	if isDecimal(operand) {
		value, err := strconv.ParseUint(operand, 10, 64)
		if err != nil || value > MaxAddress {
			return AInstruction{}, fmt.Errorf("%w: %s", ErrAddressRange, operand)
		}
		return AInstruction{address: uint16(value)}, nil
	}

	if !isSymbol(operand) {
		return AInstruction{}, fmt.Errorf("%w: %q", ErrInvalidOperand, operand)
	}

	addr, err := syms.Resolve(operand)
	if err != nil {
		return AInstruction{}, err
	}
	if addr > MaxAddress {
		return AInstruction{}, fmt.Errorf("%w: %s resolves to %d", ErrAddressRange, operand, addr)
	}
	return AInstruction{symbol: operand, address: addr}, nil
}

func parseCInstruction(line string) (CInstruction, error) {
	var dest, jump string

	rest := line
	if d, after, found := strings.Cut(rest, "="); found {
		dest = d
		rest = after
	}
	comp := rest
	if c, j, found := strings.Cut(rest, ";"); found {
		comp = c
		jump = j
	}

	return NewCInstruction(dest, comp, jump)
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
