// Package cpu emulates the Hack computer: a 16-bit CPU with separate
// instruction ROM and data RAM, a memory-mapped screen and keyboard.
package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ROMSize = 1 << 15
	RAMSize = 1 << 15

	ScreenBase   uint16 = 0x4000
	ScreenWords         = 8192
	KeyboardAddr uint16 = 0x6000
)

// Jump bits of a C-instruction.
const (
	jumpGT uint16 = 1 << iota
	jumpEQ
	jumpLT
)

// Destination bits of a C-instruction.
const (
	destM uint16 = 1 << iota
	destD
	destA
)

type CPU struct {
	A  uint16
	D  uint16
	PC uint16

	ROM [ROMSize]uint16
	RAM [RAMSize]uint16

	// ProgramSize is the number of ROM words loaded. Running past it halts.
	ProgramSize int

	// Halted is set when the PC leaves the program or the program enters
	// the terminating "@X / 0;JMP" loop at X.
	Halted bool

	Steps uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// LoadWords copies a program into ROM and resets the CPU.
func (c *CPU) LoadWords(words []uint16) error {
	if len(words) > ROMSize {
		return fmt.Errorf("program too large for ROM: %d words > %d words", len(words), ROMSize)
	}
	c.ROM = [ROMSize]uint16{}
	copy(c.ROM[:], words)
	c.ProgramSize = len(words)
	c.Reset()
	return nil
}

// LoadHack parses .hack text, one 16-character binary word per line, and
// loads it into ROM. Blank lines are skipped.
func (c *CPU) LoadHack(lines []string) error {
	words := make([]uint16, 0, len(lines))
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		word, err := ParseWord(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		words = append(words, word)
	}
	return c.LoadWords(words)
}

// ParseWord decodes one line of .hack text.
func ParseWord(line string) (uint16, error) {
	if len(line) != 16 || strings.Trim(line, "01") != "" {
		return 0, fmt.Errorf("invalid machine word %q", line)
	}
	v, err := strconv.ParseUint(line, 2, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid machine word %q: %w", line, err)
	}
	return uint16(v), nil
}

// Reset clears the registers and the halt state. RAM is left untouched.
func (c *CPU) Reset() {
	c.A = 0
	c.D = 0
	c.PC = 0
	c.Halted = false
	c.Steps = 0
}

func (c *CPU) ReadMem(addr uint16) uint16 {
	return c.RAM[addr&(RAMSize-1)]
}

func (c *CPU) WriteMem(addr uint16, val uint16) {
	c.RAM[addr&(RAMSize-1)] = val
}

// PushKey sets the keyboard register to a Hack key code.
func (c *CPU) PushKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

// ReleaseKey clears the keyboard register.
func (c *CPU) ReleaseKey() {
	c.RAM[KeyboardAddr] = 0
}

func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= c.ProgramSize {
		c.Halted = true
		return
	}

	pc := c.PC
	instr := c.ROM[pc]
	c.Steps++

	if instr&0x8000 == 0 {
		c.A = instr
		c.PC++
		return
	}

	useM := instr&0x1000 != 0
	control := (instr >> 6) & 0x3F
	dest := (instr >> 3) & 0x07
	jump := instr & 0x07

	addrM := c.A
	y := c.A
	if useM {
		y = c.ReadMem(addrM)
	}
	out := alu(c.D, y, control)

	if dest&destM != 0 {
		c.WriteMem(addrM, out)
	}
	if dest&destD != 0 {
		c.D = out
	}
	if dest&destA != 0 {
		c.A = out
	}

	if !jumps(out, jump) {
		c.PC++
		return
	}

	c.PC = addrM
	if jump == 0x07 && pc > 0 && addrM == pc-1 && c.ROM[pc-1] == pc-1 {
		c.Halted = true
	}
}

// Run steps until the CPU halts or maxSteps instructions have executed.
// A maxSteps of zero or less means no limit. It returns the number of
// instructions executed.
func (c *CPU) Run(maxSteps int) int {
	n := 0
	for !c.Halted {
		if maxSteps > 0 && n >= maxSteps {
			break
		}
		c.Step()
		n++
	}
	return n
}

// alu computes the Hack ALU function selected by the six control bits
// zx nx zy ny f no.
func alu(x, y, control uint16) uint16 {
	if control&0x20 != 0 {
		x = 0
	}
	if control&0x10 != 0 {
		x = ^x
	}
	if control&0x08 != 0 {
		y = 0
	}
	if control&0x04 != 0 {
		y = ^y
	}

	var out uint16
	if control&0x02 != 0 {
		out = x + y
	} else {
		out = x & y
	}

	if control&0x01 != 0 {
		out = ^out
	}
	return out
}

func jumps(out, jump uint16) bool {
	switch {
	case out == 0:
		return jump&jumpEQ != 0
	case int16(out) < 0:
		return jump&jumpLT != 0
	default:
		return jump&jumpGT != 0
	}
}
