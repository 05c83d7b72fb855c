// Package asm translates Hack assembly into Hack machine code.
//
// Translation runs in two passes. Pass one strips comments and blank lines
// and records label addresses; pass two resolves the remaining symbols and
// encodes every instruction as a 16-bit word.
package asm

import (
	"fmt"
	"iter"
	"strings"
)

// romSize is the number of instruction words the Hack ROM holds.
const romSize = 1 << 15

type Assembler struct {
	symbols *SymbolTable
}

type sourceLine struct {
	lineNo int
	text   string
}

func NewAssembler() *Assembler {
	return &Assembler{
		symbols: NewSymbolTable(),
	}
}

// Assemble translates code with a fresh Assembler.
func Assemble(code string) ([]string, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

// Assemble returns one binary string per instruction and a source map from
// ROM address to source line. On error nothing is returned.
func (a *Assembler) Assemble(code string) ([]string, map[uint16]int, error) {
	lines, err := a.pass1(code)
	if err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// Instructions parses code lazily, one instruction per cleaned line. The
// sequence stops after the first error, which is yielded with a nil
// Instruction.
func (a *Assembler) Instructions(code string) iter.Seq2[Instruction, error] {
	return func(yield func(Instruction, error) bool) {
		lines, err := a.pass1(code)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, l := range lines {
			inst, err := a.translate(l)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(inst, nil) {
				return
			}
		}
	}
}

// Symbols exposes the symbol table of the most recent run.
func (a *Assembler) Symbols() *SymbolTable {
	return a.symbols
}

func (a *Assembler) pass1(code string) ([]sourceLine, error) {
	a.symbols = NewSymbolTable()
	var lines []sourceLine

	for i, raw := range strings.Split(code, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "(") {
			name, err := parseLabel(line)
			if err == nil && len(lines) >= romSize {
				err = fmt.Errorf("%w: label %s points past addressable memory", ErrAddressRange, name)
			}
			if err == nil {
				err = a.symbols.DefineLabel(name, uint16(len(lines)))
			}
			if err != nil {
				return nil, &LineError{Line: lineNo, Text: line, Err: err}
			}
			continue
		}

		if len(lines) >= romSize {
			return nil, &LineError{Line: lineNo, Text: line, Err: fmt.Errorf("%w: program too large", ErrAddressRange)}
		}
		lines = append(lines, sourceLine{lineNo: lineNo, text: line})
	}

	return lines, nil
}

func (a *Assembler) pass2(lines []sourceLine) ([]string, map[uint16]int, error) {
	program := make([]string, 0, len(lines))
	sourceMap := make(map[uint16]int, len(lines))

	for _, l := range lines {
		inst, err := a.translate(l)
		if err != nil {
			return nil, nil, err
		}

		sourceMap[uint16(len(program))] = l.lineNo
		program = append(program, inst.Binary())
	}

	return program, sourceMap, nil
}

func (a *Assembler) translate(l sourceLine) (Instruction, error) {
	inst, err := ParseInstruction(l.text, a.symbols)
	if err != nil {
		return nil, &LineError{Line: l.lineNo, Text: l.text, Err: err}
	}
	return inst, nil
}

func parseLabel(line string) (string, error) {
	if !strings.HasSuffix(line, ")") {
		return "", fmt.Errorf("%w: unbalanced parentheses", ErrInvalidLabel)
	}
	return line[1 : len(line)-1], nil
}

func stripComment(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}
