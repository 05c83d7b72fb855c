package asm

import "fmt"

// SymbolTable resolves symbolic operands for a single assembly run.
// Labels are fixed once pass one finishes; variables are allocated lazily,
// in first-use order, from VariableBase upwards.
type SymbolTable struct {
	labels    map[string]uint16
	variables map[string]uint16
	order     []string
	next      uint16
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		labels:    make(map[string]uint16),
		variables: make(map[string]uint16),
		next:      VariableBase,
	}
}

// DefineLabel binds name to a ROM address.
func (s *SymbolTable) DefineLabel(name string, addr uint16) error {
	if !isSymbol(name) {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, name)
	}
	if IsPredefined(name) {
		return fmt.Errorf("%w: %s", ErrReservedLabel, name)
	}
	if _, exists := s.labels[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, name)
	}
	s.labels[name] = addr
	return nil
}

// Resolve returns the address of name, checking labels, then predefined
// symbols, then variables. An unknown name is allocated the next free
// variable address.
func (s *SymbolTable) Resolve(name string) (uint16, error) {
	if addr, ok := s.labels[name]; ok {
		return addr, nil
	}
	if addr, ok := predefinedSymbols[name]; ok {
		return addr, nil
	}
	if addr, ok := s.variables[name]; ok {
		return addr, nil
	}

	if s.next > VariableLimit {
		return 0, fmt.Errorf("%w: cannot place %s", ErrOutOfMemory, name)
	}
	addr := s.next
	s.variables[name] = addr
	s.order = append(s.order, name)
	s.next++
	return addr, nil
}

// Label looks up a label without allocating anything.
func (s *SymbolTable) Label(name string) (uint16, bool) {
	addr, ok := s.labels[name]
	return addr, ok
}

// Labels returns a copy of the label table.
func (s *SymbolTable) Labels() map[string]uint16 {
	out := make(map[string]uint16, len(s.labels))
	for k, v := range s.labels {
		out[k] = v
	}
	return out
}

// Variables returns a copy of the variables allocated so far.
func (s *SymbolTable) Variables() map[string]uint16 {
	out := make(map[string]uint16, len(s.variables))
	for k, v := range s.variables {
		out[k] = v
	}
	return out
}

// VariableOrder lists variable names in allocation order.
func (s *SymbolTable) VariableOrder() []string {
	return append([]string(nil), s.order...)
}

// isSymbol accepts the Hack identifier alphabet: ASCII letters, digits,
// '_', '.', '$' and ':', not starting with a digit.
func isSymbol(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			if i == 0 {
				return false
			}
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch == '_', ch == '.', ch == '$', ch == ':':
		default:
			return false
		}
	}

	return true
}
