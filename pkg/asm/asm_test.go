package asm

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"abc1", true},
		{"Main.loop$ret:1", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
		{"a b", false},
		{"café", false},
		{"naïve", false},
		{"Ω", false},
		{"x٣", false},
	}
	for _, tc := range tests {
		if got := isSymbol(tc.input); got != tc.want {
			t.Errorf("isSymbol(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	if got := stripComment("D=M // load"); got != "D=M " {
		t.Errorf("stripComment = %q; want %q", got, "D=M ")
	}
	if got := stripComment("// only a comment"); got != "" {
		t.Errorf("stripComment = %q; want empty", got)
	}
}

func TestTableSizes(t *testing.T) {
	if len(compTable) != 28 {
		t.Errorf("compTable has %d entries; want 28", len(compTable))
	}
	if len(destTable) != 8 {
		t.Errorf("destTable has %d entries; want 8", len(destTable))
	}
	if len(jumpTable) != 8 {
		t.Errorf("jumpTable has %d entries; want 8", len(jumpTable))
	}
	if len(predefinedSymbols) != 23 {
		t.Errorf("predefinedSymbols has %d entries; want 23", len(predefinedSymbols))
	}
}

func TestParseCInstruction(t *testing.T) {
	tests := []struct {
		line string
		want [3]string // dest, comp, jump
		bin  string
	}{
		{"D=D+1", [3]string{"D", "D+1", ""}, "1110011111010000"},
		{"M=D", [3]string{"M", "D", ""}, "1110001100001000"},
		{"0;JMP", [3]string{"", "0", "JMP"}, "1110101010000111"},
		{"D;JGT", [3]string{"", "D", "JGT"}, "1110001100000001"},
		{"AMD=M+1;JGE", [3]string{"AMD", "M+1", "JGE"}, "1111110111111011"},
		{"D=D&A", [3]string{"D", "D&A", ""}, "1110000000010000"},
		{"MD=M-D", [3]string{"MD", "M-D", ""}, "1111000111011000"},
	}

	for _, tc := range tests {
		got, err := parseCInstruction(tc.line)
		if err != nil {
			t.Errorf("parseCInstruction(%q) error = %v", tc.line, err)
			continue
		}
		if fields := [3]string{got.Dest(), got.Comp(), got.Jump()}; fields != tc.want {
			t.Errorf("parseCInstruction(%q) = %q; want %q", tc.line, fields, tc.want)
		}
		if bin := got.Binary(); bin != tc.bin {
			t.Errorf("%q.Binary() = %s; want %s", tc.line, bin, tc.bin)
		}
		word, _ := strconv.ParseUint(tc.bin, 2, 16)
		if got.Word() != uint16(word) {
			t.Errorf("%q.Word() = 0x%04X; want 0x%04X", tc.line, got.Word(), word)
		}
	}
}

func TestInstructionsAlwaysEncodeSixteenBits(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
		want string
	}{
		{"zero A", AInstruction{}, "0000000000000000"},
		{"zero C", CInstruction{}, "1110000000000000"},
	}
	for _, tc := range tests {
		if got := tc.inst.Binary(); got != tc.want {
			t.Errorf("%s: Binary() = %q; want %q", tc.name, got, tc.want)
		}
	}

	if _, err := NewAInstruction(40000); !errors.Is(err, ErrAddressRange) {
		t.Errorf("NewAInstruction(40000) error = %v; want %v", err, ErrAddressRange)
	}
	a, err := NewAInstruction(MaxAddress)
	if err != nil {
		t.Fatalf("NewAInstruction(%d) error = %v", MaxAddress, err)
	}
	if got := a.Binary(); got != "0111111111111111" {
		t.Errorf("NewAInstruction(%d).Binary() = %s", MaxAddress, got)
	}

	bad := [][3]string{
		{"D", "D*2", ""},
		{"Q", "D", ""},
		{"", "0", "JUMP"},
		{"", "", ""},
	}
	for _, f := range bad {
		if _, err := NewCInstruction(f[0], f[1], f[2]); !errors.Is(err, ErrUnknownMnemonic) {
			t.Errorf("NewCInstruction(%q) error = %v; want %v", f, err, ErrUnknownMnemonic)
		}
	}

	c, err := NewCInstruction("D", "D+1", "")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Binary(); got != "1110011111010000" || len(got) != 16 {
		t.Errorf("NewCInstruction(D, D+1).Binary() = %s", got)
	}
}

func TestLiteralAddresses(t *testing.T) {
	for n := 0; n <= MaxAddress; n++ {
		inst, err := ParseInstruction("@"+strconv.Itoa(n), NewSymbolTable())
		if err != nil {
			t.Fatalf("@%d: %v", n, err)
		}
		bits := strconv.FormatUint(uint64(n), 2)
		want := "0" + strings.Repeat("0", 15-len(bits)) + bits
		if got := inst.Binary(); got != want {
			t.Fatalf("@%d = %s; want %s", n, got, want)
		}
	}
}

func TestPredefinedSymbols(t *testing.T) {
	tests := []struct {
		symbol  string
		literal string
	}{
		{"@SCREEN", "@16384"},
		{"@KBD", "@24576"},
		{"@SP", "@0"},
		{"@THAT", "@4"},
		{"@R15", "@15"},
	}

	for _, tc := range tests {
		syms := NewSymbolTable()
		a, err := ParseInstruction(tc.symbol, syms)
		if err != nil {
			t.Fatalf("%s: %v", tc.symbol, err)
		}
		b, err := ParseInstruction(tc.literal, syms)
		if err != nil {
			t.Fatalf("%s: %v", tc.literal, err)
		}
		if a.Binary() != b.Binary() {
			t.Errorf("%s = %s; want %s (%s)", tc.symbol, a.Binary(), b.Binary(), tc.literal)
		}
		if len(syms.Variables()) != 0 {
			t.Errorf("%s allocated a variable", tc.symbol)
		}
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "label before use",
			code: `
(LOOP)
@R0
M=D
@LOOP
0;JMP
`,
			want: []string{
				"0000000000000000",
				"1110001100001000",
				"0000000000000000",
				"1110101010000111",
			},
		},
		{
			name: "forward reference",
			code: `
@END      // jump target declared later
0;JMP
D=0
(END)
@END
0;JMP
`,
			want: []string{
				"0000000000000011",
				"1110101010000111",
				"1110101010010000",
				"0000000000000011",
				"1110101010000111",
			},
		},
		{
			name: "variables in first-use order",
			code: `
@i
M=1
@sum
M=0
@i
D=M
@total
`,
			want: []string{
				"0000000000010000",
				"1110111111001000",
				"0000000000010001",
				"1110101010001000",
				"0000000000010000",
				"1111110000010000",
				"0000000000010010",
			},
		},
		{
			name: "comments and blank lines",
			code: "// header\n\n   @2   \n\t// indented comment\r\nD=A // load 2\r\n",
			want: []string{
				"0000000000000010",
				"1110110000010000",
			},
		},
		{
			name: "empty source",
			code: "// nothing\n\n",
			want: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Assemble(tc.code)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Assemble() =\n%v\nwant\n%v", got, tc.want)
			}
		})
	}
}

func TestAssembleIsRepeatable(t *testing.T) {
	code := "@x\nM=1\n(L)\n@y\n@L\n0;JMP\n"
	a := NewAssembler()
	first, _, err := a.Assemble(code)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := a.Assemble(code)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second run differs:\n%v\n%v", first, second)
	}
	if got := a.Symbols().VariableOrder(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("VariableOrder() = %v; want [x y]", got)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
		line int
	}{
		{"unknown comp", "D=D+2", ErrUnknownMnemonic, 1},
		{"unknown dest", "@1\nX=D", ErrUnknownMnemonic, 2},
		{"unknown jump", "0;JUMP", ErrUnknownMnemonic, 1},
		{"empty comp", "D=", ErrUnknownMnemonic, 1},
		{"literal too large", "@32768", ErrAddressRange, 1},
		{"huge literal", "@99999999999999999999999", ErrAddressRange, 1},
		{"negative literal", "@-1", ErrInvalidOperand, 1},
		{"bad symbol", "@1abc", ErrInvalidOperand, 1},
		{"non-ascii symbol", "@i\n@café", ErrInvalidOperand, 2},
		{"non-ascii label", "(naïve)", ErrInvalidLabel, 1},
		{"missing operand", "\n@", ErrInvalidOperand, 2},
		{"unbalanced label", "(LOOP", ErrInvalidLabel, 1},
		{"empty label", "()", ErrInvalidLabel, 1},
		{"label with spaces", "(MY LOOP)", ErrInvalidLabel, 1},
		{"duplicate label", "(A)\n@1\n(A)", ErrDuplicateLabel, 3},
		{"reserved label", "(SCREEN)", ErrReservedLabel, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, sm, err := Assemble(tc.code)
			if err == nil {
				t.Fatalf("Assemble(%q) succeeded; want %v", tc.code, tc.want)
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v; want %v", err, tc.want)
			}
			var lineErr *LineError
			if !errors.As(err, &lineErr) {
				t.Fatalf("error %v is not a *LineError", err)
			}
			if lineErr.Line != tc.line {
				t.Errorf("error line = %d; want %d", lineErr.Line, tc.line)
			}
			if got != nil || sm != nil {
				t.Errorf("partial output on error: %v %v", got, sm)
			}
		})
	}
}

func TestUnknownMnemonicNamesToken(t *testing.T) {
	_, _, err := Assemble("AMD=D*A")
	if err == nil || !strings.Contains(err.Error(), `"D*A"`) {
		t.Errorf("error = %v; want it to name D*A", err)
	}
}

func TestVariableExhaustion(t *testing.T) {
	var b strings.Builder
	free := int(VariableLimit-VariableBase) + 1
	for i := 0; i < free; i++ {
		fmt.Fprintf(&b, "@v%d\n", i)
	}

	a := NewAssembler()
	code, _, err := a.Assemble(b.String())
	if err != nil {
		t.Fatalf("Assemble() with %d variables: %v", free, err)
	}
	if last := code[len(code)-1]; last != "0011111111111110" {
		t.Errorf("last variable = %s; want address 16382", last)
	}

	b.WriteString("@overflow\n")
	_, _, err = a.Assemble(b.String())
	if !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("error = %v; want %v", err, ErrOutOfMemory)
	}
}

func TestInstructionsStream(t *testing.T) {
	code := "@7\nD=A\n@x\nD=D*2\n@never\n"

	a := NewAssembler()
	var got []string
	var gotErr error
	for inst, err := range a.Instructions(code) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, inst.Binary())
	}

	want := []string{"0000000000000111", "1110110000010000", "0000000000010000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("streamed %v; want %v", got, want)
	}
	if !errors.Is(gotErr, ErrUnknownMnemonic) {
		t.Errorf("stream error = %v; want %v", gotErr, ErrUnknownMnemonic)
	}
	if _, ok := a.Symbols().Variables()["never"]; ok {
		t.Errorf("stream continued past the failing line")
	}
}

func TestInstructionsStreamLabelError(t *testing.T) {
	count := 0
	for inst, err := range NewAssembler().Instructions("@1\n(BAD") {
		count++
		if inst != nil || !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("got (%v, %v); want (nil, %v)", inst, err, ErrInvalidLabel)
		}
	}
	if count != 1 {
		t.Errorf("yielded %d items; want 1", count)
	}
}
