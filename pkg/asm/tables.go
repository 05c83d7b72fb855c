package asm

// compTable maps a computation mnemonic to its a-bit plus c1..c6 bits.
var compTable = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"M":   0b1110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"!M":  0b1110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"-M":  0b1110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"M+1": 0b1110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"M-1": 0b1110010,
	"D+A": 0b0000010,
	"D+M": 0b1000010,
	"D-A": 0b0010011,
	"D-M": 0b1010011,
	"A-D": 0b0000111,
	"M-D": 0b1000111,
	"D&A": 0b0000000,
	"D&M": 0b1000000,
	"D|A": 0b0010101,
	"D|M": 0b1010101,
}

var destTable = map[string]uint16{
	"":    0b000,
	"M":   0b001,
	"D":   0b010,
	"MD":  0b011,
	"A":   0b100,
	"AM":  0b101,
	"AD":  0b110,
	"AMD": 0b111,
}

var jumpTable = map[string]uint16{
	"":    0b000,
	"JGT": 0b001,
	"JEQ": 0b010,
	"JGE": 0b011,
	"JLT": 0b100,
	"JNE": 0b101,
	"JLE": 0b110,
	"JMP": 0b111,
}

// predefinedSymbols are the reserved names of the Hack platform. R0-R4
// share addresses with SP..THAT on purpose.
var predefinedSymbols = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"R0":     0,
	"R1":     1,
	"R2":     2,
	"R3":     3,
	"R4":     4,
	"R5":     5,
	"R6":     6,
	"R7":     7,
	"R8":     8,
	"R9":     9,
	"R10":    10,
	"R11":    11,
	"R12":    12,
	"R13":    13,
	"R14":    14,
	"R15":    15,
	"SCREEN": ScreenBase,
	"KBD":    KeyboardAddr,
}

const (
	// ScreenBase is the first word of the memory-mapped screen.
	ScreenBase uint16 = 16384
	// KeyboardAddr is the memory-mapped keyboard register.
	KeyboardAddr uint16 = 24576

	// VariableBase is the first address handed out to a variable.
	VariableBase uint16 = 16
	// VariableLimit is the last address a variable may receive. 16383 sits
	// just below the screen map and is never allocated.
	VariableLimit uint16 = ScreenBase - 2

	// MaxAddress is the largest value an A-instruction can carry.
	MaxAddress = 1<<15 - 1
)

// IsPredefined reports whether name is one of the reserved platform symbols.
func IsPredefined(name string) bool {
	_, ok := predefinedSymbols[name]
	return ok
}
