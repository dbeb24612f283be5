package cpu

import "fmt"

// Op identifies one of the CHIP-8 instructions.
type Op uint8

const (
	Invalid Op = iota
	CLS        // 00E0
	RET        // 00EE
	JP         // 1nnn
	CALL       // 2nnn
	SEByte     // 3xkk
	SNEByte    // 4xkk
	SEReg      // 5xy0
	LDByte     // 6xkk
	ADDByte    // 7xkk
	LDReg      // 8xy0
	OR         // 8xy1
	AND        // 8xy2
	XOR        // 8xy3
	ADDReg     // 8xy4
	SUB        // 8xy5
	SHR        // 8xy6
	SUBN       // 8xy7
	SHL        // 8xyE
	SNEReg     // 9xy0
	LDI        // Annn
	JPV0       // Bnnn
	RND        // Cxkk
	DRW        // Dxyn
	SKP        // Ex9E
	SKNP       // ExA1
	LDVxDT     // Fx07
	LDKey      // Fx0A
	LDDTVx     // Fx15
	LDSTVx     // Fx18
	ADDI       // Fx1E
	LDF        // Fx29
	LDB        // Fx33
	LDMemVx    // Fx55
	LDVxMem    // Fx65

	numOps
)

var opNames = [numOps]string{
	Invalid: "DW",
	CLS:     "CLS",
	RET:     "RET",
	JP:      "JP",
	CALL:    "CALL",
	SEByte:  "SE",
	SNEByte: "SNE",
	SEReg:   "SE",
	LDByte:  "LD",
	ADDByte: "ADD",
	LDReg:   "LD",
	OR:      "OR",
	AND:     "AND",
	XOR:     "XOR",
	ADDReg:  "ADD",
	SUB:     "SUB",
	SHR:     "SHR",
	SUBN:    "SUBN",
	SHL:     "SHL",
	SNEReg:  "SNE",
	LDI:     "LD",
	JPV0:    "JP",
	RND:     "RND",
	DRW:     "DRW",
	SKP:     "SKP",
	SKNP:    "SKNP",
	LDVxDT:  "LD",
	LDKey:   "LD",
	LDDTVx:  "LD",
	LDSTVx:  "LD",
	ADDI:    "ADD",
	LDF:     "LD",
	LDB:     "LD",
	LDMemVx: "LD",
	LDVxMem: "LD",
}

func (op Op) String() string {
	if op < numOps {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Instruction is a decoded instruction word with its operand fields.
type Instruction struct {
	Op     Op
	Opcode uint16
	NNN    uint16 // low 12 bits
	KK     uint8  // low byte
	N      uint8  // low nibble
	X      uint8  // bits 8-11
	Y      uint8  // bits 4-7
}

// Decode extracts the operand fields of opcode and identifies the
// instruction. Unmatched opcodes decode to Invalid.
func Decode(opcode uint16) Instruction {
	in := Instruction{
		Opcode: opcode,
		NNN:    opcode & 0x0FFF,
		KK:     uint8(opcode),
		N:      uint8(opcode & 0x000F),
		X:      uint8(opcode >> 8 & 0x0F),
		Y:      uint8(opcode >> 4 & 0x0F),
	}
	in.Op = families[opcode>>12](in)
	return in
}

// families routes on the top nibble. Families 0, 8, E and F route further
// on the low byte or low nibble.
var families = [16]func(Instruction) Op{
	0x0: func(in Instruction) Op {
		switch in.Opcode {
		case 0x00E0:
			return CLS
		case 0x00EE:
			return RET
		}
		return Invalid
	},
	0x1: always(JP),
	0x2: always(CALL),
	0x3: always(SEByte),
	0x4: always(SNEByte),
	0x5: func(in Instruction) Op { return ifLowNibbleZero(in, SEReg) },
	0x6: always(LDByte),
	0x7: always(ADDByte),
	0x8: func(in Instruction) Op { return aluOps[in.N] },
	0x9: func(in Instruction) Op { return ifLowNibbleZero(in, SNEReg) },
	0xA: always(LDI),
	0xB: always(JPV0),
	0xC: always(RND),
	0xD: always(DRW),
	0xE: func(in Instruction) Op {
		switch in.KK {
		case 0x9E:
			return SKP
		case 0xA1:
			return SKNP
		}
		return Invalid
	},
	0xF: func(in Instruction) Op { return miscOps[in.KK] },
}

// 8xyN, indexed by N; the zero value is Invalid
var aluOps = [16]Op{
	0x0: LDReg,
	0x1: OR,
	0x2: AND,
	0x3: XOR,
	0x4: ADDReg,
	0x5: SUB,
	0x6: SHR,
	0x7: SUBN,
	0xE: SHL,
}

// FxKK, indexed by KK; missing keys give Invalid
var miscOps = map[uint8]Op{
	0x07: LDVxDT,
	0x0A: LDKey,
	0x15: LDDTVx,
	0x18: LDSTVx,
	0x1E: ADDI,
	0x29: LDF,
	0x33: LDB,
	0x55: LDMemVx,
	0x65: LDVxMem,
}

func always(op Op) func(Instruction) Op {
	return func(Instruction) Op { return op }
}

func ifLowNibbleZero(in Instruction, op Op) Op {
	if in.N != 0 {
		return Invalid
	}
	return op
}

// String returns the instruction in assembler syntax, for example
// "LD VA, 0x02" or "DRW V0, V1, 5".
func (in Instruction) String() string {
	name := in.Op.String()
	switch in.Op {
	case CLS, RET:
		return name
	case JP, CALL:
		return fmt.Sprintf("%s 0x%.3X", name, in.NNN)
	case LDI:
		return fmt.Sprintf("%s I, 0x%.3X", name, in.NNN)
	case JPV0:
		return fmt.Sprintf("%s V0, 0x%.3X", name, in.NNN)
	case SEByte, SNEByte, LDByte, ADDByte, RND:
		return fmt.Sprintf("%s V%X, 0x%.2X", name, in.X, in.KK)
	case SEReg, SNEReg, LDReg, OR, AND, XOR, ADDReg, SUB, SUBN:
		return fmt.Sprintf("%s V%X, V%X", name, in.X, in.Y)
	case SHR, SHL, SKP, SKNP:
		return fmt.Sprintf("%s V%X", name, in.X)
	case DRW:
		return fmt.Sprintf("%s V%X, V%X, %d", name, in.X, in.Y, in.N)
	case LDVxDT:
		return fmt.Sprintf("%s V%X, DT", name, in.X)
	case LDKey:
		return fmt.Sprintf("%s V%X, K", name, in.X)
	case LDDTVx:
		return fmt.Sprintf("%s DT, V%X", name, in.X)
	case LDSTVx:
		return fmt.Sprintf("%s ST, V%X", name, in.X)
	case ADDI:
		return fmt.Sprintf("%s I, V%X", name, in.X)
	case LDF:
		return fmt.Sprintf("%s F, V%X", name, in.X)
	case LDB:
		return fmt.Sprintf("%s B, V%X", name, in.X)
	case LDMemVx:
		return fmt.Sprintf("%s [I], V%X", name, in.X)
	case LDVxMem:
		return fmt.Sprintf("%s V%X, [I]", name, in.X)
	}
	return fmt.Sprintf("%s 0x%.4X", name, in.Opcode)
}
