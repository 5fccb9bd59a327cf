// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
)

// Op is the 6-bit primary opcode field.
type Op uint32

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_RTYPE = Op(0b000000) // rtype
	OP_J     = Op(0b000010) // j
	OP_JAL   = Op(0b000011) // jal
	OP_BEQ   = Op(0b000100) // beq
	OP_ADDI  = Op(0b001000) // addi
	OP_LUI   = Op(0b001111) // lui
	OP_LW    = Op(0b100011) // lw
	OP_SW    = Op(0b101011) // sw
	OP_LWC1  = Op(0b110001) // lwc1
	OP_SWC1  = Op(0b111001) // swc1
)

// Funct is the 6-bit R-format function code field.
type Funct uint32

//go:generate go tool stringer -linecomment -type=Funct
const (
	FUNCT_ADD_S   = Funct(0x00) // add.s
	FUNCT_JR      = Funct(0x08) // jr
	FUNCT_SYSCALL = Funct(0x0c) // syscall
	FUNCT_MFHI    = Funct(0x10) // mfhi
	FUNCT_MFLO    = Funct(0x12) // mflo
	FUNCT_MULT    = Funct(0x18) // mult
	FUNCT_DIV     = Funct(0x1a) // div
	FUNCT_ADD     = Funct(0x20) // add
	FUNCT_SUB     = Funct(0x22) // sub
	FUNCT_AND     = Funct(0x24) // and
	FUNCT_OR      = Funct(0x25) // or
	FUNCT_SLT     = Funct(0x2a) // slt
)

// Format is an instruction word layout.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_R = Format(0) // R
	FORMAT_I = Format(1) // I
	FORMAT_J = Format(2) // J
)

// SYSCALL_WORD is the complete encoding of the syscall instruction.
const SYSCALL_WORD = Word(FUNCT_SYSCALL)

// Word is a single 32-bit machine instruction.
//
//	R: op(6) rs(5) rt(5) rd(5) shamt(5) funct(6)
//	I: op(6) rs(5) rt(5) imm(16)
//	J: op(6) target(26)
type Word uint32

// MakeR creates an R-format instruction.
func MakeR(rs, rt, rd Reg, shamt uint32, funct Funct) Word {
	return Word((uint32(OP_RTYPE) << 26) |
		((uint32(rs) & 0x1f) << 21) |
		((uint32(rt) & 0x1f) << 16) |
		((uint32(rd) & 0x1f) << 11) |
		((shamt & 0x1f) << 6) |
		(uint32(funct) & 0x3f))
}

// MakeI creates an I-format instruction.
func MakeI(op Op, rs, rt Reg, imm uint16) Word {
	return Word(((uint32(op) & 0x3f) << 26) |
		((uint32(rs) & 0x1f) << 21) |
		((uint32(rt) & 0x1f) << 16) |
		uint32(imm))
}

// MakeJ creates a J-format instruction.
func MakeJ(op Op, target uint32) Word {
	return Word(((uint32(op) & 0x3f) << 26) | (target & 0x03ff_ffff))
}

// Op returns bits 31-26.
func (w Word) Op() Op {
	return Op((uint32(w) >> 26) & 0x3f)
}

// Rs returns bits 25-21.
func (w Word) Rs() Reg {
	return Reg((uint32(w) >> 21) & 0x1f)
}

// Rt returns bits 20-16.
func (w Word) Rt() Reg {
	return Reg((uint32(w) >> 16) & 0x1f)
}

// Rd returns bits 15-11.
func (w Word) Rd() Reg {
	return Reg((uint32(w) >> 11) & 0x1f)
}

// Shamt returns bits 10-6.
func (w Word) Shamt() uint32 {
	return (uint32(w) >> 6) & 0x1f
}

// Funct returns bits 5-0.
func (w Word) Funct() Funct {
	return Funct(uint32(w) & 0x3f)
}

// Imm returns the raw 16-bit immediate, bits 15-0.
func (w Word) Imm() uint16 {
	return uint16(uint32(w) & 0xffff)
}

// SignImm returns the immediate sign extended to 32 bits.
func (w Word) SignImm() uint32 {
	return uint32(int32(int16(w.Imm())))
}

// Target returns the 26-bit jump target field.
func (w Word) Target() uint32 {
	return uint32(w) & 0x03ff_ffff
}

// Format returns the layout used by the instruction's opcode.
func (w Word) Format() Format {
	switch w.Op() {
	case OP_RTYPE:
		return FORMAT_R
	case OP_J, OP_JAL:
		return FORMAT_J
	default:
		return FORMAT_I
	}
}

// String returns the assembly language representation of this instruction.
func (w Word) String() (out string) {
	switch w.Op() {
	case OP_RTYPE:
		switch funct := w.Funct(); funct {
		case FUNCT_ADD, FUNCT_SUB, FUNCT_AND, FUNCT_OR, FUNCT_SLT:
			out = fmt.Sprintf("%v %v, %v, %v", funct, w.Rd(), w.Rs(), w.Rt())
		case FUNCT_MULT, FUNCT_DIV:
			out = fmt.Sprintf("%v %v, %v", funct, w.Rs(), w.Rt())
		case FUNCT_MFHI, FUNCT_MFLO:
			out = fmt.Sprintf("%v %v", funct, w.Rd())
		case FUNCT_JR:
			out = fmt.Sprintf("%v %v", funct, w.Rs())
		case FUNCT_SYSCALL:
			out = funct.String()
		case FUNCT_ADD_S:
			out = fmt.Sprintf("%v %v, %v, %v", funct, FloatName(w.Rd()), FloatName(w.Rs()), FloatName(w.Rt()))
		default:
			out = fmt.Sprintf(".word 0x%08x", uint32(w))
		}
	case OP_ADDI:
		out = fmt.Sprintf("%v %v, %v, %d", w.Op(), w.Rt(), w.Rs(), int16(w.Imm()))
	case OP_LUI:
		out = fmt.Sprintf("%v %v, 0x%04x", w.Op(), w.Rt(), w.Imm())
	case OP_LW, OP_SW:
		out = fmt.Sprintf("%v %v, %d(%v)", w.Op(), w.Rt(), int16(w.Imm()), w.Rs())
	case OP_LWC1, OP_SWC1:
		out = fmt.Sprintf("%v %v, %d(%v)", w.Op(), FloatName(w.Rt()), int16(w.Imm()), w.Rs())
	case OP_BEQ:
		out = fmt.Sprintf("%v %v, %v, %d", w.Op(), w.Rs(), w.Rt(), int16(w.Imm()))
	case OP_J, OP_JAL:
		out = fmt.Sprintf("%v 0x%07x", w.Op(), w.Target())
	default:
		out = fmt.Sprintf(".word 0x%08x", uint32(w))
	}

	return
}
