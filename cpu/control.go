// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
)

// AluOp is the 2-bit ALU operation class.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD   = AluOp(0b00) // add
	ALU_OP_SUB   = AluOp(0b01) // sub
	ALU_OP_RTYPE = AluOp(0b10) // rtype
	ALU_OP_UPPER = AluOp(0b11) // upper
)

// Control is the set of datapath signals for one instruction.
type Control struct {
	RegDst   bool  // Destination register is rd, not rt.
	WriteReg bool  // Write back to the destination register.
	AluSrc   bool  // Second ALU operand is the immediate.
	MemToReg bool  // Write back the loaded value, not the ALU result.
	WriteMem bool  // Store rt to memory.
	ReadMem  bool  // Load from memory.
	Branch   bool  // Branch when the ALU result is zero.
	Jump     bool  // Unconditional jump.
	AluOp    AluOp // ALU operation class.
}

// Decode derives the control signals for an opcode and function code.
// The function code is only consulted for R-format instructions.
func Decode(op Op, funct Funct) (ctl Control, err error) {
	switch op {
	case OP_RTYPE:
		ctl = Control{
			RegDst:   true,
			WriteReg: funct != FUNCT_JR && funct != FUNCT_SYSCALL,
			Jump:     funct == FUNCT_JR,
			AluOp:    ALU_OP_RTYPE,
		}
	case OP_LW:
		ctl = Control{AluSrc: true, ReadMem: true, MemToReg: true, WriteReg: true, AluOp: ALU_OP_ADD}
	case OP_SW:
		ctl = Control{AluSrc: true, WriteMem: true, AluOp: ALU_OP_ADD}
	case OP_BEQ:
		ctl = Control{Branch: true, AluOp: ALU_OP_SUB}
	case OP_ADDI:
		ctl = Control{AluSrc: true, WriteReg: true, AluOp: ALU_OP_ADD}
	case OP_LUI:
		ctl = Control{AluSrc: true, WriteReg: true, AluOp: ALU_OP_UPPER}
	case OP_J:
		ctl = Control{Jump: true}
	case OP_JAL:
		ctl = Control{Jump: true, WriteReg: true}
	default:
		err = ErrOpcode(op)
	}

	return
}

// String returns the signals as a compact flag list.
func (ctl Control) String() string {
	flag := func(set bool, name string) string {
		if set {
			return name
		}
		return "-"
	}

	return fmt.Sprintf("%v %v %v %v %v %v %v %v alu:%v",
		flag(ctl.RegDst, "rd"),
		flag(ctl.WriteReg, "wr"),
		flag(ctl.AluSrc, "imm"),
		flag(ctl.MemToReg, "m2r"),
		flag(ctl.WriteMem, "st"),
		flag(ctl.ReadMem, "ld"),
		flag(ctl.Branch, "br"),
		flag(ctl.Jump, "jmp"),
		ctl.AluOp,
	)
}
