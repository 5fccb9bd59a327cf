// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op     AluOp
		funct  Funct
		a, b   uint32
		result uint32
	}){
		{ALU_OP_ADD, 0, 5, 7, 12},
		{ALU_OP_ADD, 0, 0xffff_ffff, 2, 1},
		{ALU_OP_SUB, 0, 5, 5, 0},
		{ALU_OP_SUB, 0, 0, 1, 0xffff_ffff},
		{ALU_OP_UPPER, 0, 0xdead, 0x1234, 0x1234_0000},
		{ALU_OP_RTYPE, FUNCT_ADD, 0x7fff_ffff, 1, 0x8000_0000},
		{ALU_OP_RTYPE, FUNCT_SUB, 3, 5, 0xffff_fffe},
		{ALU_OP_RTYPE, FUNCT_AND, 0b1100, 0b1010, 0b1000},
		{ALU_OP_RTYPE, FUNCT_OR, 0b1100, 0b1010, 0b1110},
		{ALU_OP_RTYPE, FUNCT_SLT, 0xffff_ffff, 0, 1},
		{ALU_OP_RTYPE, FUNCT_SLT, 0, 0xffff_ffff, 0},
		{ALU_OP_RTYPE, FUNCT_SLT, 3, 3, 0},
		{ALU_OP_RTYPE, FUNCT_JR, 3, 3, 0},
		{ALU_OP_RTYPE, FUNCT_SYSCALL, 3, 3, 0},
	}

	for _, entry := range table {
		result, err := Alu(entry.op, entry.funct, entry.a, entry.b)
		assert.NoError(err, entry)
		assert.Equal(entry.result, result, entry)
	}
}

func TestAluErrors(t *testing.T) {
	assert := assert.New(t)

	for _, funct := range []Funct{FUNCT_MULT, FUNCT_DIV, FUNCT_MFHI, FUNCT_MFLO, FUNCT_ADD_S} {
		_, err := Alu(ALU_OP_RTYPE, funct, 1, 2)
		assert.ErrorIs(err, ErrFunct(funct), funct)
	}

	_, err := Alu(AluOp(7), 0, 1, 2)
	assert.ErrorIs(err, ErrAluOp)
}
