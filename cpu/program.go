// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated instructions.
type Opcode struct {
	LineNo int      // Source line number.
	Pc     uint32   // Address of the first generated word.
	Words  []string // Source words: mnemonic then operands.
	Codes  []Word   // Generated machine words.
}

// Program is an assembled listing, in program counter order.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode holding the word at pc.
func (prog *Program) Debug(pc uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if pc >= op.Pc && pc < op.Pc+uint32(len(op.Codes))*WORD_SIZE {
			index := int(pc-op.Pc) / WORD_SIZE
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  index,
			}
			break
		}
	}

	return
}

// Span returns the address of the first word, and the address just past
// the last word, of the program.
func (prog *Program) Span() (start, limit uint32) {
	if len(prog.Opcodes) == 0 {
		return
	}

	start = prog.Opcodes[0].Pc
	last := prog.Opcodes[len(prog.Opcodes)-1]
	limit = last.Pc + uint32(len(last.Codes))*WORD_SIZE

	return
}

// Binary returns the machine words in program counter order.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, uint32(code))
	}

	return
}

// Codes iterates over every machine word and its address.
func (prog *Program) Codes() iter.Seq2[uint32, Word] {
	return func(yield func(pc uint32, code Word) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Pc+uint32(n)*WORD_SIZE, code) {
					return
				}
			}
		}
	}
}

// Store writes every machine word into memory at its address.
func (prog *Program) Store(mem *Memory) (err error) {
	for pc, code := range prog.Codes() {
		err = mem.Write32(pc, uint32(code))
		if err != nil {
			return
		}
	}

	return
}
