// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package cpu implements the processor and assembler for a MIPS subset.
//
// The CPU is a single cycle datapath: 32 general-purpose registers, 32
// floating-point registers (encoded but not executed), HI/LO, a flat
// big-endian byte memory, and LFU instruction and data caches in front of
// that memory. Each Tick fetches one word, derives the control signals from
// its opcode and function code, runs the ALU, and resolves memory access,
// register write back, and the next program counter.
//
// The assembler translates one source line at a time into one or two machine
// words, expanding symbol operands into lui based sequences, and supports
// compile-time $(expr) expressions evaluated by starlark.
package cpu
