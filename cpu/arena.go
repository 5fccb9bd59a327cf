// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

// Memory layout.
const (
	MEMORY_SIZE = 0x1000 // Size of the emulated memory, in bytes.
	DATA_START  = 0x0000 // First byte of the .data segment.
	DATA_LIMIT  = 0x00fc // First byte past the usable .data segment.
	TEXT_START  = 0x0100 // Address of the first instruction.
	WORD_SIZE   = 4      // Size of an instruction or data word, in bytes.
)
