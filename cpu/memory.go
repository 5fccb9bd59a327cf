// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"encoding/binary"
	"slices"
)

// Memory is a flat, byte addressable, big-endian memory.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of the given size in bytes.
func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// Reset zeros the memory.
func (mem *Memory) Reset() {
	clear(mem.data)
}

// Bytes returns a copy of the memory image.
func (mem *Memory) Bytes() []byte {
	return slices.Clone(mem.data)
}

func (mem *Memory) check(addr uint32, size int) (err error) {
	if uint64(addr)+uint64(size) > uint64(len(mem.data)) {
		err = ErrAddress(addr)
	}
	return
}

// Read32 reads the word at addr, most significant byte first.
func (mem *Memory) Read32(addr uint32) (value uint32, err error) {
	err = mem.check(addr, WORD_SIZE)
	if err != nil {
		return
	}

	value = binary.BigEndian.Uint32(mem.data[addr:])
	return
}

// Write32 writes the word at addr, most significant byte first.
func (mem *Memory) Write32(addr uint32, value uint32) (err error) {
	err = mem.check(addr, WORD_SIZE)
	if err != nil {
		return
	}

	binary.BigEndian.PutUint32(mem.data[addr:], value)
	return
}

// Load copies a block of bytes into memory at addr.
func (mem *Memory) Load(addr uint32, data []byte) (err error) {
	err = mem.check(addr, len(data))
	if err != nil {
		return
	}

	copy(mem.data[addr:], data)
	return
}
