// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/mipsim/cache"
	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/emulator"
)

// report prints the machine state after a run.
type report struct {
	out   io.Writer
	tty   bool // Output is an interactive terminal.
	width int  // Words per memory dump row.
}

func newReport(out *os.File) (rep *report) {
	rep = &report{out: out, width: 4}

	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	rep.tty = true
	if cols, _, err := term.GetSize(fd); err == nil && cols >= 100 {
		rep.width = 8
	}

	return
}

func (rep *report) heading(title string) {
	if rep.tty {
		fmt.Fprintf(rep.out, "\n\x1b[1m%v\x1b[0m\n", title)
	} else {
		fmt.Fprintf(rep.out, "\n-- %v --\n", title)
	}
}

// Listing prints every assembled word with its source line and the number
// of times the line was executed.
func (rep *report) Listing(emu *emulator.Emulator) {
	rep.heading("listing")

	for _, op := range emu.Program.Opcodes {
		for n, code := range op.Codes {
			source := ""
			count := ""
			if n == 0 {
				source = strings.Join(op.Words, " ")
				count = fmt.Sprintf("%d", emu.Executed(op.LineNo))
			}
			fmt.Fprintf(rep.out, "%4d %04x: %08x  %-24v %-24v %6v\n",
				op.LineNo, op.Pc+uint32(n)*cpu.WORD_SIZE, uint32(code), code, source, count)
		}
	}

	rep.heading("symbols")
	for name, addr := range emu.Names() {
		fmt.Fprintf(rep.out, "%04x %v\n", addr, name)
	}
}

// State prints the registers, the data segment and the cache statistics.
func (rep *report) State(emu *emulator.Emulator) {
	rep.heading("registers")
	fmt.Fprint(rep.out, emu.String())
	fmt.Fprintf(rep.out, "%5s: %v after %d instructions\n", "halt", emu.Halt, emu.Ticks())

	rep.heading("data")
	data := emu.Data()
	start := emu.Config.DataStart
	stride := rep.width * cpu.WORD_SIZE
	for row := 0; row < len(data); row += stride {
		fmt.Fprintf(rep.out, "%04x:", start+uint32(row))
		for col := row; col < row+stride && col+cpu.WORD_SIZE <= len(data); col += cpu.WORD_SIZE {
			fmt.Fprintf(rep.out, " %02x%02x%02x%02x", data[col], data[col+1], data[col+2], data[col+3])
		}
		fmt.Fprintln(rep.out)
	}

	rep.heading("caches")
	for _, c := range []*cache.Cache{emu.ICache, emu.DCache} {
		stats := c.Stats()
		fmt.Fprintf(rep.out, "%v: %d/%d entries, %d reads, %d writes, %d hits, %d misses, %d evictions\n",
			c.Name(), c.Len(), c.Capacity(), stats.Reads, stats.Writes, stats.Hits, stats.Misses, stats.Evictions)
	}
}
