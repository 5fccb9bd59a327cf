// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"io"
	"iter"
	"log"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/ezrec/mipsim/cache"
	"github.com/ezrec/mipsim/config"
	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/internal"
	mipsio "github.com/ezrec/mipsim/io"
	"github.com/ezrec/mipsim/loader"
)

// Emulator state. CPU + caches + memory + console.
type Emulator struct {
	Verbose  bool           // If set, enables verbose logging.
	*cpu.Cpu                // Reference to the CPU simulation.
	Program  *cpu.Program   // Reference to the currently running program listing.
	Source   *loader.Source // Data image, symbols and labels of the program.
	Config   *config.Config // Machine configuration.

	Console mipsio.Console // Syscall output.

	lines map[int]int // Retired instructions per source line.
}

// NewEmulator creates a new emulator for a machine configuration. A nil
// configuration selects config.Default().
func NewEmulator(cfg *config.Config) (emu *Emulator, err error) {
	if cfg == nil {
		cfg = config.Default()
	}

	err = cfg.Validate()
	if err != nil {
		return
	}

	mode, err := cfg.CpuMode()
	if err != nil {
		return
	}

	emu = &Emulator{
		Verbose: cfg.Verbose,
		Program: &cpu.Program{},
		Source:  &loader.Source{},
		Config:  cfg.Clone(),
		lines:   map[int]int{},
	}

	emu.Cpu = cpu.NewCpu(
		cpu.WithMode(mode),
		cpu.WithHardZero(cfg.HardZero),
		cpu.WithMemory(cpu.NewMemory(cfg.MemorySize)),
		cpu.WithICache(cache.New("icache", cfg.ICacheCapacity)),
		cpu.WithDCache(cache.New("dcache", cfg.DCacheCapacity)),
		cpu.WithTextStart(cfg.TextStart),
		cpu.WithConsole(&emu.Console),
	)

	emu.Cpu.AcceptHook(emu)
	emu.Cpu.ICache.AcceptHook(emu)
	emu.Cpu.DCache.AcceptHook(emu)

	return
}

// Func receives the CPU retire hook and the cache event hooks.
func (emu *Emulator) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case cpu.Retire:
		emu.lines[emu.lineOf(item.Pc)]++
	case cache.Access:
		if emu.Verbose {
			c := ctx.Domain.(*cache.Cache)
			log.Printf("%v: line %d: %v 0x%04x (freq %d)", c.Name(), emu.LineNo(), ctx.Pos.Name, item.Addr, item.Frequency)
		}
	}
}

// Load reads, lays out and assembles a program, then resets the emulator.
func (emu *Emulator) Load(r io.Reader) (err error) {
	cfg := emu.Config

	ld := &loader.Loader{
		Verbose:   emu.Verbose,
		DataStart: cfg.DataStart,
		DataLimit: cfg.DataLimit,
		TextStart: cfg.TextStart,
	}
	src, err := ld.Load(r)
	if err != nil {
		return
	}

	asm := &cpu.Assembler{
		Verbose: emu.Verbose,
		Symbol:  src.Symbol,
		Label:   src.Label,
	}
	prog, err := asm.Assemble(src.Lines)
	if err != nil {
		return
	}

	emu.Source = src
	emu.Program = prog

	err = emu.Reset()
	return
}

// Reset restores memory to the loaded data image and program, and resets
// the CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Memory.Reset()

	err = emu.Cpu.Memory.Load(emu.Config.DataStart, emu.Source.Data)
	if err != nil {
		return
	}

	err = emu.Cpu.Load(emu.Program)
	if err != nil {
		return
	}

	emu.Cpu.Reset()
	emu.Console.Rewind()
	clear(emu.lines)

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// lineOf returns the source line of the word at pc, or 0 if pc is
// outside of the program.
func (emu *Emulator) lineOf(pc uint32) int {
	dbg := emu.Program.Debug(pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.lineOf(emu.Cpu.Pc)
}

// Code returns the current instruction word, as loaded.
func (emu *Emulator) Code() cpu.Word {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Codes[dbg.Index]
}

// Executed returns the number of instructions retired from a source line
// since the last reset.
func (emu *Emulator) Executed(lineNo int) int {
	return emu.lines[lineNo]
}

// Symbols iterates over the data symbols in address order.
func (emu *Emulator) Symbols() iter.Seq2[string, uint32] {
	return internal.ByValue(emu.Source.Symbol)
}

// Labels iterates over the code labels in address order.
func (emu *Emulator) Labels() iter.Seq2[string, uint32] {
	return internal.ByValue(emu.Source.Label)
}

// Names iterates over symbols, then labels.
func (emu *Emulator) Names() iter.Seq2[string, uint32] {
	return internal.Concat2(emu.Symbols(), emu.Labels())
}

// Data returns a copy of the .data segment of memory.
func (emu *Emulator) Data() []byte {
	return emu.Cpu.Memory.Bytes()[emu.Config.DataStart:emu.Config.DataLimit]
}

// Tick performs a single instruction of the emulator. done is set once the
// CPU has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	if emu.Cpu.State == cpu.STATE_HALTED {
		done = true
		return
	}

	if limit := emu.Config.MaxTicks; limit > 0 && emu.Cpu.Ticks >= limit {
		err = ErrTickLimit
		return
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
	}
	if err != nil {
		return
	}

	done = emu.Cpu.State == cpu.STATE_HALTED
	return
}

// Run ticks the emulator until the CPU halts or faults.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
