// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"log"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/ezrec/mipsim/cache"
)

// State is the run state of the CPU.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
)

// Halt is the reason the CPU stopped.
type Halt int

//go:generate go tool stringer -linecomment -type=Halt
const (
	HALT_NONE  = Halt(0) // none
	HALT_EXIT  = Halt(1) // exit
	HALT_END   = Halt(2) // end
	HALT_FAULT = Halt(3) // fault
)

// Mode selects between the reference datapath arithmetic and canonical MIPS.
//
// In MODE_REFERENCE a taken branch sets PC to PC + (offset << 2), ALU
// immediates are zero extended, and jr always returns to $ra.
// In MODE_CANONICAL a taken branch sets PC to PC + 4 + (offset << 2), ALU
// immediates are sign extended, and jr jumps to its rs register.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_REFERENCE = Mode(0) // reference
	MODE_CANONICAL = Mode(1) // canonical
)

// ParseMode returns the mode for its name.
func ParseMode(name string) (mode Mode, err error) {
	for _, mode = range []Mode{MODE_REFERENCE, MODE_CANONICAL} {
		if mode.String() == name {
			return
		}
	}

	err = fmt.Errorf("%w: %q", ErrModeInvalid, name)
	return
}

// Syscall numbers.
const (
	SYSCALL_PRINT_INT = 1
	SYSCALL_EXIT      = 10
)

// CACHE_CAPACITY is the default capacity of each cache.
const CACHE_CAPACITY = 12

// HookPosRetire is the hook position invoked after every retired instruction.
var HookPosRetire = &sim.HookPos{Name: "Cpu Retire"}

// Retire is the hook item for a retired instruction.
type Retire struct {
	Pc      uint32  // Address of the instruction.
	Word    Word    // Instruction word.
	Control Control // Control signals used.
	NextPc  uint32  // Program counter after the instruction.
}

// Console receives syscall output.
type Console interface {
	PrintInt(value int32) error
}

// Cpu is the simulation context for the processor.
type Cpu struct {
	*sim.HookableBase

	Verbose bool // Set to enable verbose logging.

	Pc       uint32            // Current program counter.
	Register [REG_COUNT]uint32 // General purpose registers.
	Float    [REG_COUNT]uint32 // Floating-point registers.
	Hi       uint32            // Multiply/divide high result.
	Lo       uint32            // Multiply/divide low result.

	Memory *Memory      // Backing memory.
	ICache *cache.Cache // Instruction cache.
	DCache *cache.Cache // Data cache.

	State State // Current run state.
	Halt  Halt  // Reason for STATE_HALTED.
	Ticks int   // Retired instruction counter.

	Mode     Mode // Datapath arithmetic.
	HardZero bool // Discard writes to $zero.

	start   uint32
	limit   uint32
	console Console
}

// Option configures a new Cpu.
type Option func(*Cpu)

// WithMode selects the datapath arithmetic.
func WithMode(mode Mode) Option {
	return func(cpu *Cpu) { cpu.Mode = mode }
}

// WithHardZero discards writes to $zero when set.
func WithHardZero(hard bool) Option {
	return func(cpu *Cpu) { cpu.HardZero = hard }
}

// WithConsole sets the destination of syscall output.
func WithConsole(console Console) Option {
	return func(cpu *Cpu) { cpu.console = console }
}

// WithMemory replaces the default memory.
func WithMemory(mem *Memory) Option {
	return func(cpu *Cpu) { cpu.Memory = mem }
}

// WithICache replaces the default instruction cache.
func WithICache(c *cache.Cache) Option {
	return func(cpu *Cpu) { cpu.ICache = c }
}

// WithDCache replaces the default data cache.
func WithDCache(c *cache.Cache) Option {
	return func(cpu *Cpu) { cpu.DCache = c }
}

// WithTextStart sets the reset program counter.
func WithTextStart(pc uint32) Option {
	return func(cpu *Cpu) { cpu.start = pc }
}

// NewCpu creates a new CPU with MEMORY_SIZE bytes of memory and two
// caches of CACHE_CAPACITY entries, modified by the options.
func NewCpu(opts ...Option) (cpu *Cpu) {
	cpu = &Cpu{
		HookableBase: sim.NewHookableBase(),
		Memory:       NewMemory(MEMORY_SIZE),
		ICache:       cache.New("icache", CACHE_CAPACITY),
		DCache:       cache.New("dcache", CACHE_CAPACITY),
		start:        TEXT_START,
	}

	for _, opt := range opts {
		opt(cpu)
	}

	cpu.limit = cpu.start
	cpu.Pc = cpu.start

	return
}

// Load stores a program into memory and marks its end as the point
// where execution completes.
func (cpu *Cpu) Load(prog *Program) (err error) {
	err = prog.Store(cpu.Memory)
	if err != nil {
		return
	}

	start, limit := prog.Span()
	if len(prog.Opcodes) == 0 {
		start, limit = cpu.start, cpu.start
	}
	if start != cpu.start {
		err = fmt.Errorf("%w: starts at 0x%04x, not 0x%04x", ErrPcMismatch, start, cpu.start)
		return
	}

	cpu.limit = limit

	return
}

// Reset the CPU state.
// - Clears the registers.
// - Empties both caches.
// - Sets the program counter to the start of the text segment.
// Memory is left untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Float[:])
	cpu.Hi = 0
	cpu.Lo = 0
	cpu.ICache.Reset()
	cpu.DCache.Reset()
	cpu.Pc = cpu.start
	cpu.State = STATE_RUNNING
	cpu.Halt = HALT_NONE
	cpu.Ticks = 0
}

// Registers returns a copy of the general purpose registers.
func (cpu *Cpu) Registers() [REG_COUNT]uint32 {
	return cpu.Register
}

// Last returns the address of the last instruction; ok is false when no
// program is loaded.
func (cpu *Cpu) Last() (pc uint32, ok bool) {
	if cpu.limit < cpu.start+WORD_SIZE {
		return
	}

	pc = cpu.limit - WORD_SIZE
	ok = true
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%5s: %04x_%04x\n", "pc", cpu.Pc>>16, cpu.Pc&0xffff)
	fmt.Fprintf(&sb, "%5s: %v\n", "state", cpu.State)
	for n, val := range cpu.Register {
		fmt.Fprintf(&sb, "%5s: %04X_%04X %d\n", Reg(n), val>>16, val&0xffff, int32(val))
	}
	fmt.Fprintf(&sb, "%5s: %04X_%04X\n", "hi", cpu.Hi>>16, cpu.Hi&0xffff)
	fmt.Fprintf(&sb, "%5s: %04X_%04X\n", "lo", cpu.Lo>>16, cpu.Lo&0xffff)

	text = sb.String()
	return
}

func (cpu *Cpu) halt(reason Halt) {
	if cpu.Verbose {
		log.Printf("cpu: halt %v at 0x%04x", reason, cpu.Pc)
	}

	cpu.State = STATE_HALTED
	cpu.Halt = reason
}

// fetch returns the word at pc, through the instruction cache.
func (cpu *Cpu) fetch(pc uint32) (code Word, err error) {
	value, ok := cpu.ICache.Get(pc)
	if !ok {
		value, err = cpu.Memory.Read32(pc)
		if err != nil {
			return
		}
		cpu.ICache.Put(pc, value)
	}

	code = Word(value)
	return
}

// load returns the data word at addr, through the data cache.
func (cpu *Cpu) load(addr uint32) (value uint32, err error) {
	value, ok := cpu.DCache.Get(addr)
	if ok {
		return
	}

	value, err = cpu.Memory.Read32(addr)
	if err != nil {
		return
	}
	cpu.DCache.Put(addr, value)

	return
}

// store writes the data word to memory, then updates the data cache.
func (cpu *Cpu) store(addr uint32, value uint32) (err error) {
	err = cpu.Memory.Write32(addr, value)
	if err != nil {
		return
	}
	cpu.DCache.Put(addr, value)

	return
}

func (cpu *Cpu) setRegister(reg Reg, value uint32) {
	if reg == REG_ZERO && cpu.HardZero {
		return
	}

	cpu.Register[reg] = value
}

// Tick executes a single instruction cycle. Running past the last
// instruction halts the CPU without error; any fault halts the CPU and is
// returned as an *ErrFault.
func (cpu *Cpu) Tick() (err error) {
	if cpu.State == STATE_HALTED {
		err = ErrHalted
		return
	}

	if last, ok := cpu.Last(); !ok || cpu.Pc > last {
		cpu.halt(HALT_END)
		return
	}

	pc := cpu.Pc
	var code Word

	defer func() {
		if err != nil {
			cpu.halt(HALT_FAULT)
			err = &ErrFault{Pc: pc, Word: code, Err: err}
		}
	}()

	code, err = cpu.fetch(pc)
	if err != nil {
		return
	}

	ctl, err := Decode(code.Op(), code.Funct())
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %08x %-24v %v", pc, uint32(code), code, ctl)
	}

	err = cpu.Execute(code, ctl)
	if err != nil {
		return
	}

	cpu.Ticks++

	if cpu.NumHooks() > 0 {
		cpu.InvokeHook(sim.HookCtx{
			Domain: cpu,
			Pos:    HookPosRetire,
			Item:   Retire{Pc: pc, Word: code, Control: ctl, NextPc: cpu.Pc},
		})
	}

	return
}

// Execute executes a single decoded instruction at the current program counter.
func (cpu *Cpu) Execute(code Word, ctl Control) (err error) {
	rs := code.Rs()
	rt := code.Rt()
	rd := rt
	if ctl.RegDst {
		rd = code.Rd()
	}

	a := cpu.Register[rs]
	b := cpu.Register[rt]
	if ctl.AluSrc {
		b = uint32(code.Imm())
		if cpu.Mode == MODE_CANONICAL {
			b = code.SignImm()
		}
	}

	result, err := Alu(ctl.AluOp, code.Funct(), a, b)
	if err != nil {
		return
	}

	addr := a + code.SignImm()

	if ctl.WriteMem {
		err = cpu.store(addr, cpu.Register[rt])
		if err != nil {
			return
		}
		cpu.Pc += WORD_SIZE
		return
	}

	var loaded uint32
	if ctl.ReadMem {
		loaded, err = cpu.load(addr)
		if err != nil {
			return
		}
	}

	if ctl.WriteReg && !ctl.Jump {
		if ctl.MemToReg {
			cpu.setRegister(rd, loaded)
		} else {
			cpu.setRegister(rd, result)
		}
	}

	switch {
	case ctl.Branch && result == 0:
		offset := code.SignImm() << 2
		if cpu.Mode == MODE_CANONICAL {
			offset += WORD_SIZE
		}
		cpu.Pc += offset
	case ctl.Jump:
		cpu.Pc += WORD_SIZE
		if ctl.WriteReg {
			cpu.setRegister(REG_RA, cpu.Pc)
		}
		target := (cpu.Pc & 0xf000_0000) | (code.Target() << 2)
		if ctl.RegDst {
			target = cpu.Register[REG_RA]
			if cpu.Mode == MODE_CANONICAL {
				target = cpu.Register[rs]
			}
		}
		if ctl.WriteReg && cpu.Mode == MODE_REFERENCE {
			target = code.Target() << 2
		}
		cpu.Pc = target
	default:
		cpu.Pc += WORD_SIZE
	}

	if code.Op() == OP_RTYPE && code.Funct() == FUNCT_SYSCALL {
		err = cpu.syscall()
	}

	return
}

// syscall dispatches on $v0.
func (cpu *Cpu) syscall() (err error) {
	number := cpu.Register[REG_V0]

	switch number {
	case SYSCALL_PRINT_INT:
		if cpu.console == nil {
			err = ErrConsole
			return
		}
		err = cpu.console.PrintInt(int32(cpu.Register[REG_A0]))
	case SYSCALL_EXIT:
		cpu.halt(HALT_EXIT)
	default:
		err = ErrSyscall(number)
	}

	return
}
