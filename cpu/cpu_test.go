// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/stretchr/testify/assert"
)

type testConsole struct {
	ints []int32
}

func (tc *testConsole) PrintInt(value int32) error {
	tc.ints = append(tc.ints, value)
	return nil
}

type retireRecorder struct {
	retired []Retire
}

func (rr *retireRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos == HookPosRetire {
		rr.retired = append(rr.retired, ctx.Item.(Retire))
	}
}

// testCpu assembles newline separated instructions starting at TEXT_START
// and returns a reset CPU with the program loaded.
func testCpu(t *testing.T, asm *Assembler, text string, opts ...Option) (cpu *Cpu) {
	t.Helper()

	var lines []Line
	pc := uint32(TEXT_START)
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		size, err := Size(line)
		if err != nil {
			t.Fatal(err)
		}
		if size == 0 {
			continue
		}
		lines = append(lines, Line{LineNo: n + 1, Text: line, Pc: pc})
		pc += size
	}

	if asm == nil {
		asm = &Assembler{}
	}

	prog, err := asm.Assemble(lines)
	if err != nil {
		t.Fatal(err)
	}

	cpu = NewCpu(opts...)
	err = cpu.Load(prog)
	if err != nil {
		t.Fatal(err)
	}
	cpu.Reset()

	return
}

// testRun ticks the CPU until it halts.
func testRun(cpu *Cpu) (err error) {
	for range 1000 {
		if cpu.State == STATE_HALTED {
			return
		}
		err = cpu.Tick()
		if err != nil {
			return
		}
	}
	return
}

func TestCpuAddExit(t *testing.T) {
	assert := assert.New(t)

	cpu := testCpu(t, nil, `
		addi $t0, $zero, 5
		addi $t1, $zero, 7
		add $t2, $t0, $t1
		addi $v0, $zero, 10
		syscall
		addi $t3, $zero, 1
	`)

	err := testRun(cpu)
	assert.NoError(err)
	assert.Equal(uint32(12), cpu.Register[REG_T2])
	assert.Equal(uint32(0), cpu.Register[REG_T3])
	assert.Equal(STATE_HALTED, cpu.State)
	assert.Equal(HALT_EXIT, cpu.Halt)
	assert.Equal(5, cpu.Ticks)

	assert.ErrorIs(cpu.Tick(), ErrHalted)
}

func TestCpuAddWraps(t *testing.T) {
	assert := assert.New(t)

	cpu := testCpu(t, nil, `
		lui $t0, 0xffff
		addi $t0, $t0, 0xffff
		addi $t1, $zero, 2
		add $t2, $t0, $t1
		sub $t3, $zero, $t1
		slt $t4, $t3, $t1
		slt $t5, $t1, $t3
		and $t6, $t0, $t1
		or $t7, $t3, $t1
	`)

	err := testRun(cpu)
	assert.NoError(err)
	assert.Equal(HALT_END, cpu.Halt)
	assert.Equal(uint32(0xffff_ffff), cpu.Register[REG_T0])
	assert.Equal(uint32(1), cpu.Register[REG_T2])
	assert.Equal(uint32(0xffff_fffe), cpu.Register[REG_T3])
	assert.Equal(uint32(1), cpu.Register[REG_T4])
	assert.Equal(uint32(0), cpu.Register[REG_T5])
	assert.Equal(uint32(2), cpu.Register[REG_T6])
	assert.Equal(uint32(0xffff_fffe), cpu.Register[REG_T7])
}

func TestCpuImmediateExtension(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mode  Mode
		value int32
	}){
		{MODE_REFERENCE, 0xfffb},
		{MODE_CANONICAL, -5},
	}

	for _, entry := range table {
		console := &testConsole{}
		cpu := testCpu(t, nil, `
			li $v0, 1
			li $a0, -5
			syscall
		`, WithMode(entry.mode), WithConsole(console))

		err := testRun(cpu)
		assert.NoError(err, entry.mode)
		assert.Equal(HALT_END, cpu.Halt, entry.mode)
		assert.Equal([]int32{entry.value}, console.ints, entry.mode)
	}
}

func TestCpuBranch(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		Label: map[string]uint32{"done": 0x110},
	}

	program := `
		addi $t0, $zero, 1
		beq $t0, $t0, done
		addi $t1, $zero, 1
		addi $t2, $zero, 2
		addi $t3, $zero, 3
	`

	table := [](struct {
		mode Mode
		t1   uint32
		t2   uint32
	}){
		// Lands one instruction before the label.
		{MODE_REFERENCE, 0, 2},
		// Lands on the label.
		{MODE_CANONICAL, 0, 0},
	}

	for _, entry := range table {
		rr := &retireRecorder{}
		cpu := testCpu(t, asm, program, WithMode(entry.mode))
		cpu.AcceptHook(rr)

		err := testRun(cpu)
		assert.NoError(err, entry.mode)
		assert.Equal(entry.t1, cpu.Register[REG_T1], entry.mode)
		assert.Equal(entry.t2, cpu.Register[REG_T2], entry.mode)
		assert.Equal(uint32(3), cpu.Register[REG_T3], entry.mode)

		if assert.True(len(rr.retired) > 2, entry.mode) {
			beq := rr.retired[1]
			assert.Equal(uint32(0x104), beq.Pc)
			assert.Equal(OP_BEQ, beq.Word.Op())
			assert.True(beq.Control.Branch)
		}
	}
}

func TestCpuBranchNotTaken(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		Label: map[string]uint32{"done": 0x10c},
	}

	cpu := testCpu(t, asm, `
		addi $t0, $zero, 1
		beq $t0, $zero, done
		addi $t1, $zero, 1
		addi $t2, $zero, 2
	`)

	err := testRun(cpu)
	assert.NoError(err)
	assert.Equal(uint32(1), cpu.Register[REG_T1])
	assert.Equal(uint32(2), cpu.Register[REG_T2])
}

func TestCpuLoop(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		Label: map[string]uint32{"loop": 0x10c, "done": 0x118},
	}

	cpu := testCpu(t, asm, `
		addi $t0, $zero, 3
		addi $t1, $zero, 0
		addi $t2, $zero, 1
		beq $t0, $t1, done
		add $t1, $t1, $t2
		j loop
		addi $v0, $zero, 10
		syscall
	`, WithMode(MODE_CANONICAL))

	err := testRun(cpu)
	assert.NoError(err)
	assert.Equal(HALT_EXIT, cpu.Halt)
	assert.Equal(uint32(3), cpu.Register[REG_T1])
	assert.Equal(15, cpu.Ticks)

	stats := cpu.ICache.Stats()
	assert.Equal(uint64(8), stats.Misses)
	assert.Equal(uint64(7), stats.Hits)
	assert.Equal(uint64(0), stats.Evictions)
}

func TestCpuJumpAndLink(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		Label: map[string]uint32{"func": 0x110},
	}

	for _, mode := range []Mode{MODE_REFERENCE, MODE_CANONICAL} {
		cpu := testCpu(t, asm, `
			jal func
			addi $t1, $zero, 1
			addi $v0, $zero, 10
			syscall
			addi $t0, $zero, 7
			jr $ra
		`, WithMode(mode))

		assert.NoError(cpu.Tick(), mode)
		assert.Equal(uint32(0x110), cpu.Pc, mode)
		assert.Equal(uint32(0x104), cpu.Register[REG_RA], mode)

		err := testRun(cpu)
		assert.NoError(err, mode)
		assert.Equal(HALT_EXIT, cpu.Halt, mode)
		assert.Equal(uint32(7), cpu.Register[REG_T0], mode)
		assert.Equal(uint32(1), cpu.Register[REG_T1], mode)
	}
}

func TestCpuJumpRegister(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mode Mode
		pc   uint32
	}){
		{MODE_REFERENCE, 0x0},
		{MODE_CANONICAL, 0x10c},
	}

	for _, entry := range table {
		cpu := testCpu(t, nil, `
			addi $t0, $zero, 0x10c
			jr $t0
			addi $t1, $zero, 1
			addi $t2, $zero, 1
		`, WithMode(entry.mode))

		assert.NoError(cpu.Tick())
		assert.NoError(cpu.Tick())
		assert.Equal(entry.pc, cpu.Pc, entry.mode)
	}
}

func TestCpuMemory(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		Symbol: map[string]uint32{"var": 0x10},
	}

	cpu := testCpu(t, asm, `
		addi $t0, $zero, 42
		sw $t0, var
		lw $t1, var
		lw $t2, 0x10($zero)
		sw $t0, 4($at)
	`)

	err := testRun(cpu)
	assert.NoError(err)
	assert.Equal(uint32(42), cpu.Register[REG_T1])
	assert.Equal(uint32(42), cpu.Register[REG_T2])

	value, err := cpu.Memory.Read32(0x10)
	assert.NoError(err)
	assert.Equal(uint32(42), value)

	value, err = cpu.Memory.Read32(0x4)
	assert.NoError(err)
	assert.Equal(uint32(42), value)

	stats := cpu.DCache.Stats()
	assert.Equal(uint64(2), stats.Writes)
	assert.Equal(uint64(2), stats.Hits)
	assert.Equal(uint64(0), stats.Misses)

	freq, ok := cpu.DCache.Frequency(0x10)
	assert.True(ok)
	assert.Equal(3, freq)
}

func TestCpuLoadMiss(t *testing.T) {
	assert := assert.New(t)

	cpu := testCpu(t, nil, `
		lw $t0, 0x20($zero)
	`)
	assert.NoError(cpu.Memory.Write32(0x20, 0xdeadbeef))

	err := testRun(cpu)
	assert.NoError(err)
	assert.Equal(uint32(0xdeadbeef), cpu.Register[REG_T0])
	assert.Equal(uint64(1), cpu.DCache.Stats().Misses)

	value, ok := cpu.DCache.Get(0x20)
	assert.True(ok)
	assert.Equal(uint32(0xdeadbeef), value)
}

func TestCpuHardZero(t *testing.T) {
	assert := assert.New(t)

	program := `
		addi $zero, $zero, 5
		add $t0, $zero, $zero
	`

	cpu := testCpu(t, nil, program)
	assert.NoError(testRun(cpu))
	assert.Equal(uint32(5), cpu.Register[REG_ZERO])
	assert.Equal(uint32(10), cpu.Register[REG_T0])

	cpu = testCpu(t, nil, program, WithHardZero(true))
	assert.NoError(testRun(cpu))
	assert.Equal(uint32(0), cpu.Register[REG_ZERO])
	assert.Equal(uint32(0), cpu.Register[REG_T0])
}

func TestCpuFaults(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program string
		pc      uint32
		err     error
	}){
		{"mult", "addi $t0, $zero, 1\nmult $t0, $t0", 0x104, ErrFunct(0)},
		{"add.s", "add.s $f0, $f1, $f2", 0x100, ErrFunct(0)},
		{"lwc1", "lwc1 $f0, 0($zero)", 0x100, ErrOpcode(0)},
		{"syscall", "addi $v0, $zero, 99\nsyscall", 0x104, ErrSyscall(0)},
		{"console", "addi $v0, $zero, 1\nsyscall", 0x104, ErrConsole},
		{"address", "lw $t0, 0x7ff0($zero)", 0x100, ErrAddress(0)},
	}

	for _, entry := range table {
		cpu := testCpu(t, nil, entry.program)

		err := testRun(cpu)
		assert.ErrorIs(err, entry.err, entry.name)

		var fault *ErrFault
		if assert.True(errors.As(err, &fault), entry.name) {
			assert.Equal(entry.pc, fault.Pc, entry.name)
		}

		assert.Equal(STATE_HALTED, cpu.State, entry.name)
		assert.Equal(HALT_FAULT, cpu.Halt, entry.name)
		assert.ErrorIs(cpu.Tick(), ErrHalted, entry.name)
	}
}

func TestCpuEmpty(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Load(&Program{}))
	cpu.Reset()

	_, ok := cpu.Last()
	assert.False(ok)

	assert.NoError(cpu.Tick())
	assert.Equal(HALT_END, cpu.Halt)
	assert.Equal(0, cpu.Ticks)
}

func TestCpuLoadMismatch(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble([]Line{{LineNo: 1, Text: "syscall", Pc: 0x200}})
	assert.NoError(err)

	cpu := NewCpu()
	assert.ErrorIs(cpu.Load(prog), ErrPcMismatch)

	cpu = NewCpu(WithTextStart(0x200))
	assert.NoError(cpu.Load(prog))
	last, ok := cpu.Last()
	assert.True(ok)
	assert.Equal(uint32(0x200), last)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu := testCpu(t, nil, `
		addi $t0, $zero, 5
		sw $t0, 8($zero)
	`)

	assert.NoError(testRun(cpu))
	assert.Equal(2, cpu.Ticks)

	cpu.Reset()
	assert.Equal(uint32(TEXT_START), cpu.Pc)
	assert.Equal(STATE_RUNNING, cpu.State)
	assert.Equal(HALT_NONE, cpu.Halt)
	assert.Equal(0, cpu.Ticks)
	assert.Equal([REG_COUNT]uint32{}, cpu.Registers())
	assert.Equal(0, cpu.ICache.Len())
	assert.Equal(0, cpu.DCache.Len())

	value, err := cpu.Memory.Read32(8)
	assert.NoError(err)
	assert.Equal(uint32(5), value)
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[REG_T0] = 0xffff_ffff

	text := cpu.String()
	assert.Contains(text, "   pc: 0000_0100\n")
	assert.Contains(text, "  $t0: FFFF_FFFF -1\n")
}

func TestParseMode(t *testing.T) {
	assert := assert.New(t)

	mode, err := ParseMode("canonical")
	assert.NoError(err)
	assert.Equal(MODE_CANONICAL, mode)

	mode, err = ParseMode("reference")
	assert.NoError(err)
	assert.Equal(MODE_REFERENCE, mode)

	_, err = ParseMode("pipelined")
	assert.ErrorIs(err, ErrModeInvalid)
}
