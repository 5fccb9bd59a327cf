// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"

	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted      = errors.New(f("cpu halted"))
	ErrAluOp       = errors.New(f("alu operation class unknown"))
	ErrConsole     = errors.New(f("console missing"))
	ErrModeInvalid = errors.New(f("mode invalid"))

	// Assembler errors
	ErrOperandCount   = errors.New(f("operand count"))
	ErrOperandInvalid = errors.New(f("operand invalid"))
	ErrOffsetRange    = errors.New(f("offset out of 16-bit range"))
	ErrImmediateRange = errors.New(f("immediate out of 16-bit range"))
	ErrBranchRange    = errors.New(f("branch out of 16-bit range"))
	ErrJumpRange      = errors.New(f("jump target out of 26-bit range"))
	ErrPcMismatch     = errors.New(f("program counter mismatch"))
)

// ErrOpcode is an opcode with no control unit decoding.
type ErrOpcode Op

func (eo ErrOpcode) Error() string {
	return f("opcode 0b%06b unknown", uint32(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrFunct is an R-format function code the ALU cannot perform.
type ErrFunct Funct

func (ef ErrFunct) Error() string {
	return f("function code 0x%02x unknown", uint32(ef))
}

func (ef ErrFunct) Is(err error) (ok bool) {
	_, ok = err.(ErrFunct)
	return
}

// ErrSyscall is an unknown syscall number.
type ErrSyscall uint32

func (es ErrSyscall) Error() string {
	return f("syscall %d unknown", uint32(es))
}

func (es ErrSyscall) Is(err error) (ok bool) {
	_, ok = err.(ErrSyscall)
	return
}

// ErrAddress is a memory access outside of the memory.
type ErrAddress uint32

func (ea ErrAddress) Error() string {
	return f("address 0x%08x out of range", uint32(ea))
}

func (ea ErrAddress) Is(err error) (ok bool) {
	_, ok = err.(ErrAddress)
	return
}

// ErrFault locates an execution fault.
type ErrFault struct {
	Pc   uint32
	Word Word
	Err  error
}

func (err *ErrFault) Error() string {
	return f("pc 0x%04x [%08x] %v", err.Pc, uint32(err.Word), err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrMnemonic is an instruction the assembler does not know.
type ErrMnemonic string

func (em ErrMnemonic) Error() string {
	return f("instruction '%v' invalid", string(em))
}

// ErrRegister is an unknown register name.
type ErrRegister string

func (er ErrRegister) Error() string {
	return f("register '%v' invalid", string(er))
}

// ErrLabelMissing is a reference to an undefined code label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSymbolMissing is a reference to an undefined data symbol.
type ErrSymbolMissing string

func (es ErrSymbolMissing) Error() string {
	return f("symbol %v missing", string(es))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
