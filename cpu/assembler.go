// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/mipsim/internal"
)

// Rule is the encoding rule of a mnemonic.
type Rule int

//go:generate go tool stringer -linecomment -type=Rule
const (
	RULE_R3     = Rule(0)  // rd,rs,rt
	RULE_R2     = Rule(1)  // rs,rt
	RULE_RD     = Rule(2)  // rd
	RULE_RS     = Rule(3)  // rs
	RULE_NONE   = Rule(4)  // none
	RULE_ADDI   = Rule(5)  // rt,rs,imm
	RULE_LI     = Rule(6)  // rt,imm
	RULE_LUI    = Rule(7)  // rt,upper
	RULE_MOVE   = Rule(8)  // rd,rs
	RULE_BEQ    = Rule(9)  // rs,rt,label
	RULE_J      = Rule(10) // j
	RULE_JAL    = Rule(11) // jal
	RULE_MEM    = Rule(12) // rt,mem
	RULE_MEM_F  = Rule(13) // ft,mem
	RULE_LA     = Rule(14) // rt,symbol
	RULE_FLOAT3 = Rule(15) // fd,fs,ft
)

// Kind is the type of an instruction operand.
type Kind int

const (
	KIND_REG    = Kind(0) // General purpose register.
	KIND_FREG   = Kind(1) // Floating-point register.
	KIND_IMM    = Kind(2) // Immediate value.
	KIND_LABEL  = Kind(3) // Code label.
	KIND_MEM    = Kind(4) // offset(base), or a data symbol.
	KIND_SYMBOL = Kind(5) // Data symbol.
)

// Operand is a parsed and resolved instruction operand.
type Operand struct {
	Kind   Kind
	Reg    Reg   // Register, or the base register of a memory operand.
	Value  int64 // Immediate, memory offset, or resolved address.
	Symbol bool  // Memory operand names a data symbol at Value.
}

// Encoding describes how a mnemonic is assembled.
type Encoding struct {
	Rule  Rule
	Op    Op
	Funct Funct
}

// Mnemonics maps every supported mnemonic to its encoding.
var Mnemonics = map[string]Encoding{
	"add":     {RULE_R3, OP_RTYPE, FUNCT_ADD},
	"sub":     {RULE_R3, OP_RTYPE, FUNCT_SUB},
	"and":     {RULE_R3, OP_RTYPE, FUNCT_AND},
	"or":      {RULE_R3, OP_RTYPE, FUNCT_OR},
	"slt":     {RULE_R3, OP_RTYPE, FUNCT_SLT},
	"mult":    {RULE_R2, OP_RTYPE, FUNCT_MULT},
	"div":     {RULE_R2, OP_RTYPE, FUNCT_DIV},
	"mflo":    {RULE_RD, OP_RTYPE, FUNCT_MFLO},
	"mfhi":    {RULE_RD, OP_RTYPE, FUNCT_MFHI},
	"jr":      {RULE_RS, OP_RTYPE, FUNCT_JR},
	"syscall": {RULE_NONE, OP_RTYPE, FUNCT_SYSCALL},
	"addi":    {RULE_ADDI, OP_ADDI, 0},
	"li":      {RULE_LI, OP_ADDI, 0},
	"lui":     {RULE_LUI, OP_LUI, 0},
	"move":    {RULE_MOVE, OP_RTYPE, FUNCT_ADD},
	"beq":     {RULE_BEQ, OP_BEQ, 0},
	"j":       {RULE_J, OP_J, 0},
	"jal":     {RULE_JAL, OP_JAL, 0},
	"lw":      {RULE_MEM, OP_LW, 0},
	"sw":      {RULE_MEM, OP_SW, 0},
	"lwc1":    {RULE_MEM_F, OP_LWC1, 0},
	"swc1":    {RULE_MEM_F, OP_SWC1, 0},
	"la":      {RULE_LA, OP_ADDI, 0},
	"add.s":   {RULE_FLOAT3, OP_RTYPE, FUNCT_ADD_S},
}

// ruleOperands is the operand signature of each rule.
var ruleOperands = map[Rule][]Kind{
	RULE_R3:     {KIND_REG, KIND_REG, KIND_REG},
	RULE_R2:     {KIND_REG, KIND_REG},
	RULE_RD:     {KIND_REG},
	RULE_RS:     {KIND_REG},
	RULE_NONE:   {},
	RULE_ADDI:   {KIND_REG, KIND_REG, KIND_IMM},
	RULE_LI:     {KIND_REG, KIND_IMM},
	RULE_LUI:    {KIND_REG, KIND_IMM},
	RULE_MOVE:   {KIND_REG, KIND_REG},
	RULE_BEQ:    {KIND_REG, KIND_REG, KIND_LABEL},
	RULE_J:      {KIND_LABEL},
	RULE_JAL:    {KIND_LABEL},
	RULE_MEM:    {KIND_REG, KIND_MEM},
	RULE_MEM_F:  {KIND_FREG, KIND_MEM},
	RULE_LA:     {KIND_REG, KIND_SYMBOL},
	RULE_FLOAT3: {KIND_FREG, KIND_FREG, KIND_FREG},
}

// encoder turns resolved operands into machine words.
type encoder func(enc Encoding, pc uint32, ops []Operand) ([]Word, error)

var ruleEncoder = map[Rule]encoder{
	RULE_R3: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		return []Word{MakeR(ops[1].Reg, ops[2].Reg, ops[0].Reg, 0, enc.Funct)}, nil
	},
	RULE_R2: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		return []Word{MakeR(ops[0].Reg, ops[1].Reg, REG_ZERO, 0, enc.Funct)}, nil
	},
	RULE_RD: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		return []Word{MakeR(REG_ZERO, REG_ZERO, ops[0].Reg, 0, enc.Funct)}, nil
	},
	RULE_RS: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		return []Word{MakeR(ops[0].Reg, REG_ZERO, REG_ZERO, 0, enc.Funct)}, nil
	},
	RULE_NONE: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		return []Word{MakeR(REG_ZERO, REG_ZERO, REG_ZERO, 0, enc.Funct)}, nil
	},
	RULE_ADDI: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		imm, err := imm16(ops[2].Value)
		return []Word{MakeI(enc.Op, ops[1].Reg, ops[0].Reg, imm)}, err
	},
	RULE_LI: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		imm, err := imm16(ops[1].Value)
		return []Word{MakeI(enc.Op, REG_ZERO, ops[0].Reg, imm)}, err
	},
	RULE_LUI: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		imm, err := imm16(ops[1].Value)
		return []Word{MakeI(enc.Op, REG_ZERO, ops[0].Reg, imm)}, err
	},
	RULE_MOVE: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		return []Word{MakeR(ops[1].Reg, REG_ZERO, ops[0].Reg, 0, enc.Funct)}, nil
	},
	RULE_BEQ: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		offset := (ops[2].Value-int64(pc))/WORD_SIZE - 1
		if offset < -0x8000 || offset > 0x7fff {
			return nil, ErrBranchRange
		}
		return []Word{MakeI(enc.Op, ops[0].Reg, ops[1].Reg, uint16(int16(offset)))}, nil
	},
	RULE_J: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		label := uint32(ops[0].Value)
		if label>>28 != (pc+WORD_SIZE)>>28 {
			return nil, ErrJumpRange
		}
		target := ((label & 0x0fff_ffff) >> 2) | (((pc + WORD_SIZE) & 0xf000_0000) >> 28)
		return []Word{MakeJ(enc.Op, target)}, nil
	},
	RULE_JAL: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		target := uint32(ops[0].Value) / WORD_SIZE
		if target > 0x03ff_ffff {
			return nil, ErrJumpRange
		}
		return []Word{MakeJ(enc.Op, target)}, nil
	},
	RULE_MEM:   encodeMemory,
	RULE_MEM_F: encodeMemory,
	RULE_LA: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		rd := ops[0].Reg
		return withUpper(enc.Op, rd, rd, uint32(ops[1].Value)), nil
	},
	RULE_FLOAT3: func(enc Encoding, pc uint32, ops []Operand) ([]Word, error) {
		return []Word{MakeR(ops[1].Reg, ops[2].Reg, ops[0].Reg, 0, enc.Funct)}, nil
	},
}

// encodeMemory encodes a load or store. A symbol operand is reached
// through $at; an offset(base) operand is a single word.
func encodeMemory(enc Encoding, pc uint32, ops []Operand) (codes []Word, err error) {
	rt := ops[0].Reg
	mem := ops[1]

	if mem.Symbol {
		codes = withUpper(enc.Op, REG_AT, rt, uint32(mem.Value))
		return
	}

	if mem.Value < -0x8000 || mem.Value > 0x7fff {
		err = ErrOffsetRange
		return
	}

	codes = []Word{MakeI(enc.Op, mem.Reg, rt, uint16(int16(mem.Value)))}
	return
}

// withUpper emits the two word sequence that reaches a full 32-bit
// address: lui loads the upper half into base, then op applies the
// lower half as its immediate relative to base.
func withUpper(op Op, base Reg, rt Reg, addr uint32) []Word {
	return []Word{
		MakeI(OP_LUI, REG_ZERO, base, uint16(addr>>16)),
		MakeI(op, base, rt, uint16(addr&0xffff)),
	}
}

// imm16 checks that a value can be encoded as a 16-bit immediate, either
// signed or unsigned.
func imm16(value int64) (imm uint16, err error) {
	if value < -0x8000 || value > 0xffff {
		err = ErrImmediateRange
		return
	}

	imm = uint16(value)
	return
}

// Line is a single instruction of source text at its program counter.
type Line struct {
	LineNo int    // Source line number.
	Text   string // Instruction text, without label or comment.
	Pc     uint32 // Address of the first word of the instruction.
}

// Assembler translates instruction lines into machine words.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	Symbol map[string]uint32 // Map of data symbols to addresses.
	Label  map[string]uint32 // Map of code labels to addresses.
}

var reExpression = regexp.MustCompile(`\$\([^\$]*\)`)

// splitWords splits an instruction into its mnemonic and operand words.
func splitWords(text string) (words []string) {
	text, _, _ = strings.Cut(text, "#")
	words = strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return
}

// Size returns the number of bytes an instruction line assembles to,
// without resolving any of its operands.
func Size(text string) (size uint32, err error) {
	words := splitWords(reExpression.ReplaceAllString(text, "0"))
	if len(words) == 0 {
		return
	}

	enc, ok := Mnemonics[words[0]]
	if !ok {
		err = ErrMnemonic(words[0])
		return
	}

	size = WORD_SIZE
	switch enc.Rule {
	case RULE_LA:
		size = 2 * WORD_SIZE
	case RULE_MEM, RULE_MEM_F:
		if len(words) > 2 && isSymbol(words[2]) {
			size = 2 * WORD_SIZE
		}
	}

	return
}

// isSymbol reports whether a memory operand names a data symbol.
func isSymbol(word string) bool {
	if strings.Contains(word, "(") {
		return false
	}

	_, err := strconv.ParseInt(word, 0, 64)
	return err != nil
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, addr := range internal.Concat2(maps.All(asm.Symbol), maps.All(asm.Label)) {
		pred[key] = starlark.MakeUint(uint(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// valueOf returns the value of a number or $(expr) result.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// operand parses and resolves a single operand word.
func (asm *Assembler) operand(kind Kind, word string) (op Operand, err error) {
	op.Kind = kind

	switch kind {
	case KIND_REG:
		op.Reg, err = ParseReg(word)
	case KIND_FREG:
		op.Reg, err = ParseFloatReg(word)
	case KIND_IMM:
		op.Value, err = asm.valueOf(word)
	case KIND_LABEL:
		addr, ok := asm.Label[word]
		if ok {
			op.Value = int64(addr)
			return
		}
		op.Value, err = asm.valueOf(word)
		if err != nil {
			err = ErrLabelMissing(word)
		}
	case KIND_SYMBOL:
		addr, ok := asm.Symbol[word]
		if !ok {
			addr, ok = asm.Label[word]
		}
		if !ok {
			err = ErrSymbolMissing(word)
			return
		}
		op.Value = int64(addr)
	case KIND_MEM:
		offset, base, found := strings.Cut(word, "(")
		if found {
			var ok bool
			base, ok = strings.CutSuffix(base, ")")
			if !ok {
				err = ErrOperandInvalid
				return
			}
			op.Reg, err = ParseReg(base)
			if err != nil {
				return
			}
			if len(offset) > 0 {
				op.Value, err = asm.valueOf(offset)
			}
			return
		}
		if !isSymbol(word) {
			op.Reg = REG_ZERO
			op.Value, err = asm.valueOf(word)
			return
		}
		addr, ok := asm.Symbol[word]
		if !ok {
			err = ErrSymbolMissing(word)
			return
		}
		op.Value = int64(addr)
		op.Symbol = true
	default:
		err = ErrOperandInvalid
	}

	return
}

// Encode assembles a single instruction at pc into one or two words.
// An empty line assembles to no words.
func (asm *Assembler) Encode(text string, pc uint32) (codes []Word, words []string, err error) {
	text = reExpression.ReplaceAllStringFunc(text, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(text)
	if len(words) == 0 {
		return
	}

	enc, ok := Mnemonics[words[0]]
	if !ok {
		err = ErrMnemonic(words[0])
		return
	}

	kinds := ruleOperands[enc.Rule]
	args := words[1:]
	if len(args) != len(kinds) {
		err = ErrOperandCount
		return
	}

	ops := make([]Operand, len(kinds))
	for n, kind := range kinds {
		ops[n], err = asm.operand(kind, args[n])
		if err != nil {
			return
		}
	}

	codes, err = ruleEncoder[enc.Rule](enc, pc, ops)
	if err != nil {
		codes = nil
		return
	}

	if asm.Verbose {
		for n, code := range codes {
			log.Printf("%04x: %08x %v", pc+uint32(n)*WORD_SIZE, uint32(code), code)
		}
	}

	return
}

// Assemble encodes instruction lines, in program counter order, into a
// Program. Any error stops assembly; no partial program is returned.
func (asm *Assembler) Assemble(lines []Line) (prog *Program, err error) {
	var line Line

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: line.LineNo, Line: line.Text, Err: err}
			prog = nil
		}
	}()

	asm.Opcode = asm.Opcode[:0]

	var pc uint32
	for n := range lines {
		line = lines[n]

		if n > 0 && line.Pc != pc {
			err = ErrPcMismatch
			return
		}
		pc = line.Pc

		if asm.Verbose {
			log.Printf("%v: %v\n", line.LineNo, line.Text)
		}

		var codes []Word
		var words []string
		codes, words, err = asm.Encode(line.Text, line.Pc)
		if err != nil {
			return
		}

		if len(codes) == 0 {
			continue
		}

		asm.Opcode = append(asm.Opcode, Opcode{LineNo: line.LineNo, Pc: line.Pc, Words: words, Codes: codes})
		pc += uint32(len(codes)) * WORD_SIZE
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}
