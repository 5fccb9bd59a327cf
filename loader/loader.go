// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package loader reads MIPS assembly source into the inputs of the
// assembler: the initial .data image, the symbol and label tables, and the
// instruction lines with their program counters.
package loader

import (
	"bufio"
	"encoding/binary"
	"io"
	"log"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/ezrec/mipsim/cpu"
)

// Section is the source section being read.
type Section int

const (
	SECTION_TEXT = Section(0)
	SECTION_DATA = Section(1)
)

// Source is the result of loading an assembly file.
type Source struct {
	Data   []byte            // Initial .data image, starting at the data start address.
	Symbol map[string]uint32 // Data symbols.
	Label  map[string]uint32 // Code labels.
	Lines  []cpu.Line        // Instructions in program counter order.
}

// Loader splits assembly source into sections and lays out its data and
// instructions.
type Loader struct {
	Verbose bool // If set, logs every symbol, label and instruction placed.

	DataStart uint32 // Address of the first .data byte.
	DataLimit uint32 // Address just past the last usable .data byte.
	TextStart uint32 // Address of the first instruction.
}

// NewLoader returns a loader for the default memory layout.
func NewLoader() *Loader {
	return &Loader{
		DataStart: cpu.DATA_START,
		DataLimit: cpu.DATA_LIMIT,
		TextStart: cpu.TEXT_START,
	}
}

var reName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// stripComment removes a '#' comment that is not inside a string literal.
func stripComment(line string) string {
	quoted := false
	escaped := false
	for n, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == '#' && !quoted:
			return line[:n]
		}
	}

	return line
}

// cutLabel removes a leading "name:" from a line.
func cutLabel(line string) (name string, rest string, found bool) {
	head, tail, ok := strings.Cut(line, ":")
	if !ok {
		rest = line
		return
	}

	head = strings.TrimSpace(head)
	if strings.ContainsAny(head, " \t\"") || len(head) == 0 {
		rest = line
		return
	}

	name = head
	rest = strings.TrimSpace(tail)
	found = true
	return
}

// cutField splits the first whitespace separated field from a line.
func cutField(line string) (field string, rest string) {
	n := strings.IndexFunc(line, unicode.IsSpace)
	if n < 0 {
		field = line
		return
	}

	field = line[:n]
	rest = strings.TrimSpace(line[n:])
	return
}

// loadState is the working state of a single Load.
type loadState struct {
	*Loader
	src     *Source
	section Section
	data    uint32
	pc      uint32
	pending []string // Data symbols awaiting the address of their directive.
}

// Load reads assembly source. Any error is returned as a *cpu.ErrSyntax
// locating the offending line.
func (ld *Loader) Load(r io.Reader) (src *Source, err error) {
	state := &loadState{
		Loader: ld,
		src: &Source{
			Symbol: map[string]uint32{},
			Label:  map[string]uint32{},
		},
		data: ld.DataStart,
		pc:   ld.TextStart,
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		err = state.line(lineNo, text)
		if err != nil {
			err = &cpu.ErrSyntax{LineNo: lineNo, Line: strings.TrimSpace(text), Err: err}
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	state.bind()

	src = state.src
	return
}

// check verifies that name is valid and not yet defined.
func (ls *loadState) check(name string) (err error) {
	if !reName.MatchString(name) {
		err = ErrName(name)
		return
	}

	_, isSymbol := ls.src.Symbol[name]
	_, isLabel := ls.src.Label[name]
	if isSymbol || isLabel || slices.Contains(ls.pending, name) {
		err = ErrDuplicate(name)
		return
	}

	return
}

func (ls *loadState) define(table map[string]uint32, name string, addr uint32) {
	table[name] = addr

	if ls.Verbose {
		log.Printf("loader: %v = 0x%04x", name, addr)
	}
}

// label defines a code label at the current program counter, or holds a
// data symbol until the next data directive places its first byte.
func (ls *loadState) label(name string) (err error) {
	err = ls.check(name)
	if err != nil {
		return
	}

	if ls.section == SECTION_DATA {
		ls.pending = append(ls.pending, name)
		return
	}

	ls.define(ls.src.Label, name, ls.pc)
	return
}

// bind defines all held data symbols at the current data address.
func (ls *loadState) bind() {
	for _, name := range ls.pending {
		ls.define(ls.src.Symbol, name, ls.data)
	}
	ls.pending = ls.pending[:0]
}

func (ls *loadState) line(lineNo int, text string) (err error) {
	text = strings.TrimSpace(stripComment(text))

	for {
		name, rest, found := cutLabel(text)
		if !found {
			break
		}
		err = ls.label(name)
		if err != nil {
			return
		}
		text = rest
	}

	if len(text) == 0 {
		return
	}

	directive, args := cutField(text)

	switch directive {
	case ".data":
		ls.section = SECTION_DATA
		return
	case ".text":
		ls.bind()
		ls.section = SECTION_TEXT
		return
	case ".globl", ".global", ".ent", ".end":
		return
	}

	if ls.section == SECTION_DATA {
		err = ls.directive(directive, args)
		return
	}

	if strings.HasPrefix(directive, ".") {
		err = ErrDataDirective
		return
	}

	size, err := cpu.Size(text)
	if err != nil {
		return
	}

	if ls.Verbose {
		log.Printf("loader: %04x: %v", ls.pc, text)
	}

	ls.src.Lines = append(ls.src.Lines, cpu.Line{LineNo: lineNo, Text: text, Pc: ls.pc})
	ls.pc += size

	return
}

func (ls *loadState) align(size uint32) {
	ls.data = (ls.data + size - 1) &^ (size - 1)
}

// emit appends bytes to the data image at the current data address.
func (ls *loadState) emit(data []byte) (err error) {
	if uint64(ls.data)+uint64(len(data)) > uint64(ls.DataLimit) {
		err = ErrDataOverflow
		return
	}

	offset := int(ls.data - ls.DataStart)
	if need := offset + len(data); need > len(ls.src.Data) {
		ls.src.Data = append(ls.src.Data, make([]byte, need-len(ls.src.Data))...)
	}
	copy(ls.src.Data[offset:], data)
	ls.data += uint32(len(data))

	return
}

func (ls *loadState) directive(directive string, args string) (err error) {
	switch directive {
	case ".word", ".float":
		ls.align(cpu.WORD_SIZE)
	case ".align":
		var power uint64
		power, err = strconv.ParseUint(args, 0, 4)
		if err != nil {
			err = ErrValue(args)
			return
		}
		ls.align(1 << power)
	}

	ls.bind()

	switch directive {
	case ".word":
		return ls.words(args)
	case ".float":
		return ls.floats(args)
	case ".asciiz", ".ascii":
		var str string
		str, err = strconv.Unquote(args)
		if err != nil {
			err = ErrStringInvalid
			return
		}
		data := []byte(str)
		if directive == ".asciiz" {
			data = append(data, 0)
		}
		return ls.emit(data)
	case ".space":
		var size uint64
		size, err = strconv.ParseUint(args, 0, 16)
		if err != nil {
			err = ErrValue(args)
			return
		}
		return ls.emit(make([]byte, size))
	case ".align":
		return
	default:
		err = ErrDirective(directive)
	}

	return
}

func splitValues(args string) (values []string, err error) {
	values = strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(values) == 0 {
		err = ErrValueMissing
	}
	return
}

func (ls *loadState) words(args string) (err error) {
	values, err := splitValues(args)
	if err != nil {
		return
	}

	for _, word := range values {
		var value int64
		value, err = strconv.ParseInt(word, 0, 64)
		if err != nil || value < math.MinInt32 || value > math.MaxUint32 {
			err = ErrValue(word)
			return
		}
		err = ls.emit(binary.BigEndian.AppendUint32(nil, uint32(value)))
		if err != nil {
			return
		}
	}

	return
}

func (ls *loadState) floats(args string) (err error) {
	values, err := splitValues(args)
	if err != nil {
		return
	}

	for _, word := range values {
		var value float64
		value, err = strconv.ParseFloat(word, 32)
		if err != nil {
			err = ErrValue(word)
			return
		}
		err = ls.emit(binary.BigEndian.AppendUint32(nil, math.Float32bits(float32(value))))
		if err != nil {
			return
		}
	}

	return
}
