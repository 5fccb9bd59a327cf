// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"strconv"
	"strings"
)

// Reg is a register index.
type Reg uint32

//go:generate go tool stringer -linecomment -type=Reg
const (
	REG_ZERO = Reg(0)  // $zero
	REG_AT   = Reg(1)  // $at
	REG_V0   = Reg(2)  // $v0
	REG_V1   = Reg(3)  // $v1
	REG_A0   = Reg(4)  // $a0
	REG_A1   = Reg(5)  // $a1
	REG_A2   = Reg(6)  // $a2
	REG_A3   = Reg(7)  // $a3
	REG_T0   = Reg(8)  // $t0
	REG_T1   = Reg(9)  // $t1
	REG_T2   = Reg(10) // $t2
	REG_T3   = Reg(11) // $t3
	REG_T4   = Reg(12) // $t4
	REG_T5   = Reg(13) // $t5
	REG_T6   = Reg(14) // $t6
	REG_T7   = Reg(15) // $t7
	REG_S0   = Reg(16) // $s0
	REG_S1   = Reg(17) // $s1
	REG_S2   = Reg(18) // $s2
	REG_S3   = Reg(19) // $s3
	REG_S4   = Reg(20) // $s4
	REG_S5   = Reg(21) // $s5
	REG_S6   = Reg(22) // $s6
	REG_S7   = Reg(23) // $s7
	REG_T8   = Reg(24) // $t8
	REG_T9   = Reg(25) // $t9
	REG_K0   = Reg(26) // $k0
	REG_K1   = Reg(27) // $k1
	REG_GP   = Reg(28) // $gp
	REG_SP   = Reg(29) // $sp
	REG_FP   = Reg(30) // $fp
	REG_RA   = Reg(31) // $ra
)

// REG_COUNT is the size of each register bank.
const REG_COUNT = 32

var regMap map[string]Reg

func init() {
	regMap = make(map[string]Reg, REG_COUNT)
	for n := range Reg(REG_COUNT) {
		regMap[n.String()] = n
	}
}

// ParseReg returns the general purpose register for a name, either
// symbolic ($t0) or numeric ($8).
func ParseReg(name string) (reg Reg, err error) {
	reg, ok := regMap[name]
	if ok {
		return
	}

	reg, ok = parseNumbered(name, "$")
	if ok {
		return
	}

	err = ErrRegister(name)
	return
}

// ParseFloatReg returns the floating-point register for a name ($f0 or f0).
func ParseFloatReg(name string) (reg Reg, err error) {
	reg, ok := parseNumbered(strings.TrimPrefix(name, "$"), "f")
	if ok {
		return
	}

	err = ErrRegister(name)
	return
}

// FloatName returns the assembly name of a floating-point register.
func FloatName(reg Reg) string {
	return "$f" + strconv.Itoa(int(reg))
}

func parseNumbered(name string, prefix string) (reg Reg, ok bool) {
	digits, found := strings.CutPrefix(name, prefix)
	if !found || len(digits) == 0 {
		return
	}

	value, err := strconv.ParseUint(digits, 10, 8)
	if err != nil || value >= REG_COUNT {
		return
	}

	reg = Reg(value)
	ok = true
	return
}
