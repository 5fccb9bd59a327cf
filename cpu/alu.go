// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

// Alu performs the operation selected by the ALU class, consulting the
// function code for R-format dispatch.
func Alu(op AluOp, funct Funct, a, b uint32) (result uint32, err error) {
	switch op {
	case ALU_OP_ADD:
		result = a + b
	case ALU_OP_SUB:
		result = a - b
	case ALU_OP_UPPER:
		result = b << 16
	case ALU_OP_RTYPE:
		switch funct {
		case FUNCT_ADD:
			result = a + b
		case FUNCT_SUB:
			result = a - b
		case FUNCT_AND:
			result = a & b
		case FUNCT_OR:
			result = a | b
		case FUNCT_SLT:
			if int32(a) < int32(b) {
				result = 1
			}
		case FUNCT_JR, FUNCT_SYSCALL:
			result = 0
		default:
			err = ErrFunct(funct)
		}
	default:
		err = ErrAluOp
	}

	return
}
