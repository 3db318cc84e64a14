package cpu

// CodeReg is a register operand, in instruction encoding order.
type CodeReg int

//go:generate go tool stringer -linecomment -type=CodeReg
const (
	REG_B = CodeReg(0) // B
	REG_C = CodeReg(1) // C
	REG_D = CodeReg(2) // D
	REG_E = CodeReg(3) // E
	REG_H = CodeReg(4) // H
	REG_L = CodeReg(5) // L
	REG_M = CodeReg(6) // M
	REG_A = CodeReg(7) // A
)

// CodePair is a register pair operand, in instruction encoding order.
type CodePair int

//go:generate go tool stringer -linecomment -type=CodePair
const (
	PAIR_BC  = CodePair(0) // B
	PAIR_DE  = CodePair(1) // D
	PAIR_HL  = CodePair(2) // H
	PAIR_SP  = CodePair(3) // SP
	PAIR_PSW = CodePair(4) // PSW
)

// Pair returns the 16-bit value of a register pair. The first register of
// the pair is the high byte.
func (cpu *Cpu) Pair(pair CodePair) (value uint16) {
	switch pair {
	case PAIR_BC:
		value = uint16(cpu.Register[REG_B])<<8 | uint16(cpu.Register[REG_C])
	case PAIR_DE:
		value = uint16(cpu.Register[REG_D])<<8 | uint16(cpu.Register[REG_E])
	case PAIR_HL:
		value = uint16(cpu.Register[REG_H])<<8 | uint16(cpu.Register[REG_L])
	case PAIR_SP:
		value = cpu.Sp
	case PAIR_PSW:
		value = uint16(cpu.Register[REG_A])<<8 | uint16(cpu.Flags.Pack())
	default:
		panic("unknown register pair")
	}

	return
}

// SetPair stores a 16-bit value into a register pair.
func (cpu *Cpu) SetPair(pair CodePair, value uint16) {
	high := uint8(value >> 8)
	low := uint8(value)

	switch pair {
	case PAIR_BC:
		cpu.Register[REG_B], cpu.Register[REG_C] = high, low
	case PAIR_DE:
		cpu.Register[REG_D], cpu.Register[REG_E] = high, low
	case PAIR_HL:
		cpu.Register[REG_H], cpu.Register[REG_L] = high, low
	case PAIR_SP:
		cpu.Sp = value
	case PAIR_PSW:
		cpu.Register[REG_A] = high
		cpu.Flags = Unpack(low)
	default:
		panic("unknown register pair")
	}
}

// Reg reads a register operand. REG_M reads memory at H:L.
func (cpu *Cpu) Reg(reg CodeReg) (value uint8, err error) {
	if reg == REG_M {
		return cpu.Memory.Read(int(cpu.Pair(PAIR_HL)))
	}

	value = cpu.Register[reg]
	return
}

// SetReg writes a register operand. REG_M writes memory at H:L.
func (cpu *Cpu) SetReg(reg CodeReg, value uint8) (err error) {
	if reg == REG_M {
		return cpu.Memory.Write(int(cpu.Pair(PAIR_HL)), value)
	}

	cpu.Register[reg] = value
	return
}
