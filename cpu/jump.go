package cpu

// CodeCond is a branch condition, in instruction encoding order.
type CodeCond int

//go:generate go tool stringer -linecomment -type=CodeCond
const (
	COND_NZ = CodeCond(0) // NZ
	COND_Z  = CodeCond(1) // Z
	COND_NC = CodeCond(2) // NC
	COND_C  = CodeCond(3) // C
	COND_PO = CodeCond(4) // PO
	COND_PE = CodeCond(5) // PE
	COND_P  = CodeCond(6) // P
	COND_M  = CodeCond(7) // M
)

// Test reports whether the flags satisfy the condition.
func (flags Flags) Test(cond CodeCond) bool {
	switch cond {
	case COND_NZ:
		return !flags.Zero
	case COND_Z:
		return flags.Zero
	case COND_NC:
		return !flags.Carry
	case COND_C:
		return flags.Carry
	case COND_PO:
		return !flags.Parity
	case COND_PE:
		return flags.Parity
	case COND_P:
		return !flags.Sign
	case COND_M:
		return flags.Sign
	}

	panic("unknown condition")
}

// Jump sets the program counter.
func (cpu *Cpu) Jump(addr uint16) {
	cpu.Pc = addr
}

// Call pushes the program counter, which already addresses the following
// instruction, and jumps to addr.
func (cpu *Cpu) Call(addr uint16) (err error) {
	err = cpu.Push(uint8(cpu.Pc>>8), uint8(cpu.Pc))
	if err != nil {
		return
	}

	cpu.Pc = addr
	return
}

// Ret pops the program counter.
func (cpu *Cpu) Ret() (err error) {
	high, low, err := cpu.Pop()
	if err != nil {
		return
	}

	cpu.Pc = uint16(high)<<8 | uint16(low)
	return
}

// Rst calls the restart vector n (0..7), at address n * 8.
func (cpu *Cpu) Rst(n int) (err error) {
	return cpu.Call(uint16(n&7) * 8)
}
