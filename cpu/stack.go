package cpu

// Push stores two bytes below the stack pointer, high byte first, and
// lowers the stack pointer by two.
func (cpu *Cpu) Push(high, low uint8) (err error) {
	err = cpu.Memory.Write(int(cpu.Sp-1), high)
	if err != nil {
		return
	}
	err = cpu.Memory.Write(int(cpu.Sp-2), low)
	if err != nil {
		return
	}

	cpu.Sp -= 2
	return
}

// Pop reads two bytes at the stack pointer, low byte first, and raises the
// stack pointer by two.
func (cpu *Cpu) Pop() (high, low uint8, err error) {
	low, err = cpu.Memory.Read(int(cpu.Sp))
	if err != nil {
		return
	}
	high, err = cpu.Memory.Read(int(cpu.Sp + 1))
	if err != nil {
		return
	}

	cpu.Sp += 2
	return
}

// PushPair pushes a register pair.
func (cpu *Cpu) PushPair(pair CodePair) (err error) {
	value := cpu.Pair(pair)
	return cpu.Push(uint8(value>>8), uint8(value))
}

// PopPair pops a register pair.
func (cpu *Cpu) PopPair(pair CodePair) (err error) {
	high, low, err := cpu.Pop()
	if err != nil {
		return
	}

	cpu.SetPair(pair, uint16(high)<<8|uint16(low))
	return
}

// Peek returns the 16-bit value on top of the stack without popping it.
func (cpu *Cpu) Peek() (value uint16, err error) {
	sp := cpu.Sp
	high, low, err := cpu.Pop()
	cpu.Sp = sp
	if err != nil {
		return
	}

	value = uint16(high)<<8 | uint16(low)
	return
}
