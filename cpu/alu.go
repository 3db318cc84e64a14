package cpu

// add is the 8-bit adder shared by every arithmetic operation.
func add(a, b uint8, carry bool) (result uint8, flags Flags) {
	var cin uint16
	if carry {
		cin = 1
	}

	sum := uint16(a) + uint16(b) + cin
	result = uint8(sum)
	flags = zsp(result)
	flags.Carry = sum > 0xff
	flags.AuxCarry = (uint16(a&0xf) + uint16(b&0xf) + cin) > 0xf
	return
}

// sub subtracts through the adder as the hardware does: a + ^b + !borrow.
// Carry reports the borrow out of bit 7; AuxCarry is the adder's carry out
// of bit 3.
func sub(a, b uint8, borrow bool) (result uint8, flags Flags) {
	result, flags = add(a, ^b, !borrow)
	flags.Carry = !flags.Carry
	return
}

// Add8 returns a + b.
func Add8(a, b uint8) (uint8, Flags) {
	return add(a, b, false)
}

// Adc8 returns a + b + carry.
func Adc8(a, b uint8, carry bool) (uint8, Flags) {
	return add(a, b, carry)
}

// Sub8 returns a - b.
func Sub8(a, b uint8) (uint8, Flags) {
	return sub(a, b, false)
}

// Sbb8 returns a - b - borrow.
func Sbb8(a, b uint8, borrow bool) (uint8, Flags) {
	return sub(a, b, borrow)
}

// Cmp8 returns the flags of a - b.
func Cmp8(a, b uint8) (flags Flags) {
	_, flags = sub(a, b, false)
	return
}

// And8 returns a & b. Carry is cleared; AuxCarry reflects bit 3 of either
// operand.
func And8(a, b uint8) (result uint8, flags Flags) {
	result = a & b
	flags = zsp(result)
	flags.AuxCarry = ((a | b) & 0x08) != 0
	return
}

// Xor8 returns a ^ b, clearing Carry and AuxCarry.
func Xor8(a, b uint8) (result uint8, flags Flags) {
	result = a ^ b
	flags = zsp(result)
	return
}

// Or8 returns a | b, clearing Carry and AuxCarry.
func Or8(a, b uint8) (result uint8, flags Flags) {
	result = a | b
	flags = zsp(result)
	return
}

// Inc8 returns value + 1. Carry is not affected.
func Inc8(value uint8, carry bool) (result uint8, flags Flags) {
	result, flags = add(value, 1, false)
	flags.Carry = carry
	return
}

// Dec8 returns value - 1. Carry is not affected.
func Dec8(value uint8, carry bool) (result uint8, flags Flags) {
	result, flags = sub(value, 1, false)
	flags.Carry = carry
	return
}

// Add16 returns a + b and the carry out of bit 15.
func Add16(a, b uint16) (result uint16, carry bool) {
	sum := uint32(a) + uint32(b)
	result = uint16(sum)
	carry = sum > 0xffff
	return
}

// Daa decimal adjusts the accumulator after a BCD addition.
func Daa(a uint8, flags Flags) (result uint8, out Flags) {
	var correction uint8
	carry := flags.Carry

	if (a&0x0f) > 9 || flags.AuxCarry {
		correction |= 0x06
	}
	if a > 0x99 || flags.Carry {
		correction |= 0x60
		carry = true
	}

	result, out = add(a, correction, false)
	out.Carry = carry
	return
}

// Rlc rotates left, bit 7 into both bit 0 and Carry.
func Rlc(a uint8, flags Flags) (uint8, Flags) {
	flags.Carry = a&0x80 != 0
	return a<<1 | a>>7, flags
}

// Rrc rotates right, bit 0 into both bit 7 and Carry.
func Rrc(a uint8, flags Flags) (uint8, Flags) {
	flags.Carry = a&0x01 != 0
	return a>>1 | a<<7, flags
}

// Ral rotates left through Carry.
func Ral(a uint8, flags Flags) (result uint8, out Flags) {
	result = a << 1
	if flags.Carry {
		result |= 0x01
	}
	out = flags
	out.Carry = a&0x80 != 0
	return
}

// Rar rotates right through Carry.
func Rar(a uint8, flags Flags) (result uint8, out Flags) {
	result = a >> 1
	if flags.Carry {
		result |= 0x80
	}
	out = flags
	out.Carry = a&0x01 != 0
	return
}
