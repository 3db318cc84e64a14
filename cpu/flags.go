package cpu

import (
	"math/bits"
)

// PSW flag byte bit positions.
const (
	FLAG_BIT_CY = 0 // Carry
	FLAG_BIT_P  = 2 // Parity
	FLAG_BIT_AC = 4 // Auxiliary carry
	FLAG_BIT_Z  = 6 // Zero
	FLAG_BIT_S  = 7 // Sign

	FLAG_FIXED = uint8(1 << 1) // Bit 1 always reads as 1; bits 3 and 5 as 0.
)

// Flags are the condition codes of the most recent flag-affecting operation.
type Flags struct {
	Zero     bool
	Sign     bool
	Parity   bool
	Carry    bool
	AuxCarry bool
}

// zsp derives Zero, Sign and Parity from a result byte.
func zsp(result uint8) (flags Flags) {
	flags.Zero = result == 0
	flags.Sign = (result & 0x80) != 0
	flags.Parity = parity(result)
	return
}

// parity is set when the byte has an even number of set bits.
func parity(value uint8) bool {
	return bits.OnesCount8(value)&1 == 0
}

// Pack encodes the flags into the PSW byte: S Z 0 AC 0 P 1 CY.
func (flags Flags) Pack() (value uint8) {
	value = FLAG_FIXED
	for _, bit := range []struct {
		set bool
		pos int
	}{
		{flags.Carry, FLAG_BIT_CY},
		{flags.Parity, FLAG_BIT_P},
		{flags.AuxCarry, FLAG_BIT_AC},
		{flags.Zero, FLAG_BIT_Z},
		{flags.Sign, FLAG_BIT_S},
	} {
		if bit.set {
			value |= 1 << bit.pos
		}
	}
	return
}

// Unpack decodes a PSW byte into flags. Bits 1, 3 and 5 are ignored.
func Unpack(value uint8) (flags Flags) {
	flags.Carry = value&(1<<FLAG_BIT_CY) != 0
	flags.Parity = value&(1<<FLAG_BIT_P) != 0
	flags.AuxCarry = value&(1<<FLAG_BIT_AC) != 0
	flags.Zero = value&(1<<FLAG_BIT_Z) != 0
	flags.Sign = value&(1<<FLAG_BIT_S) != 0
	return
}

// String returns the flags as a five letter mask, '-' for clear flags.
func (flags Flags) String() string {
	text := []byte("-----")
	for n, flag := range []struct {
		set    bool
		letter byte
	}{
		{flags.Sign, 'S'},
		{flags.Zero, 'Z'},
		{flags.AuxCarry, 'A'},
		{flags.Parity, 'P'},
		{flags.Carry, 'C'},
	} {
		if flag.set {
			text[n] = flag.letter
		}
	}
	return string(text)
}
