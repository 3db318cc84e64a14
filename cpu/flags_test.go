package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsPack(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint8(0x02), Flags{}.Pack())
	assert.Equal(uint8(0xd7), Flags{Zero: true, Sign: true, Parity: true, Carry: true, AuxCarry: true}.Pack())
	assert.Equal(uint8(0x03), Flags{Carry: true}.Pack())
	assert.Equal(uint8(0x06), Flags{Parity: true}.Pack())
	assert.Equal(uint8(0x12), Flags{AuxCarry: true}.Pack())
	assert.Equal(uint8(0x42), Flags{Zero: true}.Pack())
	assert.Equal(uint8(0x82), Flags{Sign: true}.Pack())
}

func TestFlagsRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for value := range 256 {
		flags := Unpack(uint8(value))
		packed := flags.Pack()

		// Bits 3 and 5 read as zero, bit 1 as one.
		assert.Equal(uint8(value)&0xd5|0x02, packed)
		assert.Equal(flags, Unpack(packed))
	}
}

func TestFlagsString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("-----", Flags{}.String())
	assert.Equal("SZAPC", Flags{Zero: true, Sign: true, Parity: true, Carry: true, AuxCarry: true}.String())
	assert.Equal("-Z-P-", Flags{Zero: true, Parity: true}.String())
}
