package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}

	assert.NoError(mem.Write(0xffff, 0x12))
	value, err := mem.Read(0xffff)
	assert.NoError(err)
	assert.Equal(uint8(0x12), value)

	_, err = mem.Read(MEMORY_SIZE)
	assert.ErrorIs(err, ErrMemoryRange{})
	assert.Equal(ErrMemoryRange{Addr: MEMORY_SIZE}, err)

	err = mem.Write(-1, 0)
	assert.Equal(ErrMemoryRange{Addr: -1, Write: true}, err)

	mem.Clear()
	assert.Equal(uint8(0), mem.Data[0xffff])
}

func TestMemoryLoad(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}

	assert.NoError(mem.Load(0xfffe, []uint8{1, 2}))
	assert.Equal([]uint8{1, 2}, mem.Data[0xfffe:])

	err := mem.Load(0xfffe, []uint8{3, 4, 5})
	assert.Equal(ErrMemoryRange{Addr: MEMORY_SIZE, Write: true}, err)
	assert.Equal([]uint8{1, 2}, mem.Data[0xfffe:])

	assert.Error(mem.Load(-1, nil))
	assert.NoError(mem.Load(MEMORY_SIZE, nil))
}
