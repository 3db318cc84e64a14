package cpu

const (
	MEMORY_SIZE = 0x10000 // Size of the 8080 address space.
)

// Memory is the flat, byte addressable 64K address space.
type Memory struct {
	Data [MEMORY_SIZE]uint8
}

// Read returns the byte at addr.
func (mem *Memory) Read(addr int) (value uint8, err error) {
	if addr < 0 || addr >= MEMORY_SIZE {
		err = ErrMemoryRange{Addr: addr}
		return
	}

	value = mem.Data[addr]
	return
}

// Write stores value at addr.
func (mem *Memory) Write(addr int, value uint8) (err error) {
	if addr < 0 || addr >= MEMORY_SIZE {
		err = ErrMemoryRange{Addr: addr, Write: true}
		return
	}

	mem.Data[addr] = value
	return
}

// Load copies data into memory starting at base. The whole image must fit
// in the address space; nothing is written otherwise.
func (mem *Memory) Load(base int, data []byte) (err error) {
	if base < 0 || base > MEMORY_SIZE {
		err = ErrMemoryRange{Addr: base, Write: true}
		return
	}
	if end := base + len(data); end > MEMORY_SIZE {
		err = ErrMemoryRange{Addr: end - 1, Write: true}
		return
	}

	copy(mem.Data[base:], data)
	return
}

// Clear zeros all of memory.
func (mem *Memory) Clear() {
	clear(mem.Data[:])
}
