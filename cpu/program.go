package cpu

import (
	"iter"
)

// Link is an operand fix-up resolved once all labels are known.
type Link struct {
	Label string // Label to resolve.
	Index int    // Offset into Opcode.Bytes of the fix-up.
	Bits  int    // Width of the fix-up, 8 or 16.
}

// Opcode is one assembled source line.
type Opcode struct {
	LineNo int      // Source line number.
	Addr   int      // Load address of the first byte.
	Words  []string // Source words.
	Bytes  []uint8  // Encoded bytes.
	Links  []Link   // Pending label fix-ups.
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode containing an address.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode that assembled the byte at addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Codes iterates over every assembled byte and its address.
func (prog *Program) Codes() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, code uint8) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Bytes {
				if !yield(uint16(op.Addr+n), code) {
					return
				}
			}
		}
	}
}

// Binary returns the image spanning the lowest to the highest assembled
// address. Gaps left by .org are zero filled.
func (prog *Program) Binary() (base int, data []byte) {
	low, high := MEMORY_SIZE, 0
	for _, op := range prog.Opcodes {
		if len(op.Bytes) == 0 {
			continue
		}
		low = min(low, op.Addr)
		high = max(high, op.Addr+len(op.Bytes))
	}
	if high <= low {
		return
	}

	base = low
	data = make([]byte, high-low)
	for addr, code := range prog.Codes() {
		data[int(addr)-base] = code
	}

	return
}
