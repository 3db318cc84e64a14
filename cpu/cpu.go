package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/i8080/io"
)

// Port is the IN/OUT delegate.
type Port io.Port

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("0x%x", MEMORY_SIZE),
	"RST0":        "0x00",
	"RST1":        "0x08",
	"RST2":        "0x10",
	"RST3":        "0x18",
	"RST4":        "0x20",
	"RST5":        "0x28",
	"RST6":        "0x30",
	"RST7":        "0x38",
}

// Cpu is the machine state of one emulation run.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	// Undocumented decodes the alternate opcodes the way 8080 silicon runs
	// them: 0x08, 0x10, 0x18, 0x20, 0x28, 0x30 and 0x38 as NOP, 0xCB as
	// JMP, 0xD9 as RET, and 0xDD, 0xED and 0xFD as CALL. When clear, they
	// fault with ErrUnimplementedOpcode.
	Undocumented bool

	Register [8]uint8 // Register bank, indexed by CodeReg. REG_M is never stored.
	Flags    Flags    // Condition flags.
	Sp       uint16   // Stack pointer.
	Pc       uint16   // Program counter.
	Inte     bool     // Interrupt enable latch.
	Memory   Memory   // 64K address space.
	Port     Port     // IN/OUT delegate. When nil, IN leaves A unchanged and OUT is dropped.

	State  State // Dispatcher state.
	Err    error // Fault that moved State to FAULT.
	Extent int   // One past the last loaded address. Zero disables the check.

	Ticks  int // Instructions executed.
	Cycles int // T-states executed.
}

// NewCpu creates a reset CPU.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers, flags and memory.
// - Zeros statistics counters.
// - Returns the dispatcher to RUNNING at address 0.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Flags = Flags{}
	cpu.Sp = 0
	cpu.Pc = 0
	cpu.Inte = false
	cpu.Memory.Clear()
	cpu.State = RUNNING
	cpu.Err = nil
	cpu.Extent = 0
	cpu.Ticks = 0
	cpu.Cycles = 0
}

// Load copies a program image into memory at base, extends the loaded
// extent to cover it, and sets the program counter to base.
func (cpu *Cpu) Load(base int, data []byte) (err error) {
	err = cpu.Memory.Load(base, data)
	if err != nil {
		return
	}

	cpu.Extent = max(cpu.Extent, base+len(data))
	cpu.Pc = uint16(base)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at 0x%04X", len(data), base)
	}

	return
}

// Snapshot returns a copy of the registers, flags and pointers.
func (cpu *Cpu) Snapshot() Snapshot {
	return Snapshot{
		A:     cpu.Register[REG_A],
		B:     cpu.Register[REG_B],
		C:     cpu.Register[REG_C],
		D:     cpu.Register[REG_D],
		E:     cpu.Register[REG_E],
		H:     cpu.Register[REG_H],
		L:     cpu.Register[REG_L],
		Flags: cpu.Flags,
		Pc:    cpu.Pc,
		Sp:    cpu.Sp,
		State: cpu.State,
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "sp", "flags",
		"a", "bc", "de", "hl",
		"stack", "state",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%04X", cpu.Pc)
			inst, length := Disassemble(&cpu.Memory, cpu.Pc)
			strval += fmt.Sprintf(" %v (%d)", inst, length)
		case "sp":
			strval = fmt.Sprintf("%04X", cpu.Sp)
		case "flags":
			strval = cpu.Flags.String()
		case "a":
			strval = fmt.Sprintf("%02X", cpu.Register[REG_A])
		case "bc":
			strval = fmt.Sprintf("%04X", cpu.Pair(PAIR_BC))
		case "de":
			strval = fmt.Sprintf("%04X", cpu.Pair(PAIR_DE))
		case "hl":
			strval = fmt.Sprintf("%04X", cpu.Pair(PAIR_HL))
		case "stack":
			val, err := cpu.Peek()
			if err == nil {
				strval = fmt.Sprintf("%04X", val)
			} else {
				strval = "----"
			}
		case "state":
			strval = cpu.State.String()
			if cpu.Err != nil {
				strval += fmt.Sprintf(" (%v)", cpu.Err)
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Step executes exactly one instruction and returns the new run state.
// A fault leaves the program counter at the faulting instruction, and is
// returned by every later Step.
func (cpu *Cpu) Step() (state State, err error) {
	if cpu.State != RUNNING {
		return cpu.State, cpu.Err
	}

	pc := cpu.Pc
	defer func() {
		if err != nil {
			cpu.Pc = pc
			cpu.State = FAULT
			cpu.Err = err
			if cpu.Verbose {
				log.Printf("cpu: fault: %v", err)
			}
		}
		state = cpu.State
	}()

	if cpu.Extent != 0 && int(pc) >= cpu.Extent {
		if cpu.Verbose {
			log.Printf("cpu: 0x%04X beyond program extent 0x%04X", pc, cpu.Extent)
		}
		cpu.State = HALTED
		return
	}

	opcode, err := cpu.Memory.Read(int(pc))
	if err != nil {
		return
	}

	inst, ok := Decode(opcode, cpu.Undocumented)
	if !ok {
		err = ErrUnimplementedOpcode{Opcode: opcode, Pc: pc}
		return
	}

	var imm uint16
	for n := range inst.Length {
		var value uint8
		value, err = cpu.Memory.Read(int(pc + 1 + uint16(n)))
		if err != nil {
			return
		}
		imm |= uint16(value) << (8 * n)
	}

	if cpu.Verbose {
		log.Printf("cpu: %04X %-14v %v", pc, inst.Format(imm), cpu.Flags)
	}

	// Control flow instructions overwrite the advanced program counter.
	cpu.Pc = pc + 1 + uint16(inst.Length)
	err = inst.Exec(cpu, imm)
	if err != nil {
		return
	}

	cpu.Ticks++
	cpu.Cycles += inst.Cycles

	return
}

// Disassemble returns the text and total length of the instruction at
// addr. Undefined opcodes disassemble as a data byte.
func Disassemble(mem *Memory, addr uint16) (text string, length int) {
	opcode := mem.Data[addr]
	inst, ok := Decode(opcode, false)
	if !ok {
		return fmt.Sprintf(".db 0x%02X", opcode), 1
	}

	var imm uint16
	for n := range inst.Length {
		imm |= uint16(mem.Data[addr+1+uint16(n)]) << (8 * n)
	}

	return inst.Format(imm), 1 + inst.Length
}
