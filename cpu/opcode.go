package cpu

import (
	"fmt"
	"strings"
)

// CodeAluOp is an accumulator ALU operation, in instruction encoding order.
type CodeAluOp int

//go:generate go tool stringer -linecomment -type=CodeAluOp
const (
	ALU_OP_ADD = CodeAluOp(0) // ADD
	ALU_OP_ADC = CodeAluOp(1) // ADC
	ALU_OP_SUB = CodeAluOp(2) // SUB
	ALU_OP_SBB = CodeAluOp(3) // SBB
	ALU_OP_ANA = CodeAluOp(4) // ANA
	ALU_OP_XRA = CodeAluOp(5) // XRA
	ALU_OP_ORA = CodeAluOp(6) // ORA
	ALU_OP_CMP = CodeAluOp(7) // CMP
)

// Immediate forms of CodeAluOp.
var aluImmediate = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}

// Operand templates used in instruction names.
const (
	OPERAND_D8  = "d8"  // 8-bit immediate data.
	OPERAND_D16 = "d16" // 16-bit immediate data.
	OPERAND_A16 = "a16" // 16-bit immediate address.
)

// Instruction is an entry of the decode table.
type Instruction struct {
	Name   string                               // Mnemonic and operand template, i.e. "MVI B,d8".
	Length int                                  // Operand bytes following the opcode.
	Cycles int                                  // T-states; taken conditional calls and returns add 6.
	Exec   func(cpu *Cpu, imm uint16) (err error) // Executes the instruction. Nil when undefined.
}

// Mnemonic returns the mnemonic of the instruction name.
func (inst *Instruction) Mnemonic() string {
	mnemonic, _, _ := strings.Cut(inst.Name, " ")
	return mnemonic
}

// Operands returns the operand templates of the instruction name.
func (inst *Instruction) Operands() (operands []string) {
	_, args, ok := strings.Cut(inst.Name, " ")
	if !ok {
		return
	}
	return strings.Split(args, ",")
}

// Format returns the instruction text with the immediate operand filled in.
func (inst *Instruction) Format(imm uint16) string {
	operands := inst.Operands()
	for n, operand := range operands {
		switch operand {
		case OPERAND_D8:
			operands[n] = fmt.Sprintf("0x%02X", uint8(imm))
		case OPERAND_D16, OPERAND_A16:
			operands[n] = fmt.Sprintf("0x%04X", imm)
		}
	}
	if len(operands) == 0 {
		return inst.Mnemonic()
	}
	return inst.Mnemonic() + " " + strings.Join(operands, ",")
}

// Instructions is the 8080 decode table, indexed by opcode.
var Instructions [256]Instruction

// undocumented holds the alternate encodings accepted when
// Cpu.Undocumented is set.
var undocumented [256]Instruction

func define(opcode int, length int, cycles int, name string, exec func(cpu *Cpu, imm uint16) error) {
	if Instructions[opcode].Exec != nil {
		panic(fmt.Sprintf("opcode 0x%02X defined twice", opcode))
	}
	Instructions[opcode] = Instruction{Name: name, Length: length, Cycles: cycles, Exec: exec}
}

// Decode returns the decode table entry for an opcode.
func Decode(opcode uint8, alternate bool) (inst *Instruction, ok bool) {
	inst = &Instructions[opcode]
	if inst.Exec == nil && alternate {
		inst = &undocumented[opcode]
	}
	ok = inst.Exec != nil
	return
}

// alu applies an accumulator operation.
func (cpu *Cpu) alu(op CodeAluOp, value uint8) {
	a := cpu.Register[REG_A]
	flags := cpu.Flags

	switch op {
	case ALU_OP_ADD:
		a, flags = Add8(a, value)
	case ALU_OP_ADC:
		a, flags = Adc8(a, value, flags.Carry)
	case ALU_OP_SUB:
		a, flags = Sub8(a, value)
	case ALU_OP_SBB:
		a, flags = Sbb8(a, value, flags.Carry)
	case ALU_OP_ANA:
		a, flags = And8(a, value)
	case ALU_OP_XRA:
		a, flags = Xor8(a, value)
	case ALU_OP_ORA:
		a, flags = Or8(a, value)
	case ALU_OP_CMP:
		flags = Cmp8(a, value)
	}

	cpu.Register[REG_A] = a
	cpu.Flags = flags
}

// write16 stores a little-endian 16-bit value.
func (cpu *Cpu) write16(addr uint16, value uint16) (err error) {
	err = cpu.Memory.Write(int(addr), uint8(value))
	if err != nil {
		return
	}
	return cpu.Memory.Write(int(addr+1), uint8(value>>8))
}

// read16 loads a little-endian 16-bit value.
func (cpu *Cpu) read16(addr uint16) (value uint16, err error) {
	low, err := cpu.Memory.Read(int(addr))
	if err != nil {
		return
	}
	high, err := cpu.Memory.Read(int(addr + 1))
	if err != nil {
		return
	}
	value = uint16(high)<<8 | uint16(low)
	return
}

// regCycles picks the cycle count for a register or memory operand.
func regCycles(reg CodeReg, r int, m int) int {
	if reg == REG_M {
		return m
	}
	return r
}

func init() {
	define(0x00, 0, 4, "NOP", func(cpu *Cpu, imm uint16) error { return nil })

	// Register pair group.
	for _, pair := range []CodePair{PAIR_BC, PAIR_DE, PAIR_HL, PAIR_SP} {
		base := int(pair) << 4
		define(base|0x01, 2, 10, fmt.Sprintf("LXI %v,%v", pair, OPERAND_D16), func(cpu *Cpu, imm uint16) error {
			cpu.SetPair(pair, imm)
			return nil
		})
		define(base|0x03, 0, 5, fmt.Sprintf("INX %v", pair), func(cpu *Cpu, imm uint16) error {
			cpu.SetPair(pair, cpu.Pair(pair)+1)
			return nil
		})
		define(base|0x0B, 0, 5, fmt.Sprintf("DCX %v", pair), func(cpu *Cpu, imm uint16) error {
			cpu.SetPair(pair, cpu.Pair(pair)-1)
			return nil
		})
		define(base|0x09, 0, 10, fmt.Sprintf("DAD %v", pair), func(cpu *Cpu, imm uint16) error {
			hl, carry := Add16(cpu.Pair(PAIR_HL), cpu.Pair(pair))
			cpu.SetPair(PAIR_HL, hl)
			cpu.Flags.Carry = carry
			return nil
		})

		stack := pair
		if stack == PAIR_SP {
			stack = PAIR_PSW
		}
		define(0xC1|base, 0, 10, fmt.Sprintf("POP %v", stack), func(cpu *Cpu, imm uint16) error {
			return cpu.PopPair(stack)
		})
		define(0xC5|base, 0, 11, fmt.Sprintf("PUSH %v", stack), func(cpu *Cpu, imm uint16) error {
			return cpu.PushPair(stack)
		})
	}

	for _, pair := range []CodePair{PAIR_BC, PAIR_DE} {
		base := int(pair) << 4
		define(base|0x02, 0, 7, fmt.Sprintf("STAX %v", pair), func(cpu *Cpu, imm uint16) error {
			return cpu.Memory.Write(int(cpu.Pair(pair)), cpu.Register[REG_A])
		})
		define(base|0x0A, 0, 7, fmt.Sprintf("LDAX %v", pair), func(cpu *Cpu, imm uint16) (err error) {
			cpu.Register[REG_A], err = cpu.Memory.Read(int(cpu.Pair(pair)))
			return
		})
	}

	// Direct addressing.
	define(0x22, 2, 16, "SHLD a16", func(cpu *Cpu, imm uint16) error {
		return cpu.write16(imm, cpu.Pair(PAIR_HL))
	})
	define(0x2A, 2, 16, "LHLD a16", func(cpu *Cpu, imm uint16) error {
		hl, err := cpu.read16(imm)
		if err == nil {
			cpu.SetPair(PAIR_HL, hl)
		}
		return err
	})
	define(0x32, 2, 13, "STA a16", func(cpu *Cpu, imm uint16) error {
		return cpu.Memory.Write(int(imm), cpu.Register[REG_A])
	})
	define(0x3A, 2, 13, "LDA a16", func(cpu *Cpu, imm uint16) (err error) {
		cpu.Register[REG_A], err = cpu.Memory.Read(int(imm))
		return
	})

	// Single register group.
	for reg := REG_B; reg <= REG_A; reg++ {
		base := int(reg) << 3
		define(base|0x04, 0, regCycles(reg, 5, 10), fmt.Sprintf("INR %v", reg), func(cpu *Cpu, imm uint16) error {
			value, err := cpu.Reg(reg)
			if err != nil {
				return err
			}
			value, cpu.Flags = Inc8(value, cpu.Flags.Carry)
			return cpu.SetReg(reg, value)
		})
		define(base|0x05, 0, regCycles(reg, 5, 10), fmt.Sprintf("DCR %v", reg), func(cpu *Cpu, imm uint16) error {
			value, err := cpu.Reg(reg)
			if err != nil {
				return err
			}
			value, cpu.Flags = Dec8(value, cpu.Flags.Carry)
			return cpu.SetReg(reg, value)
		})
		define(base|0x06, 1, regCycles(reg, 7, 10), fmt.Sprintf("MVI %v,%v", reg, OPERAND_D8), func(cpu *Cpu, imm uint16) error {
			return cpu.SetReg(reg, uint8(imm))
		})
	}

	// Accumulator and carry group.
	define(0x07, 0, 4, "RLC", func(cpu *Cpu, imm uint16) error {
		cpu.Register[REG_A], cpu.Flags = Rlc(cpu.Register[REG_A], cpu.Flags)
		return nil
	})
	define(0x0F, 0, 4, "RRC", func(cpu *Cpu, imm uint16) error {
		cpu.Register[REG_A], cpu.Flags = Rrc(cpu.Register[REG_A], cpu.Flags)
		return nil
	})
	define(0x17, 0, 4, "RAL", func(cpu *Cpu, imm uint16) error {
		cpu.Register[REG_A], cpu.Flags = Ral(cpu.Register[REG_A], cpu.Flags)
		return nil
	})
	define(0x1F, 0, 4, "RAR", func(cpu *Cpu, imm uint16) error {
		cpu.Register[REG_A], cpu.Flags = Rar(cpu.Register[REG_A], cpu.Flags)
		return nil
	})
	define(0x27, 0, 4, "DAA", func(cpu *Cpu, imm uint16) error {
		cpu.Register[REG_A], cpu.Flags = Daa(cpu.Register[REG_A], cpu.Flags)
		return nil
	})
	define(0x2F, 0, 4, "CMA", func(cpu *Cpu, imm uint16) error {
		cpu.Register[REG_A] = ^cpu.Register[REG_A]
		return nil
	})
	define(0x37, 0, 4, "STC", func(cpu *Cpu, imm uint16) error {
		cpu.Flags.Carry = true
		return nil
	})
	define(0x3F, 0, 4, "CMC", func(cpu *Cpu, imm uint16) error {
		cpu.Flags.Carry = !cpu.Flags.Carry
		return nil
	})

	// Moves, with HLT in the MOV M,M slot.
	for dst := REG_B; dst <= REG_A; dst++ {
		for src := REG_B; src <= REG_A; src++ {
			opcode := 0x40 | int(dst)<<3 | int(src)
			if dst == REG_M && src == REG_M {
				continue
			}
			cycles := 5
			if dst == REG_M || src == REG_M {
				cycles = 7
			}
			define(opcode, 0, cycles, fmt.Sprintf("MOV %v,%v", dst, src), func(cpu *Cpu, imm uint16) error {
				value, err := cpu.Reg(src)
				if err != nil {
					return err
				}
				return cpu.SetReg(dst, value)
			})
		}
	}
	define(0x76, 0, 7, "HLT", func(cpu *Cpu, imm uint16) error {
		cpu.State = HALTED
		return nil
	})

	// Accumulator operations, register and immediate forms.
	for op := ALU_OP_ADD; op <= ALU_OP_CMP; op++ {
		for src := REG_B; src <= REG_A; src++ {
			define(0x80|int(op)<<3|int(src), 0, regCycles(src, 4, 7), fmt.Sprintf("%v %v", op, src), func(cpu *Cpu, imm uint16) error {
				value, err := cpu.Reg(src)
				if err != nil {
					return err
				}
				cpu.alu(op, value)
				return nil
			})
		}
		define(0xC6|int(op)<<3, 1, 7, aluImmediate[op]+" "+OPERAND_D8, func(cpu *Cpu, imm uint16) error {
			cpu.alu(op, uint8(imm))
			return nil
		})
	}

	// Branches.
	for cond := COND_NZ; cond <= COND_M; cond++ {
		base := int(cond) << 3
		define(0xC0|base, 0, 5, fmt.Sprintf("R%v", cond), func(cpu *Cpu, imm uint16) error {
			if !cpu.Flags.Test(cond) {
				return nil
			}
			cpu.Cycles += 6
			return cpu.Ret()
		})
		define(0xC2|base, 2, 10, fmt.Sprintf("J%v %v", cond, OPERAND_A16), func(cpu *Cpu, imm uint16) error {
			if cpu.Flags.Test(cond) {
				cpu.Jump(imm)
			}
			return nil
		})
		define(0xC4|base, 2, 11, fmt.Sprintf("C%v %v", cond, OPERAND_A16), func(cpu *Cpu, imm uint16) error {
			if !cpu.Flags.Test(cond) {
				return nil
			}
			cpu.Cycles += 6
			return cpu.Call(imm)
		})
	}
	for n := range 8 {
		define(0xC7|n<<3, 0, 11, fmt.Sprintf("RST %d", n), func(cpu *Cpu, imm uint16) error {
			return cpu.Rst(n)
		})
	}
	define(0xC3, 2, 10, "JMP a16", func(cpu *Cpu, imm uint16) error {
		cpu.Jump(imm)
		return nil
	})
	define(0xC9, 0, 10, "RET", func(cpu *Cpu, imm uint16) error {
		return cpu.Ret()
	})
	define(0xCD, 2, 17, "CALL a16", func(cpu *Cpu, imm uint16) error {
		return cpu.Call(imm)
	})
	define(0xE9, 0, 5, "PCHL", func(cpu *Cpu, imm uint16) error {
		cpu.Jump(cpu.Pair(PAIR_HL))
		return nil
	})

	// Exchanges.
	define(0xE3, 0, 18, "XTHL", func(cpu *Cpu, imm uint16) error {
		top, err := cpu.read16(cpu.Sp)
		if err != nil {
			return err
		}
		err = cpu.write16(cpu.Sp, cpu.Pair(PAIR_HL))
		if err != nil {
			return err
		}
		cpu.SetPair(PAIR_HL, top)
		return nil
	})
	define(0xEB, 0, 4, "XCHG", func(cpu *Cpu, imm uint16) error {
		de, hl := cpu.Pair(PAIR_DE), cpu.Pair(PAIR_HL)
		cpu.SetPair(PAIR_DE, hl)
		cpu.SetPair(PAIR_HL, de)
		return nil
	})
	define(0xF9, 0, 5, "SPHL", func(cpu *Cpu, imm uint16) error {
		cpu.Sp = cpu.Pair(PAIR_HL)
		return nil
	})

	// Ports and interrupt latch.
	define(0xD3, 1, 10, "OUT d8", func(cpu *Cpu, imm uint16) error {
		if cpu.Port != nil {
			cpu.Port.Out(uint8(imm), cpu.Register[REG_A])
		}
		return nil
	})
	define(0xDB, 1, 10, "IN d8", func(cpu *Cpu, imm uint16) error {
		if cpu.Port != nil {
			cpu.Register[REG_A] = cpu.Port.In(uint8(imm))
		}
		return nil
	})
	define(0xF3, 0, 4, "DI", func(cpu *Cpu, imm uint16) error {
		cpu.Inte = false
		return nil
	})
	define(0xFB, 0, 4, "EI", func(cpu *Cpu, imm uint16) error {
		cpu.Inte = true
		return nil
	})

	// Undocumented alternates of NOP, JMP, RET and CALL, as the silicon
	// decodes them.
	for _, opcode := range []int{0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38} {
		undocumented[opcode] = Instructions[0x00]
	}
	undocumented[0xCB] = Instructions[0xC3]
	undocumented[0xD9] = Instructions[0xC9]
	for _, opcode := range []int{0xDD, 0xED, 0xFD} {
		undocumented[opcode] = Instructions[0xCD]
	}
}
