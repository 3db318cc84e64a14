package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// branches are the mnemonics that may replace the advanced program counter.
var branches = map[string]bool{
	"JMP": true, "CALL": true, "RET": true, "PCHL": true, "RST": true,
}

// flagless are the mnemonics that never touch the flags.
var flagless = map[string]bool{
	"NOP": true, "HLT": true, "MOV": true, "MVI": true, "LXI": true,
	"INX": true, "DCX": true, "LDA": true, "STA": true, "LDAX": true,
	"STAX": true, "LHLD": true, "SHLD": true, "XCHG": true, "XTHL": true,
	"SPHL": true, "PUSH": true, "CMA": true, "IN": true, "OUT": true,
	"EI": true, "DI": true,
}

// carryOnly are the mnemonics that change Carry and nothing else.
var carryOnly = map[string]bool{
	"DAD": true, "RLC": true, "RRC": true, "RAL": true, "RAR": true,
	"STC": true, "CMC": true,
}

func init() {
	for cond := COND_NZ; cond <= COND_M; cond++ {
		branches["J"+cond.String()] = true
		branches["C"+cond.String()] = true
		branches["R"+cond.String()] = true
	}
}

func FuzzCpu(f *testing.F) {
	for opcode := range 256 {
		f.Add(uint8(opcode), uint8(0x34), uint8(0x12), uint8(0xff), false)
		f.Add(uint8(opcode), uint8(0x00), uint8(0x00), uint8(0x00), true)
	}

	f.Fuzz(func(t *testing.T, opcode uint8, lo uint8, hi uint8, psw uint8, undocumented bool) {
		assert := assert.New(t)

		cpu := NewCpu()
		cpu.Undocumented = undocumented
		cpu.Pc = 0x8000
		cpu.Sp = 0x4000
		cpu.Flags = Unpack(psw)
		cpu.SetPair(PAIR_BC, 0x1111)
		cpu.SetPair(PAIR_DE, 0x2222)
		cpu.SetPair(PAIR_HL, 0x3333)
		cpu.Memory.Data[0x8000] = opcode
		cpu.Memory.Data[0x8001] = lo
		cpu.Memory.Data[0x8002] = hi

		inst, ok := Decode(opcode, undocumented)

		state, err := cpu.Step()
		if !ok {
			assert.Equal(FAULT, state)
			assert.Equal(ErrUnimplementedOpcode{Opcode: opcode, Pc: 0x8000}, err)
			assert.Equal(uint16(0x8000), cpu.Pc)
			assert.Equal(0, cpu.Ticks)
			return
		}

		assert.NoError(err)
		assert.Equal(1, cpu.Ticks)
		assert.True(cpu.Cycles == inst.Cycles || cpu.Cycles == inst.Cycles+6, inst.Name)

		if inst.Name == "HLT" {
			assert.Equal(HALTED, state)
		} else {
			assert.Equal(RUNNING, state)
		}

		if !branches[inst.Mnemonic()] {
			assert.Equal(uint16(0x8001+inst.Length), cpu.Pc, inst.Name)
		}

		before := Unpack(psw)
		mnemonic := inst.Mnemonic()
		switch {
		case flagless[mnemonic] || branches[mnemonic]:
			assert.Equal(before, cpu.Flags, inst.Name)
		case carryOnly[mnemonic]:
			before.Carry = cpu.Flags.Carry
			assert.Equal(before, cpu.Flags, inst.Name)
		case mnemonic == "INR" || mnemonic == "DCR":
			assert.Equal(before.Carry, cpu.Flags.Carry, inst.Name)
		case inst.Name == "POP PSW":
			// The stack at 0x4000 is zeroed.
			assert.Equal(Flags{}, cpu.Flags)
		case mnemonic == "POP":
			assert.Equal(before, cpu.Flags, inst.Name)
		}

		switch inst.Name {
		case "STC":
			assert.True(cpu.Flags.Carry)
		case "CMC":
			assert.Equal(!Unpack(psw).Carry, cpu.Flags.Carry)
		}
	})
}
