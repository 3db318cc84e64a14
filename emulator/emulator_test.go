package emulator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/i8080/cpu"
	i8080io "github.com/ezrec/i8080/io"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(&emu.Bus, emu.Cpu.Port)

	device, ok := emu.Bus.Device(TAPE_PORT)
	assert.True(ok)
	assert.Equal(&emu.Tape, device)

	assert.ErrorIs(emu.Reset(), ErrNoProgram)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	defines := map[string]string{}
	for name, value := range emu.Defines() {
		defines[name] = value
	}

	assert.Equal("0x0005", defines["BDOS"])
	assert.Equal("0x0000", defines["WBOOT"])
	assert.Equal("0x0100", defines["TPA"])
	assert.Equal("0x38", defines["RST7"])
}

func doAssemble(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
}

func doRun(emu *Emulator, t *testing.T) {
	assert := assert.New(t)

	err := emu.Run(context.Background(), 100000)
	assert.NoError(err)
	if err != nil {
		t.Log(emu.Cpu.String())
		t.Fatal(err)
	}
}

func TestEmulatorTape(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"        mvi a, 'O'",
		"        out TAPE_PORT",
		"        mvi a, 'K'",
		"        out TAPE_PORT",
		"        in TAPE_PORT",
		"        mov b, a",
		"        in TAPE_PORT",
		"        mov c, a",
		"        hlt",
	}

	doAssemble(emu, program, t)

	output := &bytes.Buffer{}
	emu.Tape.Input = bytes.NewReader([]byte{0x12})
	emu.Tape.Output = output

	doRun(emu, t)

	assert.Equal("OK", output.String())
	assert.Equal(uint8(0x12), emu.Cpu.Register[cpu.REG_B])
	assert.Equal(i8080io.BUS_FLOATING, emu.Cpu.Register[cpu.REG_C])
	assert.Equal(cpu.HALTED, emu.Cpu.State)
	assert.Equal(9, emu.Ticks())
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"; comment",
		"start:  mvi a, 1",
		"        nop",
		"        hlt",
	}

	doAssemble(emu, program, t)

	assert.Equal(2, emu.LineNo())
	for _, lineno := range []int{2, 3, 4} {
		assert.Equal(lineno, emu.LineNo())
		done, err := emu.Tick()
		assert.NoError(err)
		assert.Equal(lineno == 4, done)
	}

	// A halted CPU stays halted.
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

// Self checking diagnostic, reporting through the CP/M console.
var diagnostic = []string{
	"        .org TPA",
	"start:  lxi sp, stack",
	"        mvi a, 0x05",
	"        adi 0x03",
	"        cpi 0x08",
	"        jnz fail",
	"        sui 0x09      ; borrow, A = 0xFF",
	"        jnc fail",
	"        jp fail",
	"        jpo fail      ; 0xFF has even parity",
	"        inr a",
	"        jnz fail",
	"        jnc fail      ; INR preserves the borrow",
	"        mvi a, 0x15",
	"        adi 0x27",
	"        daa",
	"        cpi 0x42",
	"        jnz fail",
	"        lxi h, 0x1234",
	"        push h",
	"        pop b",
	"        mov a, b",
	"        cpi 0x12",
	"        jnz fail",
	"        mov a, c",
	"        cpi 0x34",
	"        jnz fail",
	"        lxi h, 0xffff",
	"        lxi d, 0x0001",
	"        dad d",
	"        jnc fail",
	"        mov a, h",
	"        ora l",
	"        jnz fail",
	"        call check",
	"        cpi 0x77",
	"        jnz fail",
	"        cnz fail",
	"        mvi c, CONOUT",
	"        mvi e, '>'",
	"        call BDOS",
	"        lxi d, pass",
	"        jmp print",
	"fail:   lxi d, failed",
	"print:  mvi c, PRINT",
	"        call BDOS",
	"        jmp WBOOT",
	"check:  mvi a, 0x77",
	"        ret",
	"pass:   .db \"CPU IS OPERATIONAL$\"",
	"failed: .db \"CPU HAS FAILED$\"",
	"        .ds 32",
	"stack:",
}

func TestEmulatorCpm(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Cpm = true

	console := &strings.Builder{}
	emu.Console = console

	doAssemble(emu, diagnostic, t)
	assert.Equal(CPM_TPA, emu.Base)
	assert.Equal(uint16(CPM_TPA), emu.Cpu.Pc)

	doRun(emu, t)

	assert.Equal(">CPU IS OPERATIONAL", console.String())
	assert.Equal(cpu.HALTED, emu.Cpu.State)
	assert.Equal(uint16(CPM_WBOOT+1), emu.Cpu.Pc)
}

func TestEmulatorCpmBase(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Cpm = true

	rom := &i8080io.Rom{Name: "zero page", Data: []byte{0x3e, 0x01, 0x76, 0x00, 0x00, 0x00}}
	err := emu.Load(0, rom)
	assert.ErrorIs(err, ErrCpmBase)
	assert.ErrorContains(err, "0x0000")

	// Nothing was loaded over the vectors.
	assert.Equal(uint8(0x00), emu.Cpu.Memory.Data[CPM_WBOOT])
	assert.Equal(uint8(0x00), emu.Cpu.Memory.Data[CPM_BDOS])

	assert.NoError(emu.Load(CPM_TPA, rom))
	assert.Equal(uint8(0x76), emu.Cpu.Memory.Data[CPM_WBOOT])
	assert.Equal(uint8(0xc9), emu.Cpu.Memory.Data[CPM_BDOS])
}

func TestEmulatorCpmDisabled(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	console := &strings.Builder{}
	emu.Console = console

	doAssemble(emu, diagnostic, t)

	// Without the shim, CALL BDOS runs into zeroed memory below the image.
	err := emu.Run(context.Background(), 10000)
	assert.ErrorIs(err, ErrStepLimit)
	assert.Empty(console.String())
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"        nop",
		"        .db 0x08",
		"        hlt",
	}

	doAssemble(emu, program, t)

	err := emu.Run(context.Background(), 0)
	assert.ErrorIs(err, cpu.ErrUnimplementedOpcode{})

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(2, runtime.LineNo)
	assert.Equal(uint16(1), runtime.Pc)
	assert.Equal(cpu.FAULT, emu.Cpu.State)

	// Undocumented alternates decode as NOP.
	emu.Cpu.Undocumented = true
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(context.Background(), 0))
	assert.Equal(cpu.HALTED, emu.Cpu.State)
	assert.Equal(3, emu.Ticks())
}

func TestEmulatorContext(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"loop:   jmp loop",
	}

	doAssemble(emu, program, t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emu.Run(ctx, 0)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, emu.Ticks())

	err = emu.Run(context.Background(), 50)
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(50, emu.Ticks())
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	rom := &i8080io.Rom{Name: "inc", Data: []byte{0x3e, 0x05, 0x3c, 0x76}}
	assert.NoError(emu.Load(0x200, rom))
	assert.Equal(uint16(0x200), emu.Cpu.Pc)
	assert.Equal(0x204, emu.Cpu.Extent)
	assert.Equal(0, emu.LineNo())

	assert.NoError(emu.Run(context.Background(), 0))
	assert.Equal(uint8(6), emu.Cpu.Register[cpu.REG_A])
	assert.False(emu.Cpu.Flags.Zero)
	assert.False(emu.Cpu.Flags.Sign)
}

func TestEmulatorPatchScript(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	rom := &i8080io.Rom{Name: "patched", Data: []byte{0x00, 0x00, 0x00, 0x00}}
	emu.Patches = []Patch{
		PatchScript("patch.star", "poke(BASE + 1, 0x3e, peek(BASE) + 0x42)\npoke(BASE + 3, 0x76)\n", 0x100),
	}

	assert.NoError(emu.Load(0x100, rom))
	assert.Equal(uint8(0x3e), emu.Cpu.Memory.Data[0x101])
	assert.Equal(uint8(0x42), emu.Cpu.Memory.Data[0x102])

	assert.NoError(emu.Run(context.Background(), 0))
	assert.Equal(uint8(0x42), emu.Cpu.Register[cpu.REG_A])
	assert.Equal(3, emu.Ticks())
}

func TestEmulatorPatchScriptErrors(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	rom := &i8080io.Rom{Name: "patched", Data: []byte{0x76}}

	emu.Patches = []Patch{PatchScript("range.star", "poke(BASE, 0x100)", 0)}
	assert.ErrorIs(emu.Load(0, rom), ErrPatchValue(0x100))

	emu.Patches = []Patch{PatchScript("short.star", "poke(BASE)", 0)}
	assert.ErrorIs(emu.Load(0, rom), ErrPatchScript)

	emu.Patches = []Patch{PatchScript("memory.star", "peek(0x10000)", 0)}
	assert.ErrorIs(emu.Load(0, rom), cpu.ErrMemoryRange{})

	emu.Patches = []Patch{PatchScript("syntax.star", "poke(", 0)}
	assert.Error(emu.Load(0, rom))
}

func TestEmulatorPatchCpudiag(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	rom := &i8080io.Rom{Name: "blank", Data: make([]byte, 0x700)}
	emu.Patches = []Patch{BuiltinPatches["cpudiag"]}

	assert.NoError(emu.Load(0x100, rom))
	assert.Equal(uint8(0x07), emu.Cpu.Memory.Data[0x0170])
	assert.Equal([]uint8{0xc3, 0xc2, 0x05}, emu.Cpu.Memory.Data[0x059c:0x059f])
}

func doCpudiag(patches []Patch, t *testing.T) (emu *Emulator, console *strings.Builder) {
	assert := assert.New(t)

	input, err := os.Open(filepath.Join("testdata", "cpudiag.asm"))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
	defer input.Close()

	emu = NewEmulator()
	emu.Cpm = true
	console = &strings.Builder{}
	emu.Console = console
	emu.Patches = patches

	assert.NoError(emu.Assemble(input))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(context.Background(), 100000))
	assert.Equal(cpu.HALTED, emu.Cpu.State)
	assert.Equal(uint16(CPM_WBOOT+1), emu.Cpu.Pc)

	return
}

func TestEmulatorCpudiag(t *testing.T) {
	assert := assert.New(t)

	emu, console := doCpudiag([]Patch{BuiltinPatches["cpudiag"]}, t)

	// The image carries the one page low stack operand of cpudiag.bin.
	assert.Equal(CPM_TPA, emu.Base)
	assert.Equal(0x07ad, emu.Cpu.Extent)
	assert.Equal([]uint8{0x31, 0xad, 0x06}, emu.Rom.Data[0x016e-CPM_TPA:0x0171-CPM_TPA])
	assert.Equal(uint8(0x3e), emu.Rom.Data[0x059c-CPM_TPA])
	assert.Equal(uint8(0x07), emu.Cpu.Memory.Data[0x0170])

	assert.Equal("8080 CPU DIAGNOSTIC\r\n\r\n CPU IS OPERATIONAL", console.String())
}

func TestEmulatorCpudiagUnpatched(t *testing.T) {
	assert := assert.New(t)

	// The stack check right after LXI SP fails, and reports its call site.
	_, console := doCpudiag(nil, t)
	assert.Equal("8080 CPU DIAGNOSTIC\r\n\r\n CPU HAS FAILED!    ERROR EXIT=0181", console.String())
}
