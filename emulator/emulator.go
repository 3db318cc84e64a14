// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/internal"
	i8080io "github.com/ezrec/i8080/io"
)

const (
	CPM_WBOOT = 0x0000 // Warm boot vector. Reaching it ends a CP/M run.
	CPM_BDOS  = 0x0005 // BDOS entry point.
	CPM_TPA   = 0x0100 // Transient program area, where CP/M images load.

	BDOS_CONOUT = 2 // C=2: write E to the console.
	BDOS_PRINT  = 9 // C=9: write the '$' terminated string at DE.

	TAPE_PORT = 0x01 // Port the Tape is attached to.
)

var _emulator_defines = map[string]string{
	"WBOOT":     fmt.Sprintf("0x%04x", CPM_WBOOT),
	"BDOS":      fmt.Sprintf("0x%04x", CPM_BDOS),
	"TPA":       fmt.Sprintf("0x%04x", CPM_TPA),
	"CONOUT":    fmt.Sprintf("%d", BDOS_CONOUT),
	"PRINT":     fmt.Sprintf("%d", BDOS_PRINT),
	"TAPE_PORT": fmt.Sprintf("0x%02x", TAPE_PORT),
}

// Emulator state. CPU + port bus + program image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of an assembled program, if any.

	Bus  i8080io.Bus  // Port bus, wired to the CPU IN and OUT instructions.
	Tape i8080io.Tape // Tape device on TAPE_PORT.
	Rom  i8080io.Rom  // Image loaded by Reset.
	Base int          // Load address of the image.

	Cpm     bool      // If set, provide the CP/M warm boot and BDOS console calls.
	Console io.Writer // BDOS console output. Discarded when nil.

	Patches []Patch // Applied in order after the image is loaded.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Bus.Attach(TAPE_PORT, &emu.Tape)
	emu.Cpu.Port = &emu.Bus

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble parses a source program, with the emulator defines predefined,
// and uses its binary as the image for the next Reset.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Base, emu.Rom.Data = prog.Binary()
	emu.Rom.Name = "asm"

	return
}

// Reset the CPU, load the image at Base and apply the patches.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Bus.Verbose = emu.Verbose

	emu.Cpu.Reset()

	// Stream inputs, like a pipe on stdin, cannot rewind.
	rewindErr := emu.Bus.Rewind()
	if rewindErr != nil && emu.Verbose {
		log.Printf("emulator: rewind: %v", rewindErr)
	}

	if len(emu.Rom.Data) == 0 {
		err = ErrNoProgram
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %v: %d bytes, xxhash %016x", emu.Rom.Name, len(emu.Rom.Data), emu.Rom.Sum())
	}

	// The CP/M vectors would overwrite an image in the zero page.
	if emu.Cpm && emu.Base < CPM_TPA {
		err = fmt.Errorf("%w: base 0x%04X", ErrCpmBase, emu.Base)
		return
	}

	err = emu.Cpu.Load(emu.Base, emu.Rom.Data)
	if err != nil {
		return
	}

	if emu.Cpm {
		// Warm boot halts; BDOS returns once Tick has serviced the call.
		err = errors.Join(
			emu.Cpu.Memory.Write(CPM_WBOOT, 0x76),
			emu.Cpu.Memory.Write(CPM_BDOS, 0xc9),
		)
		if err != nil {
			return
		}
	}

	for _, patch := range emu.Patches {
		err = patch(emu.Cpu)
		if err != nil {
			return
		}
	}

	return
}

// Load sets the image used by Reset, then resets.
func (emu *Emulator) Load(base int, rom *i8080io.Rom) (err error) {
	emu.Base = base
	emu.Rom = *rom
	emu.Program = &cpu.Program{}

	return emu.Reset()
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// bdos services a CP/M console call at the BDOS entry point.
func (emu *Emulator) bdos() (err error) {
	cp := emu.Cpu

	var text []byte
	switch cp.Register[cpu.REG_C] {
	case BDOS_CONOUT:
		text = []byte{cp.Register[cpu.REG_E]}
	case BDOS_PRINT:
		addr := int(cp.Pair(cpu.PAIR_DE))
		for {
			var value uint8
			value, err = cp.Memory.Read(addr)
			if err != nil {
				return
			}
			if value == '$' {
				break
			}
			text = append(text, value)
			addr++
		}
	default:
		if emu.Verbose {
			log.Printf("emulator: bdos: ignored function %d", cp.Register[cpu.REG_C])
		}
		return
	}

	if emu.Console != nil {
		_, err = emu.Console.Write(text)
	}

	return
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	if emu.Cpm && pc == CPM_BDOS && emu.Cpu.State == cpu.RUNNING {
		err = emu.bdos()
		if err != nil {
			return
		}
	}

	state, err := emu.Cpu.Step()
	done = state.Done()

	return
}

// Run ticks the emulator until it halts, faults, the context is done, or
// maxSteps instructions have run. A maxSteps of zero does not limit the
// run; reaching the limit returns ErrStepLimit.
func (emu *Emulator) Run(ctx context.Context, maxSteps int) (err error) {
	for steps := 0; maxSteps == 0 || steps < maxSteps; steps++ {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	err = &ErrRuntime{LineNo: emu.LineNo(), Pc: emu.Cpu.Pc, Err: ErrStepLimit}
	return
}
