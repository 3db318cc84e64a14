// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/emulator"
	"github.com/ezrec/i8080/internal"
	"github.com/ezrec/i8080/io"
	"github.com/ezrec/i8080/translate"
)

// patchList collects repeated -p options.
type patchList []string

func (pl *patchList) String() string {
	return strings.Join(*pl, ",")
}

func (pl *patchList) Set(value string) error {
	*pl = append(*pl, value)
	return nil
}

func main() {
	var base int
	var cpm bool
	var patches patchList
	var source string
	var steps int
	var undocumented bool
	var trace bool
	var input string
	var output string
	var verbose bool
	var defines bool

	flag.IntVar(&base, "b", -1, "Image load address (default 0x0100 with -cpm, else 0)")
	flag.BoolVar(&cpm, "cpm", false, "Provide the CP/M warm boot and BDOS console calls")
	flag.Var(&patches, "p", "Patch to apply: a built-in name, or a .star script (repeatable)")
	flag.StringVar(&source, "a", "", ".asm file to assemble and run")
	flag.IntVar(&steps, "n", 0, "Maximum instructions to run (0 is unlimited)")
	flag.BoolVar(&undocumented, "u", false, "Decode the undocumented alternate opcodes")
	flag.BoolVar(&trace, "t", false, "Trace the CPU state after every instruction")
	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&defines, "l", false, "List the assembler predefined symbols and exit")

	flag.Parse()

	if defines {
		for name, value := range internal.IterSeq2Sorted(emulator.NewEmulator().Defines()) {
			translate.Fprintf(os.Stdout, ".equ %v %v\n", name, value)
		}
		return
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Cpm = cpm
	emu.Console = os.Stdout
	emu.Cpu.Undocumented = undocumented

	if base < 0 {
		base = 0
		if cpm {
			base = emulator.CPM_TPA
		}
	}

	switch {
	case len(source) != 0 && flag.NArg() == 0:
		inf, err := os.Open(source)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
	case len(source) == 0 && flag.NArg() == 1:
		rom, err := io.LoadRom(flag.Arg(0))
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(0), err)
		}
		emu.Rom = *rom
		emu.Base = base
	default:
		log.Fatalf("%v: expected one image file, or -a source.asm", os.Args[0])
	}

	for _, name := range patches {
		if filepath.Ext(name) == ".star" {
			src, err := os.ReadFile(name)
			if err != nil {
				log.Fatalf("%v: %v", name, err)
			}
			emu.Patches = append(emu.Patches, emulator.PatchScript(name, src, emu.Base))
			continue
		}
		patch, ok := emulator.BuiltinPatches[name]
		if !ok {
			log.Fatalf("%v: %v", name, emulator.ErrPatchMissing)
		}
		emu.Patches = append(emu.Patches, patch)
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if trace {
		err = runTrace(ctx, emu, steps)
	} else {
		err = emu.Run(ctx, steps)
	}

	if verbose || err != nil {
		translate.Fprintf(os.Stderr, "%d instructions, %d cycles\n%v", emu.Cpu.Ticks, emu.Cpu.Cycles, emu.Cpu)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

// runTrace steps the emulator, printing a snapshot after every instruction.
func runTrace(ctx context.Context, emu *emulator.Emulator, steps int) (err error) {
	printer := pp.New()
	printer.SetOutput(os.Stderr)
	printer.SetColoringEnabled(term.IsTerminal(int(os.Stderr.Fd())))

	for n := 0; steps == 0 || n < steps; n++ {
		err = ctx.Err()
		if err != nil {
			return
		}

		text, _ := cpu.Disassemble(&emu.Cpu.Memory, emu.Cpu.Pc)
		printer.Printf("%04X %v\n", emu.Cpu.Pc, text)

		var done bool
		done, err = emu.Tick()
		printer.Println(emu.Cpu.Snapshot())
		if err != nil || done {
			return
		}
	}

	err = emulator.ErrStepLimit
	return
}
