package emulator

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/i8080/cpu"
)

// Patch modifies a loaded image before it runs.
type Patch func(cp *cpu.Cpu) error

// BuiltinPatches are the built-in image patches, by name.
var BuiltinPatches = map[string]Patch{
	"cpudiag": patchCpudiag,
}

// patchCpudiag fixes the stack pointer setup of the Microcosm cpudiag
// image and skips its DAA test.
func patchCpudiag(cp *cpu.Cpu) (err error) {
	// LXI SP,STACK loads 0x06AD; the stack lives at 0x07AD.
	err = cp.Memory.Write(0x0170, 0x07)
	if err != nil {
		return
	}

	// JMP 0x05C2 over the DAA test.
	for n, value := range []uint8{0xc3, 0xc2, 0x05} {
		err = cp.Memory.Write(0x059c+n, value)
		if err != nil {
			return
		}
	}

	return
}

// PatchScript compiles a Starlark patch script. The script sees the
// predeclared functions peek(addr) and poke(addr, value...), and the image
// load address as BASE.
func PatchScript(name string, src any, base int) (patch Patch) {
	patch = func(cp *cpu.Cpu) (err error) {
		peek := func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
			var addr int
			err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
			if err != nil {
				return
			}
			data, err := cp.Memory.Read(addr)
			if err != nil {
				return
			}
			value = starlark.MakeInt(int(data))
			return
		}

		poke := func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
			if len(kwargs) != 0 || len(args) < 2 {
				err = fmt.Errorf("%s: %w", fn.Name(), ErrPatchScript)
				return
			}
			var addr int
			err = starlark.AsInt(args[0], &addr)
			if err != nil {
				return
			}
			for n, arg := range args[1:] {
				var data int
				err = starlark.AsInt(arg, &data)
				if err != nil {
					return
				}
				if data < 0 || data > 0xff {
					err = ErrPatchValue(data)
					return
				}
				err = cp.Memory.Write(addr+n, uint8(data))
				if err != nil {
					return
				}
			}
			value = starlark.None
			return
		}

		pred := starlark.StringDict{
			"peek": starlark.NewBuiltin("peek", peek),
			"poke": starlark.NewBuiltin("poke", poke),
			"BASE": starlark.MakeInt(base),
		}

		thread := &starlark.Thread{Name: name}
		opts := syntax.FileOptions{}
		_, err = starlark.ExecFileOptions(&opts, thread, name, src, pred)
		return
	}

	return
}
