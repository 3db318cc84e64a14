package emulator

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	ErrPatchMissing = errors.New(f("patch missing"))
	ErrPatchScript  = errors.New(f("patch script"))
	ErrNoProgram    = errors.New(f("no program"))
	ErrStepLimit    = errors.New(f("step limit reached"))
	ErrCpmBase      = errors.New(f("CP/M image below the TPA"))
)

// ErrPatchValue is a patch script argument that is not a valid byte or address.
type ErrPatchValue int64

func (err ErrPatchValue) Error() string {
	return f("patch value 0x%x out of range", int64(err))
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int    // Source line, when a program listing is loaded.
	Pc     uint16 // Address of the faulting instruction.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("pc 0x%04X %v", err.Pc, err.Err)
	}
	return f("line %d (pc 0x%04X) %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
