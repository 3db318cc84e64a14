package cpu

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrDirectiveSyntax    = errors.New(f("directive syntax"))
	ErrOrgBackwards       = errors.New(f(".org moves backwards"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrUnimplementedOpcode is the fault raised when the fetched byte has no
// defined decoding.
type ErrUnimplementedOpcode struct {
	Opcode uint8
	Pc     uint16
}

func (err ErrUnimplementedOpcode) Error() string {
	return f("opcode 0x%02X unimplemented at 0x%04X", err.Opcode, err.Pc)
}

func (err ErrUnimplementedOpcode) Is(target error) (ok bool) {
	_, ok = target.(ErrUnimplementedOpcode)
	return
}

// ErrMemoryRange is the fault raised by an access outside the address space.
type ErrMemoryRange struct {
	Addr  int
	Write bool
}

func (err ErrMemoryRange) Error() string {
	kind := f("read")
	if err.Write {
		kind = f("write")
	}
	return f("memory %v out of range at 0x%X", kind, err.Addr)
}

func (err ErrMemoryRange) Is(target error) (ok bool) {
	_, ok = target.(ErrMemoryRange)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrOperandRange reports an operand value too wide for its field.
type ErrOperandRange struct {
	Value int64
	Bits  int
}

func (err ErrOperandRange) Error() string {
	return f("value %#x does not fit in %d bits", err.Value, err.Bits)
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
