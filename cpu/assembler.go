// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the 8080.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr    int // Current assembly address.
	expands int // Count of macro expansions, for local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// mnemonicMap maps upper case mnemonics to their candidate opcodes. It is
// built on first use, after the decode table is initialized.
var mnemonicMap = sync.OnceValue(func() map[string][]uint8 {
	mnemonics := map[string][]uint8{}
	for opcode := range Instructions {
		inst := &Instructions[opcode]
		if inst.Exec == nil {
			continue
		}
		mnemonic := inst.Mnemonic()
		mnemonics[mnemonic] = append(mnemonics[mnemonic], uint8(opcode))
	}
	return mnemonics
})

// valueOf returns the value of a simple word: a number, or a known label.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if len(word) > 1 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}

	addr, ok := asm.Label[word]
	if ok {
		value = int64(addr)
	} else {
		value, err = parseNumber(word)
		if err != nil {
			return
		}
	}

	if invert {
		value = ^value
	}

	return
}

// parseNumber parses Go style literals and Intel style hex (0FFH).
func parseNumber(word string) (value int64, err error) {
	text := word
	base := 0
	if len(text) > 1 && (text[len(text)-1] == 'h' || text[len(text)-1] == 'H') && text[0] >= '0' && text[0] <= '9' {
		text = text[:len(text)-1]
		base = 16
	}
	value, err = strconv.ParseInt(text, base, 32)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// isSymbol reports whether a word could name a label.
func isSymbol(word string) bool {
	if len(word) == 0 {
		return false
	}
	for n, c := range word {
		switch {
		case c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case n > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// operand encodes a numeric operand of the given width into bytes,
// recording a link when the word is a label not yet defined.
func (asm *Assembler) operand(op *Opcode, word string, bits int) (err error) {
	index := len(op.Bytes)
	for range bits / 8 {
		op.Bytes = append(op.Bytes, 0)
	}

	value, err := asm.valueOf(word)
	if err != nil {
		if !isSymbol(word) {
			return
		}
		err = nil
		op.Links = append(op.Links, Link{Label: word, Index: index, Bits: bits})
		return
	}

	return putValue(op, index, value, bits)
}

// putValue stores a little-endian value after checking its range.
func putValue(op *Opcode, index int, value int64, bits int) (err error) {
	limit := int64(1) << bits
	if value >= limit || value < -(limit>>1) {
		err = ErrOperandRange{Value: value, Bits: bits}
		return
	}

	for n := range bits / 8 {
		op.Bytes[index+n] = uint8(value >> (8 * n))
	}
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// charEscapes are the backslash escapes of a character literal.
var charEscapes = map[byte]byte{
	'\\': '\\',
	'0':  0x00,
	'e':  0x1b,
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// symbols returns the integer valued equates, the labels, and HERE for
// expression evaluation.
func (asm *Assembler) symbols() (env starlark.StringDict) {
	env = starlark.StringDict{}
	for key, text := range asm.Equate {
		value, err := asm.valueOf(text)
		if err != nil {
			// Registers and other words.
			continue
		}
		env[key] = starlark.MakeInt64(value)
	}
	for key, addr := range asm.Label {
		env[key] = starlark.MakeInt(addr)
	}
	env["HERE"] = starlark.MakeInt(asm.addr)

	return
}

// evaluate computes a compile-time $(...) expression.
func (asm *Assembler) evaluate(expr string) (value int64, err error) {
	thread := &starlark.Thread{Name: "asm"}
	result, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "expr", expr, asm.symbols())
	if err != nil {
		return
	}

	number, ok := result.(starlark.Int)
	if ok {
		value, ok = number.Int64()
	}
	if !ok {
		err = ErrParseExpression(expr)
	}
	return
}

// character returns the value of a 'x' or '\x' literal.
func character(literal string) (value byte, ok bool) {
	text := literal[1 : len(literal)-1]
	switch {
	case len(text) == 1:
		value, ok = text[0], true
	case len(text) == 2 && text[0] == '\\':
		value, ok = charEscapes[text[1]]
	}
	return
}

// expand replaces character literals and $(...) expressions by their
// decimal values.
func (asm *Assembler) expand(line string) (text string, err error) {
	text = reCharacter.ReplaceAllStringFunc(line, func(literal string) string {
		value, ok := character(literal)
		if !ok {
			return literal
		}
		return strconv.Itoa(int(value))
	})

	text = reExpression.ReplaceAllStringFunc(text, func(expr string) string {
		value, exprErr := asm.evaluate(expr[2 : len(expr)-1])
		if exprErr != nil && err == nil {
			err = exprErr
		}
		return strconv.FormatInt(value, 10)
	})

	return
}

// splitWords splits a line on spaces, tabs and commas, keeping double
// quoted strings as one word.
func splitWords(line string) (words []string) {
	var word strings.Builder
	quoted := false
	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
			word.WriteRune(c)
		case !quoted && (c == ' ' || c == '\t' || c == ','):
			flush()
		default:
			word.WriteRune(c)
		}
	}
	flush()

	return
}

// equate defines a constant: .equ NAME VALUE
func (asm *Assembler) equate(args []string) (err error) {
	if len(args) != 2 {
		return ErrEquateSyntax
	}
	if _, ok := asm.Equate[args[0]]; ok {
		return ErrEquateDuplicate
	}

	asm.Equate[args[0]] = args[1]
	return
}

// labels binds the leading 'name:' words of a line to the current address,
// and returns the words that follow them.
func (asm *Assembler) labels(words []string) (rest []string, err error) {
	rest = words
	for len(rest) > 0 {
		label, ok := strings.CutSuffix(rest[0], ":")
		if !ok {
			break
		}
		if _, dup := asm.Label[label]; dup {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.addr
		rest = rest[1:]
	}

	return
}

// expandMacro assembles the body of a macro. The arguments are bound as
// equates, and '@' becomes a prefix unique to this expansion.
func (asm *Assembler) expandMacro(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		return ErrMacroSyntax
	}

	saved := maps.Clone(asm.Equate)
	defer func() { asm.Equate = saved }()
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}

	local := fmt.Sprintf("%v_%v_", name, asm.expands)
	asm.expands++

	for n, text := range macro.Lines {
		lineno := macro.LineNo + n
		text = strings.ReplaceAll(text, "@", local)

		var words []string
		words, err = asm.parseLine(text, lineno)
		if err == nil {
			err = asm.parseWords(words, lineno)
		}
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
			return
		}
	}

	return
}

// parseLine expands a line and returns the words left to assemble once
// equates, labels and macros are dealt with.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	line, err = asm.expand(line)
	if err != nil {
		return
	}

	words = splitWords(line)
	if len(words) == 0 {
		return
	}

	if words[0] == ".equ" {
		err = asm.equate(words[1:])
		words = nil
		return
	}

	for n, word := range words {
		value, ok := asm.Equate[word]
		if ok {
			words[n] = value
		}
	}

	words, err = asm.labels(words)
	if err != nil || len(words) == 0 {
		return
	}

	macro, ok := asm.Macro[words[0]]
	if ok {
		err = asm.expandMacro(words[0], macro, words[1:])
		words = nil
	}

	return
}

// defineMacro opens a macro definition: .macro NAME arg...
func (asm *Assembler) defineMacro(pending *Macro, args []string, lineno int) (macro *Macro, err error) {
	switch {
	case pending != nil:
		err = ErrMacroNesting
	case len(args) == 0:
		err = ErrMacroSyntax
	default:
		if _, ok := asm.Macro[args[0]]; ok {
			err = ErrMacroDuplicate
			return
		}
		macro = &Macro{LineNo: lineno + 1, Args: args[1:]}
		asm.Macro[args[0]] = macro
	}

	return
}

// link resolves the label fix-ups of every opcode. On failure, op is the
// opcode that could not be linked.
func (asm *Assembler) link() (op *Opcode, err error) {
	for n := range asm.Opcode {
		op = &asm.Opcode[n]
		for _, fixup := range op.Links {
			addr, ok := asm.Label[fixup.Label]
			if !ok {
				err = ErrLabelMissing(fixup.Label)
				return
			}
			err = putValue(op, fixup.Index, int64(addr), fixup.Bits)
			if err != nil {
				return
			}
		}
		op.Links = nil
	}

	return
}

// reset clears the state left by a previous Parse.
func (asm *Assembler) reset() {
	asm.Opcode = asm.Opcode[:0]
	asm.Label = map[string]int{}
	asm.Macro = map[string]*Macro{}
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)
	asm.addr = 0
	asm.expands = 0
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro // Macro being defined.

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.reset()

	for scanner.Scan() {
		text := scanner.Text()
		lineno++

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := splitWords(line)

		var directive string
		if len(words) > 0 {
			directive = words[0]
		}

		switch {
		case directive == ".macro":
			macro, err = asm.defineMacro(macro, words[1:], lineno)
		case directive == ".endm":
			if macro == nil {
				err = ErrMacroLonelyEndm
			}
			macro = nil
		case macro != nil:
			macro.Lines = append(macro.Lines, line)
		default:
			words, err = asm.parseLine(line, lineno)
			if err == nil {
				err = asm.parseWords(words, lineno)
			}
		}
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	op, err := asm.link()
	if err != nil {
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// stripComment removes a ';' comment that is not inside a string or a
// character literal.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '"':
			quoted = !quoted
		case '\'':
			if !quoted && n+2 < len(text) && text[n+2] == '\'' {
				n += 2
			}
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// matchInstruction finds the opcode whose operand template fits args.
func matchInstruction(mnemonic string, args []string) (opcode uint8, inst *Instruction, err error) {
	candidates, ok := mnemonicMap()[strings.ToUpper(mnemonic)]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	err = ErrOperandInvalid
	for _, candidate := range candidates {
		operands := Instructions[candidate].Operands()
		if len(operands) != len(args) {
			continue
		}
		matched := true
		for n, operand := range operands {
			switch operand {
			case OPERAND_D8, OPERAND_D16, OPERAND_A16:
			default:
				matched = matched && strings.EqualFold(operand, args[n])
			}
		}
		if matched {
			opcode = candidate
			inst = &Instructions[candidate]
			err = nil
			return
		}
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	op := Opcode{LineNo: lineno, Addr: asm.addr, Words: words}

	defer func() {
		if err != nil || len(op.Bytes) == 0 {
			return
		}
		asm.Opcode = append(asm.Opcode, op)
		asm.addr += len(op.Bytes)
	}()

	args := words[1:]

	switch words[0] {
	case ".org":
		if len(args) != 1 {
			err = ErrDirectiveSyntax
			return
		}
		var value int64
		value, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if value < int64(asm.addr) && len(asm.Opcode) > 0 {
			err = ErrOrgBackwards
			return
		}
		if value >= MEMORY_SIZE {
			err = ErrOperandRange{Value: value, Bits: 16}
			return
		}
		asm.addr = int(value)
		op.Addr = asm.addr
	case ".db":
		if len(args) == 0 {
			err = ErrDirectiveSyntax
			return
		}
		for _, arg := range args {
			if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
				op.Bytes = append(op.Bytes, arg[1:len(arg)-1]...)
				continue
			}
			err = asm.operand(&op, arg, 8)
			if err != nil {
				return
			}
		}
	case ".dw":
		if len(args) == 0 {
			err = ErrDirectiveSyntax
			return
		}
		for _, arg := range args {
			err = asm.operand(&op, arg, 16)
			if err != nil {
				return
			}
		}
	case ".ds":
		if len(args) != 1 {
			err = ErrDirectiveSyntax
			return
		}
		var count int64
		count, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if count < 0 || int64(asm.addr)+count > MEMORY_SIZE {
			err = ErrOperandRange{Value: count, Bits: 16}
			return
		}
		op.Bytes = make([]uint8, count)
	default:
		if strings.HasPrefix(words[0], ".") {
			err = ErrDirectiveSyntax
			return
		}
		var opcode uint8
		var inst *Instruction
		opcode, inst, err = matchInstruction(words[0], args)
		if err != nil {
			return
		}
		op.Bytes = append(op.Bytes, opcode)
		for n, operand := range inst.Operands() {
			switch operand {
			case OPERAND_D8:
				err = asm.operand(&op, args[n], 8)
			case OPERAND_D16, OPERAND_A16:
				err = asm.operand(&op, args[n], 16)
			}
			if err != nil {
				return
			}
		}
	}

	if asm.addr+len(op.Bytes) > MEMORY_SIZE {
		err = ErrOperandRange{Value: int64(asm.addr + len(op.Bytes)), Bits: 16}
		return
	}

	return
}
