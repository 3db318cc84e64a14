// Package cpu implements the Intel 8080 microprocessor and an assembler for
// its instruction set.
//
// The CPU consists of seven 8-bit registers (A, B, C, D, E, H, L), a 16-bit
// stack pointer and program counter, five condition flags, and a flat 64K
// memory. The registers B:C, D:E and H:L pair into 16-bit values with the
// first named register as the high byte.
//
// Instructions are decoded through a 256-entry table; each entry names the
// mnemonic, the operand length and the function executing it. Step fetches,
// decodes and executes exactly one instruction.
//
// The assembler accepts Intel mnemonics, labels, equates, macros, and
// compile-time expression evaluation.
package cpu
