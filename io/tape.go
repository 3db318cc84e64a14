package io

import (
	"io"
)

// Tape provides sequential I/O for reading and writing byte streams.
// It wraps an io.Reader for input and io.Writer for output.
type Tape struct {
	Input  io.Reader
	Output io.Writer
}

var _ Device = (*Tape)(nil)

// Rewind seeks the input back to its start, when the input can seek.
func (tc *Tape) Rewind() (err error) {
	seeker, ok := tc.Input.(io.Seeker)
	if ok {
		_, err = seeker.Seek(0, io.SeekStart)
	}
	return
}

// Receive reads one byte from the input stream. A missing or exhausted
// input returns io.EOF.
func (tc *Tape) Receive() (value uint8, err error) {
	if tc.Input == nil {
		err = io.EOF
		return
	}

	var one [1]byte
	_, err = io.ReadFull(tc.Input, one[:])
	if err != nil {
		return
	}

	value = one[0]
	return
}

// Send writes one byte to the output stream.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		err = ErrPortFull
		return
	}

	_, err = tc.Output.Write([]byte{value})
	return
}
