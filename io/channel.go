// Package io provides the port devices and program images for the 8080
// emulator. It includes a port Bus dispatching IN and OUT instructions to
// attached devices, sequential byte I/O (Tape), and ROM image loading.
package io

// Port is the 256 entry I/O space addressed by the IN and OUT instructions.
type Port interface {
	// In returns the byte read from a port.
	In(port uint8) (value uint8)
	// Out writes a byte to a port.
	Out(port uint8, value uint8)
}

// Device is a byte stream attached to a port of a Bus.
type Device interface {
	// Rewind resets the device to its initial state.
	Rewind() error
	// Receive reads the next byte. An exhausted device returns io.EOF.
	Receive() (value uint8, err error)
	// Send writes a single byte to the device.
	Send(value uint8) error
}
