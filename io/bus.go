package io

import (
	"errors"
	"fmt"
	"io"
	"log"
)

const (
	BUS_FLOATING = uint8(0xff) // Value read from a port with no data.
)

// Bus routes port numbers to devices.
type Bus struct {
	Verbose bool // If set, logs port traffic.

	device map[uint8]Device
}

var _ Port = (*Bus)(nil)

// Attach connects a device to a port. A nil device detaches the port.
func (bus *Bus) Attach(port uint8, device Device) {
	if device == nil {
		delete(bus.device, port)
		return
	}

	if bus.device == nil {
		bus.device = make(map[uint8]Device)
	}
	bus.device[port] = device
}

// Device returns the device attached to a port.
func (bus *Bus) Device(port uint8) (device Device, ok bool) {
	device, ok = bus.device[port]
	return
}

// Rewind rewinds every attached device, joining their errors.
func (bus *Bus) Rewind() (err error) {
	for port, device := range bus.device {
		rewindErr := device.Rewind()
		if rewindErr != nil {
			err = errors.Join(err, fmt.Errorf("port 0x%02X: %w", port, rewindErr))
		}
	}
	return
}

// In reads from the device on a port. Unattached ports and exhausted
// devices read as BUS_FLOATING.
func (bus *Bus) In(port uint8) (value uint8) {
	value = BUS_FLOATING

	device, ok := bus.device[port]
	if ok {
		data, err := device.Receive()
		switch {
		case err == nil:
			value = data
		case errors.Is(err, io.EOF):
		case bus.Verbose:
			log.Printf("bus: in 0x%02X: %v", port, err)
		}
	}

	if bus.Verbose {
		log.Printf("bus: in 0x%02X = 0x%02X", port, value)
	}

	return
}

// Out writes to the device on a port. Writes to unattached ports are
// dropped.
func (bus *Bus) Out(port uint8, value uint8) {
	if bus.Verbose {
		log.Printf("bus: out 0x%02X = 0x%02X", port, value)
	}

	device, ok := bus.device[port]
	if !ok {
		return
	}

	err := device.Send(value)
	if err != nil && bus.Verbose {
		log.Printf("bus: out 0x%02X: %v", port, err)
	}
}
