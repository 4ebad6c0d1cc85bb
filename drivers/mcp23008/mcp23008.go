// Package mcp23008 drives the MCP23008 8-bit port expander over the twi
// transaction driver. Two expanders sit on the board: one switches the
// high-current pneumatic valve drivers, the other reads the GMR cylinder
// sensors.
package mcp23008

import (
	"specmech-go/twi"
)

// Registers.
const (
	IODIR = 0x00 // pin direction; 1 for input, 0 for output
	IPOL  = 0x01 // input polarity
	GPPU  = 0x06 // pullups
	GPIO  = 0x09 // read for input
	OLAT  = 0x0A // write for output
)

// Device is one expander at a fixed 7-bit address.
type Device struct {
	bus  *twi.Master
	addr byte
}

// New binds an expander at addr. The bus must already be configured.
func New(bus *twi.Master, addr byte) Device {
	return Device{bus: bus, addr: addr}
}

// ReadRegister reads one register: write the register pointer, repeated-start
// read one byte. Any bus error is forwarded unchanged.
func (d Device) ReadRegister(reg byte) (byte, error) {
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return 0, err
	}
	if err := d.bus.WriteByte(reg); err != nil {
		d.bus.Stop()
		return 0, err
	}
	if err := d.bus.Start(d.addr, twi.Read); err != nil {
		d.bus.Stop()
		return 0, err
	}
	v := d.bus.ReadLast()
	d.bus.Stop()
	return v, nil
}

// WriteRegister writes one register.
func (d Device) WriteRegister(reg, val byte) error {
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return err
	}
	if err := d.bus.WriteByte(reg); err != nil {
		d.bus.Stop()
		return err
	}
	if err := d.bus.WriteByte(val); err != nil {
		d.bus.Stop()
		return err
	}
	d.bus.Stop()
	return nil
}
