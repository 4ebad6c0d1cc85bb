// Package mcp9808 provides a driver for the MCP9808 ambient temperature
// sensor. It is written against the tinygo driver Tx contract, so it runs on
// any drivers.I2C; on this board that is twi.Shim over the shared transaction
// driver.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package mcp9808

import (
	"tinygo.org/x/drivers"
)

// Address is the default 7-bit address (all address pins low).
const Address = 0x18

const regAmbient = 0x05

// Device wraps an I2C connection to an MCP9808.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [2]byte // reuse buffer to avoid allocations
}

// New creates a new MCP9808 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not touch
// the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// ReadCelsius reads the ambient temperature register.
func (d *Device) ReadCelsius() (float32, error) {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, []byte{regAmbient}, data); err != nil {
		return 0, err
	}
	raw := uint16(data[0])<<8 | uint16(data[1])
	raw &= 0x1FFF // strip alert flags
	if raw&0x1000 != 0 {
		// Negative: sign-extend the 13-bit value.
		return float32(int16(raw|0xE000)) / 16, nil
	}
	return float32(raw) / 16, nil
}

// DeciCelsius returns tenths of degC, avoiding floats on the hot path.
func (d *Device) DeciCelsius() (int32, error) {
	c, err := d.ReadCelsius()
	if err != nil {
		return 0, err
	}
	return int32(c * 10), nil
}
