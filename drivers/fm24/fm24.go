// Package fm24 drives an FM24-class two-wire FRAM: a flat byte array behind
// a 2-byte address pointer with auto-increment. This is the persistence
// backend for the boot record.
package fm24

import (
	"specmech-go/twi"
)

// Address is the default 7-bit bus address.
const Address = 0x50

// Device is one FRAM on the bus.
type Device struct {
	bus  *twi.Master
	addr byte
}

// New binds a FRAM at the 7-bit address addr.
func New(bus *twi.Master, addr byte) Device {
	return Device{bus: bus, addr: addr}
}

// ReadAt fills dst from the byte offset off.
func (d Device) ReadAt(off uint16, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	if err := d.seek(off); err != nil {
		return err
	}
	if err := d.bus.Start(d.addr, twi.Read); err != nil {
		d.bus.Stop()
		return err
	}
	for i := 0; i < len(dst)-1; i++ {
		dst[i] = d.bus.ReadByte()
	}
	dst[len(dst)-1] = d.bus.ReadLast()
	d.bus.Stop()
	return nil
}

// WriteAt stores src at the byte offset off.
func (d Device) WriteAt(off uint16, src []byte) error {
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return err
	}
	for _, b := range []byte{byte(off >> 8), byte(off)} {
		if err := d.bus.WriteByte(b); err != nil {
			d.bus.Stop()
			return err
		}
	}
	for _, b := range src {
		if err := d.bus.WriteByte(b); err != nil {
			d.bus.Stop()
			return err
		}
	}
	d.bus.Stop()
	return nil
}

func (d Device) seek(off uint16) error {
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return err
	}
	for _, b := range []byte{byte(off >> 8), byte(off)} {
		if err := d.bus.WriteByte(b); err != nil {
			d.bus.Stop()
			return err
		}
	}
	// Repeated start follows; the bus stays claimed.
	return nil
}
