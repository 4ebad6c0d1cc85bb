// Package ds3231 drives the DS3231 day-time clock. The chip keeps seven BCD
// registers (seconds through year); outside this package time travels as the
// ISO string YYYY-MM-DDThh:mm:ssZ, UTC.
package ds3231

import (
	"errors"

	"specmech-go/twi"
)

// Address is the fixed 7-bit bus address.
const Address = 0x68

// ISOLen is the accepted length of a clock-set value: the ISO string without
// the trailing Z, YYYY-MM-DDThh:mm:ss.
const ISOLen = 19

var ErrBadTime = errors.New("ds3231: malformed time string")

// Device is a clock on the bus.
type Device struct {
	bus  *twi.Master
	addr byte
}

// New binds the clock. The bus must already be configured.
func New(bus *twi.Master) Device {
	return Device{bus: bus, addr: Address}
}

// Time reads the clock and returns the ISO time string.
func (d Device) Time() (string, error) {
	var regs [7]byte
	if err := d.read(&regs); err != nil {
		return "", err
	}
	return decodeISO(regs), nil
}

// SetTime sets the clock from an ISO time string. The value must be exactly
// ISOLen bytes (a trailing Z is not accepted here; the wire contract sends
// the 19-character prefix).
func (d Device) SetTime(iso string) error {
	regs, err := encodeBCD(iso)
	if err != nil {
		return err
	}
	return d.write(regs)
}

func (d Device) read(regs *[7]byte) error {
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return err
	}
	if err := d.bus.WriteByte(0x00); err != nil {
		d.bus.Stop()
		return err
	}
	if err := d.bus.Start(d.addr, twi.Read); err != nil {
		d.bus.Stop()
		return err
	}
	for i := 0; i < 6; i++ {
		regs[i] = d.bus.ReadByte()
	}
	regs[6] = d.bus.ReadLast()
	d.bus.Stop()
	return nil
}

func (d Device) write(regs [7]byte) error {
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return err
	}
	if err := d.bus.WriteByte(0x00); err != nil {
		d.bus.Stop()
		return err
	}
	for _, b := range regs {
		if err := d.bus.WriteByte(b); err != nil {
			d.bus.Stop()
			return err
		}
	}
	d.bus.Stop()
	return nil
}

// decodeISO renders the BCD register file as YYYY-MM-DDThh:mm:ssZ. BCD prints
// directly as two hex digits.
func decodeISO(r [7]byte) string {
	out := []byte("20YY-MM-DDThh:mm:ssZ")
	putBCD(out[2:], r[6])  // year
	putBCD(out[5:], r[5])  // month
	putBCD(out[8:], r[4])  // date
	putBCD(out[11:], r[2]) // hours
	putBCD(out[14:], r[1]) // minutes
	putBCD(out[17:], r[0]) // seconds
	return string(out)
}

func putBCD(dst []byte, v byte) {
	dst[0] = '0' + v>>4
	dst[1] = '0' + v&0x0F
}

// encodeBCD builds the register file from YYYY-MM-DDThh:mm:ss.
func encodeBCD(iso string) ([7]byte, error) {
	var regs [7]byte
	if len(iso) != ISOLen {
		return regs, ErrBadTime
	}
	pairs := [...]struct {
		off int // offset into iso
		reg int
	}{
		{17, 0}, // seconds
		{14, 1}, // minutes
		{11, 2}, // hours
		{8, 4},  // date
		{5, 5},  // month
		{2, 6},  // year (two low digits)
	}
	for _, p := range pairs {
		hi, lo := iso[p.off], iso[p.off+1]
		if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
			return regs, ErrBadTime
		}
		regs[p.reg] = (hi-'0')<<4 | (lo - '0')
	}
	regs[3] = 1 // day of week, unused
	return regs, nil
}
