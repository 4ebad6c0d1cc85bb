// Package twisim is the simulated two-wire bus used by tests and by the
// daemon's -sim mode. It implements twi.Hardware with attachable peripheral
// models, so the transaction driver and every device handler run unmodified
// against it.
package twisim

import (
	"time"

	"specmech-go/twi"
)

// Peripheral models one device on the simulated bus.
type Peripheral interface {
	// Start begins a transaction in the given direction and reports whether
	// the device acknowledges the address.
	Start(dir twi.Direction) bool
	// WriteByte accepts one byte and reports the acknowledge bit.
	WriteByte(b byte) bool
	// ReadByte produces the next byte of a read transaction.
	ReadByte() byte
	// Stop ends the transaction.
	Stop()
}

// Bus is a register-level model of the bus controller. Like the real silicon
// it is owned by a single caller at a time; the command loop is the only bus
// user, so no locking is provided.
type Bus struct {
	devs map[byte]Peripheral
	cur  Peripheral

	status byte
	data   byte
}

// New creates an empty simulated bus.
func New() *Bus {
	return &Bus{devs: map[byte]Peripheral{}}
}

// Attach places a peripheral model at a 7-bit address.
func (b *Bus) Attach(addr byte, p Peripheral) {
	b.devs[addr] = p
}

// ReadRegister implements twi.Hardware.
func (b *Bus) ReadRegister(reg twi.Register) byte {
	switch reg {
	case twi.RegStatus:
		return b.status
	case twi.RegData:
		return b.data
	}
	return 0
}

// WriteRegister implements twi.Hardware.
func (b *Bus) WriteRegister(reg twi.Register, v byte) {
	switch reg {
	case twi.RegAddr:
		b.start(v)
	case twi.RegData:
		b.write(v)
	case twi.RegCtrl:
		b.control(v)
	}
}

// Delay implements twi.Hardware. Simulated time passes instantly.
func (b *Bus) Delay(time.Duration) {}

func (b *Bus) start(v byte) {
	addr := v >> 1
	dir := twi.Direction(v & 1)

	flag := byte(twi.StatusWIF)
	if dir == twi.Read {
		flag = twi.StatusRIF
	}

	dev, ok := b.devs[addr]
	if !ok || !dev.Start(dir) {
		b.cur = nil
		b.status = flag | twi.StatusRXACK
		return
	}
	b.cur = dev
	b.status = flag
	if dir == twi.Read {
		b.data = dev.ReadByte()
	}
}

func (b *Bus) write(v byte) {
	if b.cur == nil {
		b.status = twi.StatusWIF | twi.StatusBusErr
		return
	}
	if b.cur.WriteByte(v) {
		b.status = twi.StatusWIF
	} else {
		b.status = twi.StatusWIF | twi.StatusRXACK
	}
}

func (b *Bus) control(v byte) {
	switch v {
	case twi.CmdRecvAck:
		if b.cur != nil {
			b.data = b.cur.ReadByte()
			b.status = twi.StatusRIF
		}
	case twi.CmdRecvNack:
		// Final byte already latched in data; nothing more to clock in.
	case twi.CmdStop:
		if b.cur != nil {
			b.cur.Stop()
			b.cur = nil
		}
		b.status = 0
	}
}

// Stuck returns a Hardware whose status flags never rise, for exercising the
// driver's bounded waits.
func Stuck() twi.Hardware { return stuck{} }

type stuck struct{}

func (stuck) ReadRegister(twi.Register) byte   { return 0 }
func (stuck) WriteRegister(twi.Register, byte) {}
func (stuck) Delay(time.Duration)              {}
