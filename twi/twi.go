// Package twi is the shared two-wire bus transaction driver.
//
// Every peripheral on the board (port expanders, ADC, clock, FRAM, ambient
// thermometer) is reached through the five primitives on Master: Start,
// WriteByte, ReadByte, ReadLast, Stop. Between Start and Stop the calling
// transaction owns the bus; exclusivity is enforced by single-threaded call
// discipline, since only the command loop performs bus I/O. The driver never
// retries and never interprets an error's meaning; device handlers forward
// bus errors unchanged to their callers.
//
// The controller registers of the silicon are abstracted behind Hardware so
// the driver and everything above it run against simulated hardware (see
// twisim).
package twi

import (
	"time"

	"specmech-go/errcode"
)

// Direction selects the transfer direction of a transaction.
type Direction uint8

const (
	Write Direction = 0
	Read  Direction = 1
)

// Register identifies one of the bus controller's registers.
type Register uint8

const (
	RegCtrl   Register = iota // command register
	RegStatus                 // flags below
	RegAddr                   // address + direction bit
	RegData                   // transmit/receive data
)

// Status flags.
const (
	StatusWIF     = 1 << 6 // write complete
	StatusRIF     = 1 << 7 // read data ready
	StatusRXACK   = 1 << 4 // set when the peripheral did NOT acknowledge
	StatusArbLost = 1 << 3
	StatusBusErr  = 1 << 2
)

// Commands written to RegCtrl.
const (
	CmdRecvAck  = 0x02 // acknowledge received byte, clock in the next
	CmdRecvNack = 0x03 // end-of-read: NACK the final byte
	CmdStop     = 0x01 // release the bus
)

// Hardware is the capability set the driver needs from the silicon.
type Hardware interface {
	ReadRegister(reg Register) byte
	WriteRegister(reg Register, v byte)
	Delay(d time.Duration)
}

// Master drives transactions on one bus.
type Master struct {
	hw       Hardware
	poll     time.Duration
	attempts int
}

// Option configures a Master.
type Option func(*Master)

// WithPoll sets the flag poll interval and attempt bound. Every wait for a
// status flag is bounded: attempts*poll is the longest any primitive blocks
// before surfacing errcode.Timeout.
func WithPoll(poll time.Duration, attempts int) Option {
	return func(m *Master) {
		if poll > 0 {
			m.poll = poll
		}
		if attempts > 0 {
			m.attempts = attempts
		}
	}
}

// NewMaster creates a driver over hw. Defaults: 10us poll, 1000 attempts.
func NewMaster(hw Hardware, opts ...Option) *Master {
	m := &Master{hw: hw, poll: 10 * time.Microsecond, attempts: 1000}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start issues a start (or repeated start) condition addressing the 7-bit
// peripheral address addr in the given direction.
func (m *Master) Start(addr byte, dir Direction) error {
	m.hw.WriteRegister(RegAddr, addr<<1|byte(dir))
	flag := byte(StatusWIF)
	if dir == Read {
		flag = StatusRIF
	}
	st, err := m.waitFlag(flag)
	if err != nil {
		return err
	}
	if st&StatusArbLost != 0 {
		return errcode.ArbLost
	}
	if st&StatusBusErr != 0 {
		return errcode.BusFault
	}
	if st&StatusRXACK != 0 {
		return errcode.NoAck
	}
	return nil
}

// WriteByte transmits one byte within an open write transaction.
func (m *Master) WriteByte(b byte) error {
	m.hw.WriteRegister(RegData, b)
	st, err := m.waitFlag(StatusWIF)
	if err != nil {
		return err
	}
	if st&StatusArbLost != 0 {
		return errcode.ArbLost
	}
	if st&StatusRXACK != 0 {
		return errcode.NoAck
	}
	return nil
}

// ReadByte receives one byte and acknowledges it, clocking in the next.
// A released bus reads as 0xFF; Start(Read) has already vetted the peripheral,
// so a timeout here yields 0xFF rather than an error.
func (m *Master) ReadByte() byte {
	if _, err := m.waitFlag(StatusRIF); err != nil {
		return 0xFF
	}
	b := m.hw.ReadRegister(RegData)
	m.hw.WriteRegister(RegCtrl, CmdRecvAck)
	return b
}

// ReadLast receives the final byte of a read transaction and signals
// end-of-transfer (NACK) to the peripheral. The caller still issues Stop.
func (m *Master) ReadLast() byte {
	if _, err := m.waitFlag(StatusRIF); err != nil {
		return 0xFF
	}
	b := m.hw.ReadRegister(RegData)
	m.hw.WriteRegister(RegCtrl, CmdRecvNack)
	return b
}

// Stop releases the bus, ending the transaction.
func (m *Master) Stop() {
	m.hw.WriteRegister(RegCtrl, CmdStop)
}

// Probe checks that the peripheral at addr acknowledges its address. The
// transaction carries no data; it is the self-test primitive.
func Probe(m *Master, addr byte) error {
	err := m.Start(addr, Write)
	m.Stop()
	return err
}

func (m *Master) waitFlag(flag byte) (byte, error) {
	for i := 0; i < m.attempts; i++ {
		st := m.hw.ReadRegister(RegStatus)
		if st&flag != 0 {
			return st, nil
		}
		m.hw.Delay(m.poll)
	}
	return 0, errcode.Timeout
}
