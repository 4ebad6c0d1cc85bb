// Package roboclaw speaks packet-serial to a RoboClaw motor controller on a
// dedicated serial line (the collimator motors ride this, not the shared
// two-wire bus). Each packet is address, command, payload, CRC-16/XModem over
// all preceding bytes; the controller answers a single 0xFF acknowledge.
package roboclaw

import (
	"errors"
	"io"

	"github.com/sigurn/crc16"

	"specmech-go/x/mathx"
)

// DefaultAddress is the controller's factory packet-serial address.
const DefaultAddress = 0x80

// Drive commands (7-bit signed speed forms).
const (
	cmdDriveM1 = 6 // 0 full reverse, 64 stop, 127 full forward
	cmdDriveM2 = 7
)

const ackByte = 0xFF

var (
	ErrNack  = errors.New("roboclaw: command not acknowledged")
	ErrMotor = errors.New("roboclaw: no such motor")
)

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Controller is one RoboClaw on a serial line.
type Controller struct {
	rw   io.ReadWriter
	addr byte
}

// New binds a controller. addr 0 selects DefaultAddress.
func New(rw io.ReadWriter, addr byte) *Controller {
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Controller{rw: rw, addr: addr}
}

// Drive sets one motor's speed: motor is 1 or 2, speed 0..127 with 64 = stop.
func (c *Controller) Drive(motor, speed int) error {
	var cmd byte
	switch motor {
	case 1:
		cmd = cmdDriveM1
	case 2:
		cmd = cmdDriveM2
	default:
		return ErrMotor
	}
	return c.send(cmd, byte(mathx.Clamp(speed, 0, 127)))
}

// Stop halts both motors.
func (c *Controller) Stop() error {
	if err := c.send(cmdDriveM1, 64); err != nil {
		return err
	}
	return c.send(cmdDriveM2, 64)
}

func (c *Controller) send(cmd byte, payload ...byte) error {
	pkt := make([]byte, 0, len(payload)+4)
	pkt = append(pkt, c.addr, cmd)
	pkt = append(pkt, payload...)
	crc := crc16.Checksum(pkt, crcTable)
	pkt = append(pkt, byte(crc>>8), byte(crc))

	if _, err := c.rw.Write(pkt); err != nil {
		return err
	}
	var ack [1]byte
	if _, err := io.ReadFull(c.rw, ack[:]); err != nil {
		return err
	}
	if ack[0] != ackByte {
		return ErrNack
	}
	return nil
}

// Packet renders the wire bytes for a command without sending them. Exposed
// for tests and diagnostics.
func Packet(addr, cmd byte, payload ...byte) []byte {
	pkt := make([]byte, 0, len(payload)+4)
	pkt = append(pkt, addr, cmd)
	pkt = append(pkt, payload...)
	crc := crc16.Checksum(pkt, crcTable)
	return append(pkt, byte(crc>>8), byte(crc))
}
