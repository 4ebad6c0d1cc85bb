// Package pneu controls the pneumatic cylinders that move the shutter and
// the two Hartmann doors, and reads their GMR position sensors.
//
// Each cylinder is steered by a pair of air valves: exactly one of the pair
// may be energized to move, and energizing both would short the air supply.
// The valve bits live in a single 8-bit register on the high-current port
// expander, so one mechanism's move is a read-modify-write of that register:
// OR with the mechanism's pair mask, then AND with the direction pattern.
// The or/and pairs below guarantee algebraically that no pair ever ends up
// with both bits set.
package pneu

import (
	"specmech-go/drivers/mcp23008"
	"specmech-go/errcode"
	"specmech-go/proto"
)

// Valve masks. OR with the pair mask first, then AND with the pattern.
const (
	ShutterPair  = 0x22
	ShutterOpen  = 0xCE
	ShutterClose = 0xEC

	LeftPair  = 0x44
	LeftOpen  = 0xAE
	LeftClose = 0xEA

	RightPair  = 0x88
	RightOpen  = 0x6E
	RightClose = 0xE6
)

// Expander is the slice of the port-expander contract this package needs.
// Both expanders (valve driver and sensor reader) satisfy it.
type Expander interface {
	ReadRegister(reg byte) (byte, error)
	WriteRegister(reg, val byte) error
}

// SensorState is the decoded cylinder sensor readout. Each mechanism reports
// 'c' closed, 'o' open, 't' transiting (both sensors), or 'x' indeterminate;
// Air is '1' when supply pressure is present.
type SensorState struct {
	Shutter byte
	Left    byte
	Right   byte
	Air     byte
}

// Valves owns the two expanders.
type Valves struct {
	driver  Expander // high-current valve driver
	sensors Expander // GMR cylinder sensors
}

// New binds the valve driver and sensor expanders.
func New(driver, sensors Expander) *Valves {
	return &Valves{driver: driver, sensors: sensors}
}

// Init puts the high-current expander into output mode with all valves off.
// The sensor expander powers up in input mode and is left alone.
func (v *Valves) Init() error {
	if err := v.driver.WriteRegister(mcp23008.IODIR, 0x00); err != nil {
		return err
	}
	return v.driver.WriteRegister(mcp23008.OLAT, 0x00)
}

// Open moves the selected mechanism toward open.
func (v *Valves) Open(obj proto.Object) error {
	switch obj {
	case proto.ObjectShutter:
		return v.setValves(ShutterPair, ShutterOpen)
	case proto.ObjectLeftDoor:
		return v.setValves(LeftPair, LeftOpen)
	case proto.ObjectRightDoor:
		return v.setValves(RightPair, RightOpen)
	case proto.ObjectBothDoors:
		if err := v.setValves(LeftPair, LeftOpen); err != nil {
			return err
		}
		return v.setValves(RightPair, RightOpen)
	}
	return errcode.UnknownObject
}

// Close moves the selected mechanism toward closed.
func (v *Valves) Close(obj proto.Object) error {
	switch obj {
	case proto.ObjectShutter:
		return v.setValves(ShutterPair, ShutterClose)
	case proto.ObjectLeftDoor:
		return v.setValves(LeftPair, LeftClose)
	case proto.ObjectRightDoor:
		return v.setValves(RightPair, RightClose)
	case proto.ObjectBothDoors:
		if err := v.setValves(LeftPair, LeftClose); err != nil {
			return err
		}
		return v.setValves(RightPair, RightClose)
	}
	return errcode.UnknownObject
}

// setValves is the one read-modify-write valve transaction: read the current
// register, OR the pair mask, AND the direction pattern, write back. Nothing
// else may touch the register between the read and the write; the command
// loop's single-threaded discipline provides that.
func (v *Valves) setValves(orMask, andMask byte) error {
	cur, err := v.driver.ReadRegister(mcp23008.GPIO)
	if err != nil {
		return err
	}
	return v.driver.WriteRegister(mcp23008.OLAT, (cur|orMask)&andMask)
}

// ReadSensors decodes the GMR sensor expander.
func (v *Valves) ReadSensors() (SensorState, error) {
	raw, err := v.sensors.ReadRegister(mcp23008.GPIO)
	if err != nil {
		return SensorState{}, err
	}
	st := SensorState{
		Shutter: decodePair(raw >> 6 & 0x03),
		Left:    decodePairSwapped(raw >> 4 & 0x03),
		Right:   decodePair(raw >> 2 & 0x03),
		Air:     '1',
	}
	if raw&0x02 != 0 {
		st.Air = '0'
	}
	return st, nil
}

func decodePair(bits byte) byte {
	switch bits {
	case 1:
		return 'c'
	case 2:
		return 'o'
	case 3:
		return 't'
	}
	return 'x'
}

// The left door's sensors are wired with the pair swapped.
func decodePairSwapped(bits byte) byte {
	switch bits {
	case 1:
		return 'o'
	case 2:
		return 'c'
	case 3:
		return 't'
	}
	return 'x'
}
