package pneu

import (
	"errors"
	"testing"

	"specmech-go/drivers/mcp23008"
	"specmech-go/errcode"
	"specmech-go/proto"
)

// memExpander is an all-output expander: GPIO reads back the output latch.
type memExpander struct {
	regs [16]byte
	err  error
}

func (m *memExpander) ReadRegister(reg byte) (byte, error) {
	if m.err != nil {
		return 0, m.err
	}
	if reg == mcp23008.GPIO {
		return m.regs[mcp23008.OLAT], nil
	}
	return m.regs[reg], nil
}

func (m *memExpander) WriteRegister(reg, val byte) error {
	if m.err != nil {
		return m.err
	}
	m.regs[reg] = val
	return nil
}

func (m *memExpander) olat() byte { return m.regs[mcp23008.OLAT] }

// Whatever state the register was in beforehand, a move must leave exactly
// the commanded valve of the pair energized.
func TestMoveNeverEnergizesBothValvesOfAPair(t *testing.T) {
	ops := []struct {
		name  string
		obj   proto.Object
		close bool
		pair  byte
		want  byte
	}{
		{"open shutter", proto.ObjectShutter, false, ShutterPair, 0x02},
		{"close shutter", proto.ObjectShutter, true, ShutterPair, 0x20},
		{"open left", proto.ObjectLeftDoor, false, LeftPair, 0x04},
		{"close left", proto.ObjectLeftDoor, true, LeftPair, 0x40},
		{"open right", proto.ObjectRightDoor, false, RightPair, 0x08},
		{"close right", proto.ObjectRightDoor, true, RightPair, 0x80},
	}
	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			for prior := 0; prior < 256; prior++ {
				exp := &memExpander{}
				exp.regs[mcp23008.OLAT] = byte(prior)
				v := New(exp, &memExpander{})

				var err error
				if op.close {
					err = v.Close(op.obj)
				} else {
					err = v.Open(op.obj)
				}
				if err != nil {
					t.Fatalf("prior %#x: %v", prior, err)
				}
				if got := exp.olat() & op.pair; got != op.want {
					t.Fatalf("prior %#x: pair bits = %#x, want %#x", prior, got, op.want)
				}
			}
		})
	}
}

func TestMoveIsIdempotent(t *testing.T) {
	exp := &memExpander{}
	v := New(exp, &memExpander{})

	if err := v.Open(proto.ObjectShutter); err != nil {
		t.Fatal(err)
	}
	first := exp.olat()
	if err := v.Open(proto.ObjectShutter); err != nil {
		t.Fatal(err)
	}
	if exp.olat() != first {
		t.Fatalf("second open changed the register: %#x -> %#x", first, exp.olat())
	}
}

func TestBothDoorsMovesBothPairs(t *testing.T) {
	exp := &memExpander{}
	v := New(exp, &memExpander{})

	if err := v.Close(proto.ObjectBothDoors); err != nil {
		t.Fatal(err)
	}
	if got := exp.olat() & (LeftPair | RightPair); got != 0xC0 {
		t.Fatalf("door pair bits = %#x, want 0xC0", got)
	}
}

func TestUnknownObjectRejected(t *testing.T) {
	v := New(&memExpander{}, &memExpander{})
	if err := v.Open(proto.ObjectVersion); !errors.Is(err, errcode.UnknownObject) {
		t.Fatalf("Open(version) = %v, want %v", err, errcode.UnknownObject)
	}
	if err := v.Close(proto.ObjectUnknown); !errors.Is(err, errcode.UnknownObject) {
		t.Fatalf("Close(unknown) = %v, want %v", err, errcode.UnknownObject)
	}
}

func TestInitDrivesAllValvesOff(t *testing.T) {
	exp := &memExpander{}
	exp.regs[mcp23008.IODIR] = 0xFF
	exp.regs[mcp23008.OLAT] = 0xFF
	v := New(exp, &memExpander{})

	if err := v.Init(); err != nil {
		t.Fatal(err)
	}
	if exp.regs[mcp23008.IODIR] != 0 || exp.olat() != 0 {
		t.Fatalf("post-init IODIR=%#x OLAT=%#x", exp.regs[mcp23008.IODIR], exp.olat())
	}
}

type sensorStub struct{ raw byte }

func (s *sensorStub) ReadRegister(reg byte) (byte, error) { return s.raw, nil }
func (s *sensorStub) WriteRegister(reg, val byte) error   { return nil }

func TestReadSensorsDecode(t *testing.T) {
	cases := []struct {
		name string
		raw  byte
		want SensorState
	}{
		// Shutter bits 7..6, left 5..4 (pair swapped), right 3..2, air bit 1.
		{"all closed air on", 0x64, SensorState{'c', 'c', 'c', '1'}},
		{"all open", 0x98, SensorState{'o', 'o', 'o', '1'}},
		{"shutter transiting", 0xE4, SensorState{'t', 'c', 'c', '1'}},
		{"left indeterminate", 0x44, SensorState{'c', 'x', 'c', '1'}},
		{"air lost", 0x66, SensorState{'c', 'c', 'c', '0'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := New(&memExpander{}, &sensorStub{raw: tc.raw})
			got, err := v.ReadSensors()
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("raw %#x decoded %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestMoveSurfacesBusErrors(t *testing.T) {
	exp := &memExpander{err: errcode.NoAck}
	v := New(exp, &memExpander{})
	if err := v.Open(proto.ObjectShutter); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("Open with dead expander = %v, want %v", err, errcode.NoAck)
	}
}
