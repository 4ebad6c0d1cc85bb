package twi_test

import (
	"errors"
	"testing"
	"time"

	"specmech-go/drivers/mcp23008"
	"specmech-go/errcode"
	"specmech-go/twi"
	"specmech-go/twi/twisim"
)

func TestStartMissingDeviceIsNoAck(t *testing.T) {
	m := twi.NewMaster(twisim.New())
	if err := m.Start(0x20, twi.Write); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("Start on empty bus = %v, want %v", err, errcode.NoAck)
	}
	m.Stop()
}

func TestStuckHardwareTimesOut(t *testing.T) {
	m := twi.NewMaster(twisim.Stuck(), twi.WithPoll(time.Microsecond, 3))
	if err := m.Start(0x20, twi.Write); !errors.Is(err, errcode.Timeout) {
		t.Fatalf("Start on stuck hardware = %v, want %v", err, errcode.Timeout)
	}
	if b := m.ReadByte(); b != 0xFF {
		t.Fatalf("ReadByte on stuck hardware = %#x, want 0xFF", b)
	}
}

func TestExpanderRegisterRoundTrip(t *testing.T) {
	bus := twisim.New()
	exp := twisim.NewExpander()
	bus.Attach(0x20, exp)
	dev := mcp23008.New(twi.NewMaster(bus), 0x20)

	if err := dev.WriteRegister(mcp23008.OLAT, 0xA5); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	if got := exp.Outputs(); got != 0xA5 {
		t.Fatalf("latched outputs = %#x, want 0xA5", got)
	}
	got, err := dev.ReadRegister(mcp23008.OLAT)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if got != 0xA5 {
		t.Fatalf("ReadRegister = %#x, want 0xA5", got)
	}
}

func TestExpanderGPIOMixesInputsAndOutputs(t *testing.T) {
	bus := twisim.New()
	exp := twisim.NewExpander()
	bus.Attach(0x21, exp)
	dev := mcp23008.New(twi.NewMaster(bus), 0x21)

	// Low nibble outputs, high nibble inputs.
	if err := dev.WriteRegister(mcp23008.IODIR, 0xF0); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteRegister(mcp23008.OLAT, 0x0C); err != nil {
		t.Fatal(err)
	}
	exp.SetInputs(0x50)

	got, err := dev.ReadRegister(mcp23008.GPIO)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x5C {
		t.Fatalf("GPIO = %#x, want 0x5C", got)
	}
}

func TestDriverErrorsForwardedUnchanged(t *testing.T) {
	dev := mcp23008.New(twi.NewMaster(twisim.New()), 0x27)
	if _, err := dev.ReadRegister(mcp23008.GPIO); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("ReadRegister on empty bus = %v, want %v", err, errcode.NoAck)
	}
	if err := dev.WriteRegister(mcp23008.OLAT, 1); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("WriteRegister on empty bus = %v, want %v", err, errcode.NoAck)
	}
}

func TestShimTx(t *testing.T) {
	bus := twisim.New()
	exp := twisim.NewExpander()
	bus.Attach(0x20, exp)
	shim := twi.NewShim(twi.NewMaster(bus))

	// Write the pointer plus a value, then read two registers back.
	if err := shim.Tx(0x20, []byte{mcp23008.OLAT, 0x3C}, nil); err != nil {
		t.Fatalf("Tx write: %v", err)
	}
	var back [1]byte
	if err := shim.Tx(0x20, []byte{mcp23008.OLAT}, back[:]); err != nil {
		t.Fatalf("Tx read: %v", err)
	}
	if back[0] != 0x3C {
		t.Fatalf("Tx read = %#x, want 0x3C", back[0])
	}
	if err := shim.Tx(0x42, []byte{0}, nil); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("Tx to empty address = %v, want %v", err, errcode.NoAck)
	}
}

func TestProbe(t *testing.T) {
	bus := twisim.New()
	bus.Attach(0x20, twisim.NewExpander())
	m := twi.NewMaster(bus)

	if err := twi.Probe(m, 0x20); err != nil {
		t.Fatalf("Probe(present) = %v", err)
	}
	if err := twi.Probe(m, 0x21); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("Probe(absent) = %v, want %v", err, errcode.NoAck)
	}
}
