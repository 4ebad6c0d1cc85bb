package fm24_test

import (
	"bytes"
	"errors"
	"testing"

	"specmech-go/drivers/fm24"
	"specmech-go/errcode"
	"specmech-go/twi"
	"specmech-go/twi/twisim"
)

func newDevice(t *testing.T) fm24.Device {
	t.Helper()
	bus := twisim.New()
	bus.Attach(fm24.Address, twisim.NewFRAM())
	return fm24.New(twi.NewMaster(bus), fm24.Address)
}

func TestWriteReadAt(t *testing.T) {
	dev := newDevice(t)
	msg := []byte("boot record payload")
	if err := dev.WriteAt(0x0100, msg); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	got := make([]byte, len(msg))
	if err := dev.ReadAt(0x0100, got); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("ReadAt = %q, want %q", got, msg)
	}

	// Offset reads see the autoincremented layout, not the start.
	tail := make([]byte, 6)
	if err := dev.ReadAt(0x0100+13, tail); err != nil {
		t.Fatal(err)
	}
	if string(tail) != "payload"[1:] {
		t.Fatalf("tail = %q", tail)
	}
}

func TestDistinctOffsetsDoNotOverlap(t *testing.T) {
	dev := newDevice(t)
	if err := dev.WriteAt(0, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteAt(8, []byte{9}); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 3)
	if err := dev.ReadAt(0, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("first record = %v", got)
	}
}

func TestAbsentPartSurfacesNoAck(t *testing.T) {
	dev := fm24.New(twi.NewMaster(twisim.New()), fm24.Address)
	if err := dev.WriteAt(0, []byte{1}); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("WriteAt = %v, want %v", err, errcode.NoAck)
	}
	if err := dev.ReadAt(0, make([]byte, 1)); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("ReadAt = %v, want %v", err, errcode.NoAck)
	}
}
