package ds3231_test

import (
	"errors"
	"testing"

	"specmech-go/drivers/ds3231"
	"specmech-go/errcode"
	"specmech-go/twi"
	"specmech-go/twi/twisim"
)

func newClock(t *testing.T) (ds3231.Device, *twisim.Clock) {
	t.Helper()
	bus := twisim.New()
	clk := twisim.NewClock()
	bus.Attach(ds3231.Address, clk)
	return ds3231.New(twi.NewMaster(bus)), clk
}

func TestTimeDecodesBCDRegisters(t *testing.T) {
	dev, clk := newClock(t)
	clk.SetTime(26, 8, 24, 13, 5, 9)

	got, err := dev.Time()
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if got != "2026-08-24T13:05:09Z" {
		t.Fatalf("Time = %q", got)
	}
}

func TestSetTimeRoundTrips(t *testing.T) {
	dev, clk := newClock(t)

	if err := dev.SetTime("2031-12-31T23:59:58"); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	regs := clk.Registers()
	want := [7]byte{0x58, 0x59, 0x23, 1, 0x31, 0x12, 0x31}
	if regs != want {
		t.Fatalf("registers = %#v, want %#v", regs, want)
	}

	got, err := dev.Time()
	if err != nil {
		t.Fatal(err)
	}
	if got != "2031-12-31T23:59:58Z" {
		t.Fatalf("read-back = %q", got)
	}
}

func TestSetTimeRejectsMalformedValues(t *testing.T) {
	dev, _ := newClock(t)
	for _, iso := range []string{
		"",
		"2031-12-31",                // too short
		"2031-12-31T23:59:58Z",      // trailing Z not accepted
		"2031-12-31T23:59:5x",       // non-digit
		"31-12-2031T23:59:58 extra", // wrong layout, right length prefix
	} {
		if err := dev.SetTime(iso); !errors.Is(err, ds3231.ErrBadTime) {
			t.Errorf("SetTime(%q) = %v, want %v", iso, err, ds3231.ErrBadTime)
		}
	}
}

func TestClockAbsentSurfacesNoAck(t *testing.T) {
	dev := ds3231.New(twi.NewMaster(twisim.New()))
	if _, err := dev.Time(); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("Time on empty bus = %v, want %v", err, errcode.NoAck)
	}
	if err := dev.SetTime("2031-12-31T23:59:58"); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("SetTime on empty bus = %v, want %v", err, errcode.NoAck)
	}
}
