package persist_test

import (
	"strings"
	"testing"

	"specmech-go/drivers/fm24"
	"specmech-go/persist"
	"specmech-go/twi"
	"specmech-go/twi/twisim"
)

func newStore(t *testing.T) (persist.Boot, fm24.Device) {
	t.Helper()
	bus := twisim.New()
	bus.Attach(fm24.Address, twisim.NewFRAM())
	dev := fm24.New(twi.NewMaster(bus), fm24.Address)
	return persist.NewBoot(dev), dev
}

func TestBootTimeRoundTrip(t *testing.T) {
	b, _ := newStore(t)
	if err := b.SaveBootTime("2026-08-24T10:00:00Z"); err != nil {
		t.Fatalf("SaveBootTime: %v", err)
	}
	if got := b.BootTime(); got != "2026-08-24T10:00:00Z" {
		t.Fatalf("BootTime = %q", got)
	}
}

func TestFreshStoreReadsUnknown(t *testing.T) {
	b, _ := newStore(t)
	if got := b.BootTime(); got != persist.Unknown {
		t.Fatalf("BootTime on fresh store = %q, want %q", got, persist.Unknown)
	}
}

func TestCorruptRecordReadsUnknown(t *testing.T) {
	b, dev := newStore(t)
	if err := b.SaveBootTime("2026-08-24T10:00:00Z"); err != nil {
		t.Fatal(err)
	}
	// Flip one payload byte behind the record's back.
	if err := dev.WriteAt(persist.RecordOffset+1, []byte{'9'}); err != nil {
		t.Fatal(err)
	}
	if got := b.BootTime(); got != persist.Unknown {
		t.Fatalf("BootTime after corruption = %q, want %q", got, persist.Unknown)
	}
}

func TestRewriteReplacesRecord(t *testing.T) {
	b, _ := newStore(t)
	if err := b.SaveBootTime("2026-08-24T10:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveBootTime("2026-08-25T09:30:00Z"); err != nil {
		t.Fatal(err)
	}
	if got := b.BootTime(); got != "2026-08-25T09:30:00Z" {
		t.Fatalf("BootTime = %q", got)
	}
}

func TestOversizePayloadTruncated(t *testing.T) {
	b, _ := newStore(t)
	long := strings.Repeat("x", 100)
	if err := b.SaveBootTime(long); err != nil {
		t.Fatal(err)
	}
	got := b.BootTime()
	if got == persist.Unknown || len(got) > 32 {
		t.Fatalf("BootTime = %q (len %d)", got, len(got))
	}
}

func TestDeadBusReadsUnknown(t *testing.T) {
	dev := fm24.New(twi.NewMaster(twisim.New()), fm24.Address)
	b := persist.NewBoot(dev)
	if got := b.BootTime(); got != persist.Unknown {
		t.Fatalf("BootTime with no FRAM = %q, want %q", got, persist.Unknown)
	}
	if err := b.SaveBootTime("2026-08-24T10:00:00Z"); err == nil {
		t.Fatal("SaveBootTime with no FRAM succeeded")
	}
}
