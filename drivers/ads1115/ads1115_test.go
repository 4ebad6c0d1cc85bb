package ads1115_test

import (
	"errors"
	"math"
	"testing"

	"specmech-go/drivers/ads1115"
	"specmech-go/errcode"
	"specmech-go/twi"
	"specmech-go/twi/twisim"
)

func newADC(t *testing.T) (*ads1115.Device, *twisim.ADC) {
	t.Helper()
	bus := twisim.New()
	sim := twisim.NewADC()
	bus.Attach(0x48, sim)
	dev := ads1115.New(twi.NewMaster(bus), 0x48)
	dev.PollInterval = 1 // keep polling fast under test
	return dev, sim
}

func TestReadVoltsScalesByGain(t *testing.T) {
	dev, sim := newADC(t)
	sim.SetRaw(0x04, 16384) // AIN0, half scale

	v, err := dev.ReadVolts(ads1115.AIN0, ads1115.PGA4096)
	if err != nil {
		t.Fatalf("ReadVolts: %v", err)
	}
	want := 4.096 / 32767 * 16384
	if math.Abs(float64(v)-want) > 1e-4 {
		t.Fatalf("PGA4096 half scale = %v, want %v", v, want)
	}

	v, err = dev.ReadVolts(ads1115.AIN0, ads1115.PGA6144)
	if err != nil {
		t.Fatal(err)
	}
	want = 6.144 / 32767 * 16384
	if math.Abs(float64(v)-want) > 1e-4 {
		t.Fatalf("PGA6144 half scale = %v, want %v", v, want)
	}
}

func TestReadVoltsSelectsInput(t *testing.T) {
	dev, sim := newADC(t)
	sim.SetRaw(0x04, 1000)
	sim.SetRaw(0x05, -2000)

	v0, err := dev.ReadVolts(ads1115.AIN0, ads1115.PGA2048)
	if err != nil {
		t.Fatal(err)
	}
	v1, err := dev.ReadVolts(ads1115.AIN1, ads1115.PGA2048)
	if err != nil {
		t.Fatal(err)
	}
	if v0 <= 0 || v1 >= 0 {
		t.Fatalf("AIN0 = %v, AIN1 = %v; want positive then negative", v0, v1)
	}
}

func TestReadVoltsWaitsOutTheBusyBit(t *testing.T) {
	dev, sim := newADC(t)
	sim.BusyPolls = 10
	sim.SetRaw(0x04, 123)

	if _, err := dev.ReadVolts(ads1115.AIN0, ads1115.PGA4096); err != nil {
		t.Fatalf("ReadVolts with slow conversion: %v", err)
	}
}

func TestStuckConversionTimesOut(t *testing.T) {
	dev, sim := newADC(t)
	sim.BusyPolls = -1 // never ready
	dev.ReadyAttempts = 5

	if _, err := dev.ReadVolts(ads1115.AIN0, ads1115.PGA4096); !errors.Is(err, errcode.Timeout) {
		t.Fatalf("stuck conversion = %v, want %v", err, errcode.Timeout)
	}
}

func TestADCAbsentSurfacesNoAck(t *testing.T) {
	dev := ads1115.New(twi.NewMaster(twisim.New()), 0x48)
	if _, err := dev.ReadVolts(ads1115.AIN0, ads1115.PGA4096); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("ReadVolts on empty bus = %v, want %v", err, errcode.NoAck)
	}
}
