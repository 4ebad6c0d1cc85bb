// Package ads1115 drives the ADS1115 16-bit ADC. One conversion per call:
// write the config register to start, poll the ready bit with a bounded
// number of attempts, then read the conversion register. A stuck conversion
// surfaces errcode.Timeout instead of hanging the command loop.
package ads1115

import (
	"time"

	"specmech-go/errcode"
	"specmech-go/twi"
)

// Register pointer values.
const (
	regConversion = 0x00
	regConfig     = 0x01
)

// Programmable gain settings (config high byte bits 11..9) and the volts per
// count each one yields on the 15-bit full scale.
const (
	PGA6144 = 0x00 << 1
	PGA4096 = 0x01 << 1
	PGA2048 = 0x02 << 1 // default
	PGA1024 = 0x03 << 1
	PGA0512 = 0x04 << 1
	PGA0256 = 0x05 << 1
)

// Single-ended input selections (config high byte bits 14..12).
const (
	AIN0 = 0x04 << 4
	AIN1 = 0x05 << 4
	AIN2 = 0x06 << 4
	AIN3 = 0x07 << 4
)

// Rate128SPS is the only data rate the board uses (config low byte bits 7..5).
const Rate128SPS = 0x04 << 5

func scaleFor(gain byte) float32 {
	switch gain {
	case PGA0256:
		return 0.256 / 32767
	case PGA0512:
		return 0.512 / 32767
	case PGA1024:
		return 1.024 / 32767
	case PGA2048:
		return 2.048 / 32767
	case PGA4096:
		return 4.096 / 32767
	default:
		return 6.144 / 32767
	}
}

// Device is one ADC on the bus.
type Device struct {
	bus  *twi.Master
	addr byte

	// ReadyAttempts bounds the ready-bit poll. Zero means the default 50.
	ReadyAttempts int
	// PollInterval is the delay between ready-bit polls. Zero means 1ms.
	PollInterval time.Duration
}

// New binds an ADC at the 7-bit address addr.
func New(bus *twi.Master, addr byte) *Device {
	return &Device{bus: bus, addr: addr}
}

// ReadVolts performs one single-shot conversion on the selected input and
// returns the input voltage. gain is one of the PGA constants, mux one of the
// AIN constants.
func (d *Device) ReadVolts(mux, gain byte) (float32, error) {
	// Start a single-shot conversion.
	confHi := 0x81 | gain | mux // OS set, single-shot mode
	confLo := byte(Rate128SPS | 0x03)
	if err := d.writeConfig(confHi, confLo); err != nil {
		return 0, err
	}

	// Bounded wait for the ready bit.
	attempts := d.ReadyAttempts
	if attempts <= 0 {
		attempts = 50
	}
	poll := d.PollInterval
	if poll <= 0 {
		poll = time.Millisecond
	}
	ready := false
	for i := 0; i < attempts; i++ {
		flag, err := d.readPointed()
		if err != nil {
			return 0, err
		}
		if flag&0x80 != 0 {
			ready = true
			break
		}
		d.wait(poll)
	}
	if !ready {
		return 0, errcode.Timeout
	}

	// Point at the conversion register and read the count.
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return 0, err
	}
	if err := d.bus.WriteByte(regConversion); err != nil {
		d.bus.Stop()
		return 0, err
	}
	if err := d.bus.Start(d.addr, twi.Read); err != nil {
		d.bus.Stop()
		return 0, err
	}
	hi := d.bus.ReadByte()
	lo := d.bus.ReadLast()
	d.bus.Stop()

	count := int16(uint16(hi)<<8 | uint16(lo))
	return scaleFor(gain) * float32(count), nil
}

func (d *Device) writeConfig(hi, lo byte) error {
	if err := d.bus.Start(d.addr, twi.Write); err != nil {
		d.bus.Stop()
		return err
	}
	for _, b := range []byte{regConfig, hi, lo} {
		if err := d.bus.WriteByte(b); err != nil {
			d.bus.Stop()
			return err
		}
	}
	d.bus.Stop()
	return nil
}

// readPointed reads one byte of the currently pointed register (the config
// high byte, which carries the ready bit).
func (d *Device) readPointed() (byte, error) {
	if err := d.bus.Start(d.addr, twi.Read); err != nil {
		d.bus.Stop()
		return 0, err
	}
	b := d.bus.ReadLast()
	d.bus.Stop()
	return b, nil
}

func (d *Device) wait(dur time.Duration) {
	time.Sleep(dur)
}
