package twisim

import (
	"specmech-go/twi"
)

// ---------------------------------------------------------------------------
// Port expander (MCP23008 model)
// ---------------------------------------------------------------------------

// Expander register indices, mirroring the real part.
const (
	ExpIODIR = 0x00
	ExpGPIO  = 0x09
	ExpOLAT  = 0x0A
)

// Expander models an 8-bit port expander. A write transaction's first byte
// selects the register pointer; reads return the pointed register. Input pin
// levels are driven with SetInputs.
type Expander struct {
	regs   [11]byte
	inputs byte
	ptr    byte
	hasPtr bool
}

// NewExpander creates an expander with all pins as inputs (reset state).
func NewExpander() *Expander {
	e := &Expander{}
	e.regs[ExpIODIR] = 0xFF
	return e
}

func (e *Expander) Start(dir twi.Direction) bool {
	if dir == twi.Write {
		e.hasPtr = false
	}
	return true
}

func (e *Expander) WriteByte(b byte) bool {
	if !e.hasPtr {
		e.ptr = b
		e.hasPtr = true
		return true
	}
	if int(e.ptr) < len(e.regs) {
		e.regs[e.ptr] = b
	}
	return true
}

func (e *Expander) ReadByte() byte {
	if e.ptr == ExpGPIO {
		iodir := e.regs[ExpIODIR] // 1 = input
		return (e.inputs & iodir) | (e.regs[ExpOLAT] &^ iodir)
	}
	if int(e.ptr) < len(e.regs) {
		return e.regs[e.ptr]
	}
	return 0xFF
}

func (e *Expander) Stop() {}

// SetInputs drives the externally visible input pin levels.
func (e *Expander) SetInputs(b byte) { e.inputs = b }

// Outputs returns the latched output register.
func (e *Expander) Outputs() byte { return e.regs[ExpOLAT] }

// ---------------------------------------------------------------------------
// Day-time clock (DS3231 model)
// ---------------------------------------------------------------------------

// Clock models the seven BCD time registers of the day-time clock.
type Clock struct {
	regs   [7]byte
	ptr    byte
	hasPtr bool
}

func NewClock() *Clock { return &Clock{} }

func (c *Clock) Start(dir twi.Direction) bool {
	if dir == twi.Write {
		c.hasPtr = false
	}
	return true
}

func (c *Clock) WriteByte(b byte) bool {
	if !c.hasPtr {
		c.ptr = b
		c.hasPtr = true
		return true
	}
	if int(c.ptr) < len(c.regs) {
		c.regs[c.ptr] = b
		c.ptr++
	}
	return true
}

func (c *Clock) ReadByte() byte {
	if int(c.ptr) >= len(c.regs) {
		return 0
	}
	b := c.regs[c.ptr]
	c.ptr++
	return b
}

func (c *Clock) Stop() {}

func bcd(v int) byte { return byte(v/10<<4 | v%10) }

// SetTime loads the registers from calendar components (year is 0..99).
func (c *Clock) SetTime(year, month, day, hour, min, sec int) {
	c.regs[0] = bcd(sec)
	c.regs[1] = bcd(min)
	c.regs[2] = bcd(hour)
	c.regs[3] = 1 // day of week, unused
	c.regs[4] = bcd(day)
	c.regs[5] = bcd(month)
	c.regs[6] = bcd(year)
}

// Registers returns a copy of the raw register file.
func (c *Clock) Registers() [7]byte { return c.regs }

// ---------------------------------------------------------------------------
// ADC (ADS1115 model)
// ---------------------------------------------------------------------------

// ADC models the two-register ADC: a config register whose ready bit rises
// after busyPolls reads, and a conversion register holding the raw count for
// the selected input.
type ADC struct {
	ptr     byte
	confHi  byte
	confLo  byte
	nConf   int
	busy    int
	raw     map[byte]int16
	hasPtr  bool
	readIdx int

	// BusyPolls is how many ready-bit reads report "converting" after a
	// conversion is started. Negative means never ready (stuck conversion).
	BusyPolls int
}

func NewADC() *ADC {
	return &ADC{raw: map[byte]int16{}, BusyPolls: 2}
}

// SetRaw sets the conversion count returned for a mux selection (bits 14..12
// of the config register).
func (a *ADC) SetRaw(mux byte, v int16) { a.raw[mux&0x07] = v }

func (a *ADC) Start(dir twi.Direction) bool {
	if dir == twi.Write {
		a.hasPtr = false
		a.nConf = 0
	}
	a.readIdx = 0
	return true
}

func (a *ADC) WriteByte(b byte) bool {
	if !a.hasPtr {
		a.ptr = b
		a.hasPtr = true
		return true
	}
	if a.ptr == 0x01 { // config register
		if a.nConf == 0 {
			a.confHi = b
		} else if a.nConf == 1 {
			a.confLo = b
			a.busy = a.BusyPolls
		}
		a.nConf++
	}
	return true
}

func (a *ADC) ReadByte() byte {
	switch a.ptr {
	case 0x01: // config: high byte carries the ready bit
		if a.readIdx == 0 {
			a.readIdx++
			if a.busy != 0 {
				if a.busy > 0 {
					a.busy--
				}
				return a.confHi &^ 0x80
			}
			return a.confHi | 0x80
		}
		return a.confLo
	case 0x00: // conversion
		v := a.raw[(a.confHi>>4)&0x07]
		if a.readIdx == 0 {
			a.readIdx++
			return byte(uint16(v) >> 8)
		}
		return byte(uint16(v))
	}
	return 0xFF
}

func (a *ADC) Stop() {}

// ---------------------------------------------------------------------------
// Ambient thermometer (MCP9808 model)
// ---------------------------------------------------------------------------

// Thermometer models the ambient temperature register of an MCP9808.
type Thermometer struct {
	ptr     byte
	hasPtr  bool
	readIdx int
	raw     uint16
}

func NewThermometer() *Thermometer { return &Thermometer{} }

// SetCelsius loads the ambient register, 0.0625 degC per LSB.
func (t *Thermometer) SetCelsius(c float32) {
	v := int16(c * 16)
	t.raw = uint16(v) & 0x1FFF
}

func (t *Thermometer) Start(dir twi.Direction) bool {
	if dir == twi.Write {
		t.hasPtr = false
	}
	t.readIdx = 0
	return true
}

func (t *Thermometer) WriteByte(b byte) bool {
	if !t.hasPtr {
		t.ptr = b
		t.hasPtr = true
	}
	return true
}

func (t *Thermometer) ReadByte() byte {
	if t.ptr != 0x05 {
		return 0xFF
	}
	if t.readIdx == 0 {
		t.readIdx++
		return byte(t.raw >> 8)
	}
	return byte(t.raw)
}

func (t *Thermometer) Stop() {}

// ---------------------------------------------------------------------------
// FRAM (FM24 model)
// ---------------------------------------------------------------------------

// FRAM models a 32KiB two-wire FRAM with a 2-byte address pointer and
// auto-increment on both read and write.
type FRAM struct {
	mem   [32768]byte
	addr  uint16
	nAddr int
}

func NewFRAM() *FRAM { return &FRAM{} }

func (f *FRAM) Start(dir twi.Direction) bool {
	if dir == twi.Write {
		f.nAddr = 0
	}
	return true
}

func (f *FRAM) WriteByte(b byte) bool {
	switch f.nAddr {
	case 0:
		f.addr = uint16(b) << 8
		f.nAddr++
	case 1:
		f.addr |= uint16(b)
		f.nAddr++
	default:
		f.mem[f.addr%uint16(len(f.mem))] = b
		f.addr++
	}
	return true
}

func (f *FRAM) ReadByte() byte {
	b := f.mem[f.addr%uint16(len(f.mem))]
	f.addr++
	return b
}

func (f *FRAM) Stop() {}
