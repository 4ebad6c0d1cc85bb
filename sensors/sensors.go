// Package sensors turns raw ADC counts and thermometer registers into the
// environment and vacuum figures the report command sends. The conversion
// constants live here, at the edge of the system; the command loop only sees
// the collaborator interfaces it defines.
package sensors

import (
	"math"

	"specmech-go/drivers/ads1115"
	"specmech-go/drivers/mcp9808"
	"specmech-go/x/mathx"
)

// Env reads the temperature and humidity channels: three AD590 transducers
// and three HiH-4031 hygrometers through two ADCs, plus an MCP9808 for the
// fourth temperature.
type Env struct {
	TempADC *ads1115.Device
	HumADC  *ads1115.Device
	Ambient *mcp9808.Device
	SupplyV float32 // hygrometer supply rail; 0 means 5.0
}

var adcInput = [...]byte{ads1115.AIN0, ads1115.AIN1, ads1115.AIN2, ads1115.AIN3}

// Temperature returns channel i in degC. Channels 0..2 are the AD590s,
// channel 3 the MCP9808.
func (e *Env) Temperature(i int) (float32, error) {
	if i == 3 {
		return e.Ambient.ReadCelsius()
	}
	v, err := e.TempADC.ReadVolts(adcInput[i], ads1115.PGA4096)
	if err != nil {
		return 0, err
	}
	// AD590: 1 uA/K through a 10k sense resistor, 10 mV/K.
	return v*100 - 273.15, nil
}

// Humidity returns channel i in %RH.
func (e *Env) Humidity(i int) (float32, error) {
	v, err := e.HumADC.ReadVolts(adcInput[i], ads1115.PGA6144)
	if err != nil {
		return 0, err
	}
	supply := e.SupplyV
	if supply == 0 {
		supply = 5.0
	}
	// HiH-4031 transfer function: Vout = Vs*(0.0062*RH + 0.16).
	rh := (v/supply - 0.16) / 0.0062
	return mathx.Clamp(rh, 0, 100), nil
}

// Vacuum reads the red and blue camera ion pump controllers, whose log
// output rides two ADC inputs.
type Vacuum struct {
	ADC *ads1115.Device
}

// Red returns the red camera pump reading in -log10(Torr).
func (v *Vacuum) Red() (float32, error) { return v.read(ads1115.AIN0) }

// Blue returns the blue camera pump reading in -log10(Torr).
func (v *Vacuum) Blue() (float32, error) { return v.read(ads1115.AIN1) }

func (v *Vacuum) read(mux byte) (float32, error) {
	volts, err := v.ADC.ReadVolts(mux, ads1115.PGA4096)
	if err != nil {
		return 0, err
	}
	// Controller output is 2 V per decade, 10 decades full scale.
	p := 10 - 2*volts
	if math.IsNaN(float64(p)) {
		p = 0
	}
	return p, nil
}
