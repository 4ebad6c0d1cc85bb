// Command specmechd runs the spectrograph mechanism controller on a host.
// It wires the serial console, the two-wire bus peripherals and the command
// loop together; with -sim it runs against simulated bus hardware and the
// process's stdio, which is how the protocol is exercised without a board.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	"specmech-go/config"
	"specmech-go/controller"
	"specmech-go/drivers/ads1115"
	"specmech-go/drivers/ds3231"
	"specmech-go/drivers/fm24"
	"specmech-go/drivers/mcp23008"
	"specmech-go/drivers/mcp9808"
	"specmech-go/drivers/roboclaw"
	"specmech-go/persist"
	"specmech-go/pneu"
	"specmech-go/sensors"
	"specmech-go/serialport"
	"specmech-go/twi"
	"specmech-go/twi/twisim"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	sim := flag.Bool("sim", false, "simulated bus hardware and stdio console")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Exitf("config: %v", err)
	}

	console, err := openConsole(*sim, cfg.Serial)
	if err != nil {
		glog.Exitf("console %s: %v", cfg.Serial.Device, err)
	}

	hw, err := openHardware(*sim, cfg)
	if err != nil {
		glog.Exitf("bus hardware: %v", err)
	}
	master := twi.NewMaster(hw)

	valves := pneu.New(
		mcp23008.New(master, cfg.Bus.ValveExpander),
		mcp23008.New(master, cfg.Bus.SensorExpander),
	)
	if err := valves.Init(); err != nil {
		glog.Warningf("valve init: %v", err)
	}

	ambient := mcp9808.New(twi.NewShim(master))
	env := &sensors.Env{
		TempADC: ads1115.New(master, cfg.Bus.TempADC),
		HumADC:  ads1115.New(master, cfg.Bus.HumADC),
		Ambient: &ambient,
	}
	vac := &sensors.Vacuum{ADC: ads1115.New(master, cfg.Bus.VacADC)}
	store := persist.NewBoot(fm24.New(master, cfg.Bus.FRAM))

	deps := controller.Deps{
		Clock:    ds3231.New(master),
		Valves:   valves,
		Env:      env,
		Vacuum:   vac,
		Display:  &logDisplay{valves: valves},
		Rebooter: &processRebooter{},
		Store:    store,
		Prober:   busProber(master, cfg.Bus),
	}
	if cfg.Motor.Device != "" {
		mport, err := serialport.Open(serialport.Config{
			Device: cfg.Motor.Device,
			Baud:   cfg.Motor.Baud,
		})
		if err != nil {
			glog.Exitf("motor port %s: %v", cfg.Motor.Device, err)
		}
		deps.Mover = roboclaw.New(mport, cfg.Motor.Addr)
	}

	ctrl := controller.New(controller.Config{
		SpecID:     cfg.SpecID,
		Version:    cfg.Version,
		TickPeriod: cfg.Tick(),
	}, console, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := controller.Ingest(ctx, console, ctrl.Ring()); err != nil &&
			!errors.Is(err, context.Canceled) {
			glog.Errorf("ingest: %v", err)
		}
		cancel()
	}()

	glog.Infof("specmech %d up on %s", cfg.SpecID, cfg.Serial.Device)
	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		glog.Exitf("controller: %v", err)
	}
}

func openConsole(sim bool, cfg config.SerialConfig) (io.ReadWriter, error) {
	if sim {
		return stdio{}, nil
	}
	return serialport.Open(serialport.Config{
		Device: cfg.Device,
		Baud:   cfg.Baud,
		TXPin:  cfg.TXPin,
		RXPin:  cfg.RXPin,
	})
}

func openHardware(sim bool, cfg config.Config) (twi.Hardware, error) {
	if !sim {
		return nil, errors.New("real bus hardware needs the board build; use -sim")
	}
	return simBus(cfg), nil
}

// simBus assembles a simulated board with every peripheral present and
// plausible sensor readings, so reports answer with real-looking numbers.
func simBus(cfg config.Config) twi.Hardware {
	b := twisim.New()

	b.Attach(cfg.Bus.ValveExpander, twisim.NewExpander())
	sens := twisim.NewExpander()
	sens.SetInputs(0x64) // everything closed, air present
	b.Attach(cfg.Bus.SensorExpander, sens)

	clk := twisim.NewClock()
	now := time.Now().UTC()
	clk.SetTime(now.Year()%100, int(now.Month()), now.Day(),
		now.Hour(), now.Minute(), now.Second())
	b.Attach(ds3231.Address, clk)

	temp := twisim.NewADC()
	for i, c := range []float32{20.0, 20.5, 21.0} { // AD590: 10 mV/K
		v := (c + 273.15) / 100
		temp.SetRaw(byte(i)|0x04, int16(v/4.096*32767))
	}
	b.Attach(cfg.Bus.TempADC, temp)

	hum := twisim.NewADC()
	for i, rh := range []float32{42, 45, 48} { // HiH-4031 at 5V supply
		v := 5 * (0.0062*rh + 0.16)
		hum.SetRaw(byte(i)|0x04, int16(v/6.144*32767))
	}
	b.Attach(cfg.Bus.HumADC, hum)

	vac := twisim.NewADC()
	var v5, v7 float32 = 2.5, 1.5
	vac.SetRaw(0x04, int16(v5/4.096*32767)) // 5.00 on the log scale
	vac.SetRaw(0x05, int16(v7/4.096*32767)) // 7.00
	b.Attach(cfg.Bus.VacADC, vac)

	therm := twisim.NewThermometer()
	therm.SetCelsius(22.5)
	b.Attach(mcp9808.Address, therm)

	b.Attach(cfg.Bus.FRAM, twisim.NewFRAM())
	return b
}

func busProber(m *twi.Master, bus config.BusConfig) controller.ProberFunc {
	addrs := []byte{
		bus.ValveExpander, bus.SensorExpander, ds3231.Address,
		bus.TempADC, bus.HumADC, bus.VacADC, mcp9808.Address, bus.FRAM,
	}
	return func() error {
		for _, a := range addrs {
			if err := twi.Probe(m, a); err != nil {
				glog.Warningf("self-test: no answer at %#x: %v", a, err)
				return err
			}
		}
		return nil
	}
}

// stdio is the -sim console: read commands from stdin, write to stdout.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// logDisplay stands in for the front-panel display: the periodic update logs
// the mechanism state instead of redrawing a panel.
type logDisplay struct {
	valves *pneu.Valves
}

func (d *logDisplay) Update() {
	if !glog.V(2) {
		return
	}
	st, err := d.valves.ReadSensors()
	if err != nil {
		glog.V(2).Infof("display: sensors: %v", err)
		return
	}
	glog.V(2).Infof("display: shutter=%c left=%c right=%c air=%c",
		st.Shutter, st.Left, st.Right, st.Air)
}

// processRebooter restarts by exiting; the supervisor brings the daemon back
// up, which reenters the reboot handshake like a power cycle.
type processRebooter struct{}

func (processRebooter) Reboot() {
	glog.Warning("reboot requested")
	glog.Flush()
	time.Sleep(100 * time.Millisecond)
	os.Exit(0)
}
