// Package config loads the daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// SpecID is the spectrograph number carried in every sentence.
	SpecID  int    `yaml:"spec_id"`
	Version string `yaml:"version"`

	Serial SerialConfig `yaml:"serial"`
	Motor  MotorConfig  `yaml:"motor"`
	Bus    BusConfig    `yaml:"bus"`

	// TickMs is the display update period.
	TickMs int `yaml:"tick_ms"`
}

// SerialConfig shapes the console link.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	TXPin  int    `yaml:"tx_pin"`
	RXPin  int    `yaml:"rx_pin"`
}

// MotorConfig shapes the collimator motor controller link. An empty device
// disables the move verb.
type MotorConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Addr   uint8  `yaml:"addr"`
}

// BusConfig carries the 7-bit peripheral addresses.
type BusConfig struct {
	ValveExpander  uint8 `yaml:"valve_expander"`
	SensorExpander uint8 `yaml:"sensor_expander"`
	Clock          uint8 `yaml:"clock"`
	TempADC        uint8 `yaml:"temp_adc"`
	HumADC         uint8 `yaml:"hum_adc"`
	VacADC         uint8 `yaml:"vac_adc"`
	Ambient        uint8 `yaml:"ambient"`
	FRAM           uint8 `yaml:"fram"`
}

// Default returns the board's factory configuration.
func Default() Config {
	return Config{
		SpecID:  1,
		Version: "2026-08-24",
		Serial:  SerialConfig{Device: "/dev/ttyUSB0", Baud: 115200},
		Motor:   MotorConfig{Baud: 38400, Addr: 0x80},
		Bus: BusConfig{
			ValveExpander:  0x20,
			SensorExpander: 0x21,
			Clock:          0x68,
			TempADC:        0x48,
			HumADC:         0x49,
			VacADC:         0x4A,
			Ambient:        0x18,
			FRAM:           0x50,
		},
		TickMs: 1000,
	}
}

// Load reads path over the defaults. A missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SpecID < 1 || c.SpecID > 9 {
		return fmt.Errorf("spec_id %d out of range 1..9", c.SpecID)
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial baud %d invalid", c.Serial.Baud)
	}
	if c.TickMs <= 0 {
		return fmt.Errorf("tick_ms %d invalid", c.TickMs)
	}
	return nil
}

// Tick is TickMs as a duration.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}
