//go:build !tinygo

package serialport

import (
	"github.com/tarm/serial"
)

// Open opens the tty named by cfg.Device at cfg.Baud, 8N1.
func Open(cfg Config) (Port, error) {
	return serial.OpenPort(&serial.Config{Name: cfg.Device, Baud: cfg.Baud})
}
