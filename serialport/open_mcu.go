//go:build tinygo

package serialport

import (
	"context"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Open configures the named on-chip UART. Zero baud and pins fall back to
// the uartx defaults for the board.
func Open(cfg Config) (Port, error) {
	hw := uartx.UART0
	if cfg.Device == "uart1" {
		hw = uartx.UART1
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: uint32(cfg.Baud),
		TX:       machine.Pin(cfg.TXPin),
		RX:       machine.Pin(cfg.RXPin),
	}); err != nil {
		return nil, err
	}
	return &uartPort{u: hw}, nil
}

type uartPort struct{ u *uartx.UART }

func (p *uartPort) Write(b []byte) (int, error) { return p.u.Write(b) }

// Read blocks until at least one byte arrives, matching the io.Reader
// contract the ingest worker expects.
func (p *uartPort) Read(b []byte) (int, error) {
	return p.u.RecvSomeContext(context.Background(), b)
}
