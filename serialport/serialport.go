// Package serialport opens the console serial link. The host build talks to
// a tty through tarm/serial; the tinygo build drives the on-chip UART. Both
// hand the command loop a plain byte stream.
package serialport

import "io"

// Port is the console link: the ingest worker reads it, the command loop
// writes sentences and prompts to it.
type Port interface {
	io.ReadWriter
}

// Config selects and shapes the link.
type Config struct {
	// Device is the tty path on a host ("/dev/ttyUSB0") or the UART name
	// on a board ("uart0", "uart1").
	Device string
	Baud   int

	// Board pin numbers; ignored on a host.
	TXPin int
	RXPin int
}
