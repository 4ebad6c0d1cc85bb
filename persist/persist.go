// Package persist keeps the boot record in FRAM. The record survives reboots
// so the boot-time report can answer even before the clock has been read.
//
// Layout at RecordOffset: one length byte, the payload, then a CRC-16/XModem
// of the payload (big-endian). A record that fails the CRC reads back as the
// Unknown sentinel rather than an error: stale persistence must never fail a
// report command.
package persist

import (
	"github.com/sigurn/crc16"
)

// Store is the FRAM byte contract (drivers/fm24 satisfies it).
type Store interface {
	ReadAt(off uint16, dst []byte) error
	WriteAt(off uint16, src []byte) error
}

// RecordOffset is where the boot record lives.
const RecordOffset = 0x0000

// Unknown is returned when no valid boot record exists.
const Unknown = "0000-00-00T00:00:00Z"

const maxPayload = 32

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Boot reads and writes the boot record.
type Boot struct {
	st Store
}

// NewBoot binds the record to a store.
func NewBoot(st Store) Boot { return Boot{st: st} }

// SaveBootTime writes iso as the new boot record.
func (b Boot) SaveBootTime(iso string) error {
	if len(iso) > maxPayload {
		iso = iso[:maxPayload]
	}
	rec := make([]byte, 0, len(iso)+3)
	rec = append(rec, byte(len(iso)))
	rec = append(rec, iso...)
	crc := crc16.Checksum([]byte(iso), crcTable)
	rec = append(rec, byte(crc>>8), byte(crc))
	return b.st.WriteAt(RecordOffset, rec)
}

// BootTime reads the boot record, returning Unknown if the record is absent,
// corrupt, or unreadable.
func (b Boot) BootTime() string {
	var hdr [1]byte
	if err := b.st.ReadAt(RecordOffset, hdr[:]); err != nil {
		return Unknown
	}
	n := int(hdr[0])
	if n == 0 || n > maxPayload {
		return Unknown
	}
	buf := make([]byte, n+2)
	if err := b.st.ReadAt(RecordOffset+1, buf); err != nil {
		return Unknown
	}
	payload, sum := buf[:n], buf[n:]
	want := uint16(sum[0])<<8 | uint16(sum[1])
	if crc16.Checksum(payload, crcTable) != want {
		return Unknown
	}
	return string(payload)
}
