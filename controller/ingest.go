package controller

import (
	"context"
	"io"

	"specmech-go/x/ring"
)

// Ingest copies bytes from r into rg until r fails or ctx is cancelled. It
// is the receive half of the serial link and stays deliberately small: bytes
// go into the ring and nothing else happens on this goroutine.
//
// A full ring drops bytes rather than blocking; the ring counts the drops.
func Ingest(ctx context.Context, r io.Reader, rg *ring.Ring) error {
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			rg.Put(b)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
