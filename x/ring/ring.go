// Package ring provides the single-producer, single-consumer byte ring that
// carries received serial bytes from the receive context to the command loop.
//
// The producer is the serial receive worker (the interrupt-context analogue)
// and the only thing it may do is Put; the consumer is the command loop and
// the only thing it may do is ReadLine. Each side stores its own index last,
// so no lock is needed between the two contexts.
//
// Overflow policy: drop-newest. A byte offered to a full ring is discarded and
// counted; a dropped line terminator still raises the line-ready signal so the
// consumer drains and the loop recovers with at worst one malformed command.
package ring

import (
	"sync/atomic"
)

// Ring is a single-producer, single-consumer byte ring with line framing.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)

	pending atomic.Int32  // complete lines buffered
	dropped atomic.Uint32 // bytes discarded on overflow

	lines chan struct{} // coalesced line-ready edge
}

// New creates a ring. Size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("ring: size must be power of two >= 2")
	}
	return &Ring{
		buf:   make([]byte, size),
		mask:  uint32(size - 1),
		lines: make(chan struct{}, 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Len returns the number of buffered bytes.
func (r *Ring) Len() int {
	return int(r.wr.Load() - r.rd.Load())
}

// Dropped returns the number of bytes discarded on overflow.
func (r *Ring) Dropped() int {
	return int(r.dropped.Load())
}

// Lines is the coalesced line-ready signal. One token may cover several
// buffered lines; the consumer drains with ReadLine until it reports no line.
func (r *Ring) Lines() <-chan struct{} { return r.lines }

// Put appends one received byte. Producer side only.
//
// CR and NUL terminate a line (stored as NUL); LF is discarded so CRLF input
// does not produce empty phantom lines. Returns false if the byte was dropped.
func (r *Ring) Put(b byte) bool {
	if b == '\n' {
		return true
	}
	term := b == '\r' || b == 0
	if term {
		b = 0
	}

	rd := r.rd.Load()
	wr := r.wr.Load()
	if wr-rd >= r.size() {
		r.dropped.Add(1)
		if term {
			// The truncated line is still handed to the consumer.
			r.pending.Add(1)
			r.signal()
		}
		return false
	}
	r.buf[wr&r.mask] = b
	r.wr.Store(wr + 1) // release

	if term {
		r.pending.Add(1)
		r.signal()
	}
	return true
}

func (r *Ring) signal() {
	select {
	case r.lines <- struct{}{}:
	default:
	}
}

// ReadLine drains one line into dst. Consumer side only.
//
// It copies bytes until the line terminator or until the ring is exhausted,
// and always NUL-terminates dst. Bytes beyond len(dst)-1 are consumed and
// discarded, never written past the bound. Returns the number of bytes stored
// (excluding the terminator) and whether a line was available at all.
func (r *Ring) ReadLine(dst []byte) (int, bool) {
	if r.pending.Load() <= 0 {
		return 0, false
	}
	n := 0
	for {
		rd := r.rd.Load()
		wr := r.wr.Load() // acquire
		if wr == rd {
			// Exhausted without a stored terminator: the terminator byte was
			// dropped on overflow. The line still counts as consumed.
			break
		}
		b := r.buf[rd&r.mask]
		r.rd.Store(rd + 1) // release
		if b == 0 {
			break
		}
		if n < len(dst)-1 {
			dst[n] = b
			n++
		}
	}
	r.pending.Add(-1)
	if len(dst) > 0 {
		dst[n] = 0
	}
	return n, true
}
