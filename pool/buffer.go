// File: pool/buffer.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity receive buffer with a persistent parse cursor.

package pool

import "github.com/momentics/hioload-tcp/api"

// Buffer is the per-connection receive buffer. Bytes in [cursor, end) have
// been read from the socket but not yet consumed by the framer. A frame split
// across two reads stays in the buffer until the rest of it arrives.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	data   []byte
	cursor int
	end    int
}

// NewBuffer wraps a backing slab. The capacity never grows.
func NewBuffer(slab []byte) *Buffer {
	return &Buffer{data: slab}
}

// Cap is the fixed capacity in bytes.
func (b *Buffer) Cap() int { return len(b.data) }

// Len is the number of unconsumed bytes.
func (b *Buffer) Len() int { return b.end - b.cursor }

// Cursor is the offset of the first unconsumed byte.
func (b *Buffer) Cursor() int { return b.cursor }

// Pending returns the unconsumed bytes. The slice is only valid until the
// next Fill.
func (b *Buffer) Pending() []byte { return b.data[b.cursor:b.end] }

// Bytes returns everything from the buffer origin up to the last byte read.
func (b *Buffer) Bytes() []byte { return b.data[:b.end] }

// Advance marks n pending bytes as consumed.
func (b *Buffer) Advance(n int) {
	if n < 0 {
		return
	}
	b.cursor += n
	if b.cursor >= b.end {
		b.cursor, b.end = 0, 0
	}
}

// Compact shifts unconsumed bytes to the buffer origin. Offsets previously
// obtained from Cursor are invalidated.
func (b *Buffer) Compact() {
	if b.cursor == 0 {
		return
	}
	n := copy(b.data, b.data[b.cursor:b.end])
	clear(b.data[n:b.end])
	b.cursor, b.end = 0, n
}

// Fill compacts the buffer and performs one read into the free space.
// read follows io.Reader semantics for n; a zero count with a nil error is
// passed through unchanged so callers can detect an orderly peer close.
func (b *Buffer) Fill(read func(p []byte) (int, error)) (int, error) {
	b.Compact()
	if b.end == len(b.data) {
		return 0, api.NewError(api.KindProtocol, "fill", api.ErrBufferFull)
	}
	n, err := read(b.data[b.end:])
	if n > 0 {
		b.end += n
	}
	return n, err
}

// Reset discards all buffered bytes.
func (b *Buffer) Reset() {
	clear(b.data[:b.end])
	b.cursor, b.end = 0, 0
}

// Release hands the backing slab back to p. The Buffer must not be used
// afterwards.
func (b *Buffer) Release(p *BytePool) {
	if b.data == nil {
		return
	}
	if p != nil {
		p.PutBuffer(b.data)
	}
	b.data = nil
	b.cursor, b.end = 0, 0
}
