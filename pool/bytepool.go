// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool recycles fixed-size byte slabs used as connection buffers.
type BytePool struct {
	p    sync.Pool
	size int
}

// NewBytePool returns a pool handing out slabs of exactly size bytes.
func NewBytePool(size int) *BytePool {
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return bp
}

// Size is the slab size of this pool.
func (b *BytePool) Size() int { return b.size }

// GetBuffer returns a zeroed slab from the pool.
func (b *BytePool) GetBuffer() []byte {
	buf := *(b.p.Get().(*[]byte))
	clear(buf)
	return buf
}

// PutBuffer returns a slab to the pool. Slabs of a foreign size are dropped.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.p.Put(&buf)
}
