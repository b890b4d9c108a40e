// Package pool provides pooled byte buffers for the accumulation-heavy paths:
// the incremental stream reader and the transcript recorder both append every
// received chunk to a growable buffer, and pooling avoids re-growing one per
// stream.
package pool

import "sync"

const (
	// AccumDefaultSize is the initial capacity of a pooled buffer.
	AccumDefaultSize = 16 * 1024
	// AccumMaxThreshold caps the capacity of buffers returned to the pool.
	// Streams occasionally balloon (one huge structure); keeping such buffers
	// pooled would pin that memory forever.
	AccumMaxThreshold = 1024 * 1024
)

// Buffer is a minimal growable byte buffer. Unlike bytes.Buffer it exposes the
// backing slice directly so scan coordinates can index into it without copies.
type Buffer struct {
	B []byte
}

// Bytes returns the backing slice.
func (b *Buffer) Bytes() []byte { return b.B }

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return len(b.B) }

// Reset empties the buffer, retaining capacity.
func (b *Buffer) Reset() { b.B = b.B[:0] }

// Append adds data to the buffer, growing as needed.
func (b *Buffer) Append(data []byte) {
	b.B = append(b.B, data...)
}

// AppendString adds string data to the buffer.
func (b *Buffer) AppendString(data string) {
	b.B = append(b.B, data...)
}

// Drain discards the first n bytes, shifting the remainder down.
func (b *Buffer) Drain(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.B) {
		b.B = b.B[:0]
		return
	}
	copied := copy(b.B, b.B[n:])
	b.B = b.B[:copied]
}

// String returns the buffered bytes as a string.
func (b *Buffer) String() string { return string(b.B) }

var bufferPool = sync.Pool{
	New: func() any {
		return &Buffer{B: make([]byte, 0, AccumDefaultSize)}
	},
}

// GetBuffer obtains an empty buffer from the pool.
func GetBuffer() *Buffer {
	buf, _ := bufferPool.Get().(*Buffer)
	buf.Reset()

	return buf
}

// PutBuffer returns a buffer to the pool. Oversized buffers are dropped.
func PutBuffer(buf *Buffer) {
	if buf == nil || cap(buf.B) > AccumMaxThreshold {
		return
	}
	bufferPool.Put(buf)
}
