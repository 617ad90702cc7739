package ha

import "fmt"

// Buffer is a fixed-capacity byte buffer. Its capacity is set once, normally
// from a length pass, and any write that would exceed it is rejected with
// ErrBufferOverflow instead of growing or truncating.
//
// The zero value has capacity 0.
type Buffer struct {
	data []byte
	n    int
}

// NewBuffer allocates a Buffer holding exactly capacity bytes.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// WrapBuffer returns a Buffer backed by a caller-owned array, e.g. a static
// scratch area. The full length of backing is the capacity.
func WrapBuffer(backing []byte) *Buffer {
	return &Buffer{data: backing[:len(backing):len(backing)]}
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return b.n }

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Available returns the number of bytes that can still be written.
func (b *Buffer) Available() int { return len(b.data) - b.n }

// Bytes returns the written prefix. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte { return b.data[:b.n] }

// String returns the written prefix as a string.
func (b *Buffer) String() string { return string(b.data[:b.n]) }

// Reset discards the contents but keeps the capacity.
func (b *Buffer) Reset() { b.n = 0 }

// Write appends p. On overflow nothing is written.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) > b.Available() {
		return 0, fmt.Errorf("%w: need %d bytes, %d available", ErrBufferOverflow, len(p), b.Available())
	}
	b.n += copy(b.data[b.n:], p)
	return len(p), nil
}

// WriteString appends s. On overflow nothing is written.
func (b *Buffer) WriteString(s string) (int, error) {
	if len(s) > b.Available() {
		return 0, fmt.Errorf("%w: need %d bytes, %d available", ErrBufferOverflow, len(s), b.Available())
	}
	b.n += copy(b.data[b.n:], s)
	return len(s), nil
}

// WriteByte appends c.
func (b *Buffer) WriteByte(c byte) error {
	if b.Available() < 1 {
		return fmt.Errorf("%w: need 1 byte, 0 available", ErrBufferOverflow)
	}
	b.data[b.n] = c
	b.n++
	return nil
}
