// Package command assembles printer command fragments into one transmit buffer.
package command

import "io"

// Buffer is an ordered list of command fragments. Fragments are flattened in
// the order they were appended; nothing is reordered, merged or deduplicated.
//
// A Buffer is not safe for concurrent mutation. Build one per print job.
type Buffer struct {
	fragments [][]byte
	size      int
}

// New returns a buffer holding copies of the given fragments.
func New(fragments ...[]byte) *Buffer {
	b := &Buffer{}
	for _, f := range fragments {
		b.Append(f)
	}
	return b
}

// Append adds fragment to the end of the buffer. The content is not validated.
// The buffer keeps its own copy, so the caller may reuse fragment afterwards.
func (b *Buffer) Append(fragment []byte) {
	own := make([]byte, len(fragment))
	copy(own, fragment)
	b.fragments = append(b.fragments, own)
	b.size += len(own)
}

// AppendAll appends every fragment in order.
func (b *Buffer) AppendAll(fragments ...[]byte) {
	for _, f := range fragments {
		b.Append(f)
	}
}

// Flatten returns a new contiguous slice with every fragment in insertion
// order. Its length is exactly Len().
func (b *Buffer) Flatten() []byte {
	out := make([]byte, 0, b.size)
	for _, f := range b.fragments {
		out = append(out, f...)
	}
	return out
}

// Len is the total number of bytes held.
func (b *Buffer) Len() int { return b.size }

// Count is the number of fragments, zero-length ones included.
func (b *Buffer) Count() int { return len(b.fragments) }

// Fragments returns copies of the fragments in insertion order.
func (b *Buffer) Fragments() [][]byte {
	out := make([][]byte, len(b.fragments))
	for i, f := range b.fragments {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// Reset drops every fragment.
func (b *Buffer) Reset() {
	b.fragments = nil
	b.size = 0
}

// WriteTo writes the flattened buffer to w with a single Write call.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Flatten())
	if err == nil && n < b.size {
		err = io.ErrShortWrite
	}
	return int64(n), err
}
