package audio

import "sync"

// RingBuffer is a fixed-capacity byte ring used to batch encoded audio
// between the capture pump and a transport that prefers larger chunks.
type RingBuffer struct {
	mu   sync.Mutex
	buf  []byte
	size int
	r, w int
	full bool
}

func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]byte, size), size: size}
}

// Write appends data, returning the number of bytes that fit.
func (rb *RingBuffer) Write(data []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for _, b := range data {
		if rb.full {
			break
		}
		rb.buf[rb.w] = b
		rb.w = (rb.w + 1) % rb.size
		rb.full = rb.w == rb.r
		written++
	}
	return written
}

// Read fills p with buffered bytes, returning how many were copied.
func (rb *RingBuffer) Read(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for i := range p {
		if rb.r == rb.w && !rb.full {
			break
		}
		p[i] = rb.buf[rb.r]
		rb.r = (rb.r + 1) % rb.size
		rb.full = false
		read++
	}
	return read
}

// Buffered returns the number of bytes waiting to be read.
func (rb *RingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.full {
		return rb.size
	}
	if rb.w >= rb.r {
		return rb.w - rb.r
	}
	return rb.size - rb.r + rb.w
}

// Clear discards all buffered bytes.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.r, rb.w, rb.full = 0, 0, false
}
