package audio

import "sync"

// RingBuffer is a bounded sample buffer shared between a device callback
// and the chunk extractor. When full, the oldest samples are overwritten.
type RingBuffer struct {
	mu       sync.Mutex
	data     []float32
	head     int // next read position
	size     int
	overruns int
}

// NewRingBuffer preallocates room for capacity samples.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{data: make([]float32, capacity)}
}

// Write copies samples in. It never allocates and never blocks on the reader.
func (b *RingBuffer) Write(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.data)
	if len(samples) > capacity {
		b.overruns += len(samples) - capacity
		samples = samples[len(samples)-capacity:]
	}

	// Drop oldest to make room
	if free := capacity - b.size; len(samples) > free {
		drop := len(samples) - free
		b.head = (b.head + drop) % capacity
		b.size -= drop
		b.overruns += drop
	}

	tail := (b.head + b.size) % capacity
	n := copy(b.data[tail:], samples)
	if n < len(samples) {
		copy(b.data, samples[n:])
	}
	b.size += len(samples)
}

// Read drains up to len(dst) samples in arrival order and returns the count.
func (b *RingBuffer) Read(dst []float32) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(dst)
	if n > b.size {
		n = b.size
	}
	capacity := len(b.data)
	first := copy(dst[:n], b.data[b.head:min(b.head+n, capacity)])
	if first < n {
		copy(dst[first:n], b.data[:n-first])
	}
	b.head = (b.head + n) % capacity
	b.size -= n
	return n
}

// Len returns the number of buffered samples.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Overruns returns how many samples were dropped because the reader fell behind.
func (b *RingBuffer) Overruns() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overruns
}

// Reset discards buffered samples.
func (b *RingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head, b.size = 0, 0
}
