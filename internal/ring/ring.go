// Package ring provides a bounded single-producer/single-consumer queue for
// dial events. The producer is the decode goroutine; the consumer is the main
// loop. Indices are updated atomically so neither side ever blocks.
package ring

import (
	"sync/atomic"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// DefaultCapacity is sized for several complete dial cycles; a single cycle
// produces at most 2 events plus one progress event per pulse.
const DefaultCapacity = 16

// Buffer is a fixed-capacity SPSC ring. Push may only be called from one
// goroutine and Pop from one (possibly different) goroutine. When full, Push
// drops the new event and counts the drop rather than blocking.
type Buffer struct {
	events []dial.Event
	mask   uint32
	head   atomic.Uint32 // written by producer only
	tail   atomic.Uint32 // written by consumer only
	drops  atomic.Uint64
}

// New creates a Buffer. capacity is rounded up to the next power of two,
// with a floor of 8.
func New(capacity int) *Buffer {
	n := uint32(8)
	for int(n) < capacity {
		n <<= 1
	}
	return &Buffer{
		events: make([]dial.Event, n),
		mask:   n - 1,
	}
}

// Push appends an event. It returns false and records a drop when the ring
// is full. Producer side only.
func (b *Buffer) Push(e dial.Event) bool {
	head := b.head.Load()
	tail := b.tail.Load()
	if head-tail > b.mask {
		b.drops.Add(1)
		return false
	}
	b.events[head&b.mask] = e
	b.head.Store(head + 1)
	return true
}

// Pop removes the oldest event. It returns false when the ring is empty.
// Consumer side only.
func (b *Buffer) Pop() (dial.Event, bool) {
	tail := b.tail.Load()
	head := b.head.Load()
	if tail == head {
		return dial.Event{}, false
	}
	e := b.events[tail&b.mask]
	b.tail.Store(tail + 1)
	return e, true
}

// Len returns the number of buffered events. Approximate when called
// concurrently with Push or Pop.
func (b *Buffer) Len() int {
	return int(b.head.Load() - b.tail.Load())
}

// Cap returns the ring capacity.
func (b *Buffer) Cap() int {
	return len(b.events)
}

// Drops returns the number of events dropped because the ring was full.
func (b *Buffer) Drops() uint64 {
	return b.drops.Load()
}
