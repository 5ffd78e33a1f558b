// Package queue implements the bounded MPSC transport between producer
// goroutines and the transmitter: many goroutines call
// Push concurrently, one goroutine calls Fetch.
//
// Built on a Go channel rather than a lock-free ring, matching the
// teacher's preference for a pre-sized, pre-allocated structure over
// allocating per operation (the channel is allocated once, at full
// capacity, by New) while keeping the
// push/fetch contract the source's LogQueue classes define: Push either
// blocks or drops on a full queue depending on the caller's urgency, Fetch
// waits up to a bounded pause for data.
package queue

import "time"

// Adapter is a bounded channel of fixed-size chunks satisfying
// platform.ChunkQueue without importing the platform package (avoiding an
// import cycle with internal/ring, which platform.ChunkQueue's chunk type
// mirrors structurally as [8]byte).
type Adapter struct {
	ch chan [8]byte
}

// New creates an Adapter with room for length chunks.
func New(length int) *Adapter {
	if length < 1 {
		length = 1
	}
	return &Adapter{ch: make(chan [8]byte, length)}
}

// Push enqueues chunk. If blocks is true, Push waits for room; a full,
// non-blocking Push drops the chunk and returns false rather than ever
// stalling the caller, matching the urgent-vs-background
// distinction (used by e.g. a fatal-path emitter that must not deadlock
// against a wedged transmitter).
func (a *Adapter) Push(chunk [8]byte, blocks bool) bool {
	if blocks {
		a.ch <- chunk
		return true
	}
	select {
	case a.ch <- chunk:
		return true
	default:
		return false
	}
}

// Fetch dequeues one chunk, waiting up to pause for one to arrive. Returns
// false if none arrived within pause. pause <= 0 fetches without waiting.
func (a *Adapter) Fetch(pause time.Duration) ([8]byte, bool) {
	if pause <= 0 {
		select {
		case c := <-a.ch:
			return c, true
		default:
			return [8]byte{}, false
		}
	}
	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case c := <-a.ch:
		return c, true
	case <-timer.C:
		return [8]byte{}, false
	}
}

// Len reports the number of chunks currently queued. Advisory only: the
// never conditions correctness on an exact count, only on eventual
// draining.
func (a *Adapter) Len() int { return len(a.ch) }
