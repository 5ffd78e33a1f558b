// Package ring implements the circular sorting buffer:
// a bounded ring of chunks sitting between the producer queue and the
// transmit buffers, whose job is to let the transmitter find the next chunk
// belonging to whichever task is currently "active" at the output even when
// the head of the queue belongs to some other task.
//
// Ported from the source's CircularBuffer (Log.h), which walks a flat
// char* ring with wrapping pointer arithmetic; here the ring is a slice of
// fixed-size Chunk values addressed by indices taken mod the ring length,
// which plays the role of the source's pointer-wraps-at-end operator++.
package ring

import "github.com/kallsen/chunklog/internal/constants"

// InvalidTaskID marks an empty or invalidated chunk slot.
const InvalidTaskID = 0xFF

// Chunk is one fixed-size transport unit: byte 0 is the TaskID (or
// InvalidTaskID), the rest is message payload.
type Chunk [constants.ChunkSize]byte

// TaskID returns the chunk's originating task id.
func (c Chunk) TaskID() uint8 { return c[0] }

// Invalidate marks the chunk as empty.
func (c *Chunk) Invalidate() { c[0] = InvalidTaskID }

// Valid reports whether the chunk carries a real task id.
func (c Chunk) Valid() bool { return c[0] != InvalidTaskID }

// Buffer is the circular sorting ring. Not safe for concurrent use: the
// §5 gives the transmitter goroutine exclusive ownership of it.
type Buffer struct {
	slots []Chunk
	n     int // capacity, len(slots)

	start int // index of the oldest retained chunk
	end   int // index of the next free slot
	count int // slots in [start, end)

	found          int // inspection cursor, index into slots
	inspectedCount int
	inspected      bool
}

// New creates a ring of the given chunk capacity. length must be >= 1.
func New(length int) *Buffer {
	if length < 1 {
		length = 1
	}
	b := &Buffer{
		slots:     make([]Chunk, length),
		n:         length,
		inspected: true,
	}
	return b
}

func (b *Buffer) wrap(i int) int {
	i %= b.n
	if i < 0 {
		i += b.n
	}
	return i
}

// IsEmpty reports whether the ring holds no chunks.
func (b *Buffer) IsEmpty() bool { return b.count == 0 }

// IsFull reports whether the ring is at capacity.
func (b *Buffer) IsFull() bool { return b.count == b.n }

// IsInspected reports whether the last Inspect call compacted the ring
// because no match was found (caller must not call Inspect
// again in the same iteration once this is true — it falls through to the
// "forward progress" path instead).
func (b *Buffer) IsInspected() bool { return b.inspected }

// ClearInspected resets the inspection cursor to start. Called whenever a
// new task becomes active at the transmitter, or the ring is forced to
// drop its current active task (the A∧F case).
func (b *Buffer) ClearInspected() {
	b.inspected = false
	b.inspectedCount = 0
	b.found = b.start
}

// FetchFunc dequeues one chunk from the producer queue. It returns
// (chunk, false) when nothing was available within the platform's pause.
type FetchFunc func() (Chunk, bool)

// Fetch reads one chunk from fetchFn into the next free slot and returns a
// pointer to it. The slot is not committed to the ring until KeepFetched is
// called; callers that want pass-through semantics (the
// ¬A∧E case) read the returned pointer and never call KeepFetched, letting
// the next Fetch overwrite the same slot.
func (b *Buffer) Fetch(fetchFn FetchFunc) *Chunk {
	slot := &b.slots[b.end]
	if chunk, ok := fetchFn(); ok {
		*slot = chunk
	} else {
		slot.Invalidate()
	}
	return slot
}

// KeepFetched commits the chunk most recently returned by Fetch into the
// ring (advances end, increments count).
func (b *Buffer) KeepFetched() {
	b.end = b.wrap(b.end + 1)
	b.count++
}

// Peek returns the oldest retained chunk without removing it.
func (b *Buffer) Peek() Chunk { return b.slots[b.start] }

// Pop drops the oldest retained chunk and resets the inspection cursor to
// the new start (the source does this unconditionally on pop; inspected
// itself is left alone, matching Log.h's CircularBuffer::pop).
func (b *Buffer) Pop() {
	b.start = b.wrap(b.start + 1)
	b.count--
	b.found = b.start
}

// Inspect scans forward from the inspection cursor for a chunk belonging to
// taskID. If found before exhausting count, it is returned immediately and
// IsInspected stays whatever it was (false, if the caller just cleared it).
// If the whole ring is scanned with no match, Inspect compacts the ring —
// a two-pointer pass from start to end that drops every invalidated slot
// (those RemoveFound marked) and collapses the rest contiguously — sets
// IsInspected true, and returns the (stale) cursor chunk; callers must
// check IsInspected() after calling Inspect to tell the two outcomes apart.
func (b *Buffer) Inspect(taskID uint8) Chunk {
	for b.inspectedCount < b.count && b.slots[b.found].TaskID() != taskID {
		b.inspectedCount++
		b.found = b.wrap(b.found + 1)
	}
	if b.inspectedCount == b.count {
		b.compact()
		b.inspected = true
	}
	return b.slots[b.found]
}

// compact performs a two-pointer pass: walk
// from start to end, drop invalidated slots, and collapse the remaining
// valid chunks into a contiguous run starting at start.
func (b *Buffer) compact() {
	src := b.start
	dst := b.start
	removed := 0
	for i := 0; i < b.count; i++ {
		if b.slots[src].Valid() {
			if src != dst {
				b.slots[dst] = b.slots[src]
			}
			dst = b.wrap(dst + 1)
		} else {
			removed++
		}
		src = b.wrap(src + 1)
	}
	b.end = dst
	b.count -= removed
}

// RemoveFound invalidates the slot last returned by a successful Inspect
// match, reserving it for the next compaction pass rather than shifting
// the ring immediately.
func (b *Buffer) RemoveFound() {
	b.slots[b.found].Invalidate()
}
