package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkFor(taskID uint8) Chunk {
	var c Chunk
	c[0] = taskID
	return c
}

func fetchFrom(chunks []Chunk) FetchFunc {
	i := 0
	return func() (Chunk, bool) {
		if i >= len(chunks) {
			return Chunk{}, false
		}
		c := chunks[i]
		i++
		return c, true
	}
}

func TestNewIsEmpty(t *testing.T) {
	b := New(4)
	assert.True(t, b.IsEmpty())
	assert.False(t, b.IsFull())
}

func TestFetchAndKeepFetchedFillsRing(t *testing.T) {
	b := New(2)
	fn := fetchFrom([]Chunk{chunkFor(1), chunkFor(2)})

	slot := b.Fetch(fn)
	assert.Equal(t, uint8(1), slot.TaskID())
	b.KeepFetched()
	assert.False(t, b.IsEmpty())

	slot = b.Fetch(fn)
	assert.Equal(t, uint8(2), slot.TaskID())
	b.KeepFetched()
	assert.True(t, b.IsFull())
}

func TestFetchWithoutKeepIsOverwritable(t *testing.T) {
	b := New(2)
	fn := fetchFrom([]Chunk{chunkFor(1), chunkFor(9)})

	slot := b.Fetch(fn)
	assert.Equal(t, uint8(1), slot.TaskID())
	// no KeepFetched: the slot is not committed

	slot = b.Fetch(fn)
	assert.Equal(t, uint8(9), slot.TaskID())
	assert.True(t, b.IsEmpty())
}

func TestFetchInvalidatesOnNoData(t *testing.T) {
	b := New(2)
	fn := fetchFrom(nil)

	slot := b.Fetch(fn)
	assert.False(t, slot.Valid())
}

func TestPeekAndPop(t *testing.T) {
	b := New(3)
	fn := fetchFrom([]Chunk{chunkFor(1), chunkFor(2)})

	b.Fetch(fn)
	b.KeepFetched()
	b.Fetch(fn)
	b.KeepFetched()

	assert.Equal(t, uint8(1), b.Peek().TaskID())
	b.Pop()
	assert.Equal(t, uint8(2), b.Peek().TaskID())
	b.Pop()
	assert.True(t, b.IsEmpty())
}

func TestInspectFindsMatchWithoutCompacting(t *testing.T) {
	b := New(4)
	fn := fetchFrom([]Chunk{chunkFor(1), chunkFor(2), chunkFor(3)})
	for i := 0; i < 3; i++ {
		b.Fetch(fn)
		b.KeepFetched()
	}

	b.ClearInspected()
	found := b.Inspect(2)
	assert.Equal(t, uint8(2), found.TaskID())
	assert.False(t, b.IsInspected())
}

func TestInspectCompactsWhenNoMatch(t *testing.T) {
	b := New(4)
	fn := fetchFrom([]Chunk{chunkFor(1), chunkFor(2), chunkFor(3)})
	for i := 0; i < 3; i++ {
		b.Fetch(fn)
		b.KeepFetched()
	}

	b.ClearInspected()
	b.Inspect(99)
	assert.True(t, b.IsInspected())
}

func TestCompactDropsInvalidatedSlotsPreservingOrder(t *testing.T) {
	b := New(4)
	fn := fetchFrom([]Chunk{chunkFor(1), chunkFor(2), chunkFor(3)})
	for i := 0; i < 3; i++ {
		b.Fetch(fn)
		b.KeepFetched()
	}

	b.ClearInspected()
	found := b.Inspect(2)
	require.Equal(t, uint8(2), found.TaskID())
	b.RemoveFound()

	b.ClearInspected()
	b.Inspect(99) // force a compaction pass

	assert.Equal(t, uint8(1), b.Peek().TaskID())
	b.Pop()
	assert.Equal(t, uint8(3), b.Peek().TaskID())
}

func TestRingWrapsAroundCapacity(t *testing.T) {
	b := New(2)
	fn := fetchFrom([]Chunk{chunkFor(1), chunkFor(2)})

	b.Fetch(fn)
	b.KeepFetched()
	b.Fetch(fn)
	b.KeepFetched()
	b.Pop() // start now at index 1

	fn2 := fetchFrom([]Chunk{chunkFor(3)})
	b.Fetch(fn2)
	b.KeepFetched() // commits the chunk fetched into wrapped-around index 0

	assert.True(t, b.IsFull())
	assert.Equal(t, uint8(2), b.Peek().TaskID())
	b.Pop()
	assert.Equal(t, uint8(3), b.Peek().TaskID())
}
