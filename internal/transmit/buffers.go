// Package transmit implements the double transmit buffer
// C7): two fixed-size byte buffers, one filling while the other is (or was
// most recently) handed to the platform's transmit() primitive, with a
// single-in-flight-transmit invariant and refresh-timer-driven partial
// flush.
//
// Ported from the source's TransmitBuffers (Log.h): operator<< becomes
// Append, transmitIfNeeded keeps its name and shape exactly.
package transmit

import (
	"sync/atomic"

	"github.com/kallsen/chunklog/internal/constants"
	"github.com/kallsen/chunklog/internal/ring"
)

const (
	invalidTaskID  = ring.InvalidTaskID
	endOfMessage   = '\r'
	endOfLine      = '\n'
)

// Sink is the subset of platform.Transmitter the buffers need; kept narrow
// here so this package does not import the platform package. Rearming the
// refresh timer is the transmitter loop's job, not the buffers', since only
// the loop holds the platform's Clock.
type Sink interface {
	IsTransmitDone() bool
	WaitWhileTransmitInProgress()
	Transmit(bytes []byte, n int)
}

// Buffers is the double transmit buffer. Not safe for concurrent use
// outside the single transmitter goroutine that owns it, except for
// RefreshNeeded which the platform's refresh timer sets asynchronously.
type Buffers struct {
	bufLengthChunks int
	bufLengthBytes  int

	writeIdx int // 0 or 1: which of buffers[2] is currently being filled
	buffers  [2][]byte
	chunkCnt [2]int
	byteIdx  [2]int

	activeTaskID  uint8
	wasTerminal   bool
	refreshNeeded atomic.Bool

	sink Sink
}

// New creates a double transmit buffer, each half sized to hold
// bufferLengthChunks chunks' worth of payload bytes (ChunkSize-1 each).
func New(bufferLengthChunks int, sink Sink) *Buffers {
	if bufferLengthChunks < 1 {
		bufferLengthChunks = 1
	}
	bytesLen := bufferLengthChunks * (constants.ChunkSize - 1)
	b := &Buffers{
		bufLengthChunks: bufferLengthChunks,
		bufLengthBytes:  bytesLen,
		activeTaskID:    invalidTaskID,
		sink:            sink,
	}
	b.buffers[0] = make([]byte, bytesLen)
	b.buffers[1] = make([]byte, bytesLen)
	return b
}

// HasActiveTask reports whether some task's message is mid-flight into the
// write-side buffer (its terminal chunk has not yet been appended).
func (b *Buffers) HasActiveTask() bool { return b.activeTaskID != invalidTaskID }

// ActiveTaskID returns the task currently being poured into the write buffer.
func (b *Buffers) ActiveTaskID() uint8 { return b.activeTaskID }

// GotTerminalChunk reports whether the most recent Append call ended a
// message (saw '\r').
func (b *Buffers) GotTerminalChunk() bool { return b.wasTerminal }

// RefreshNeeded marks the current write buffer as due for a flush even if
// not full. Called by the platform's refresh timer; safe for concurrent use.
func (b *Buffers) RefreshNeeded() { b.refreshNeeded.Store(true) }

// Append copies chunk's payload bytes into the write-side buffer,
// substituting '\n' for the end-of-message sentinel '\r' and stopping at
// the first one seen. Bytes past the end of the buffer are silently
// dropped (the chunk is still counted) — scanning for '\r' continues
// regardless, since the active-task/terminal state must stay correct even
// when the buffer is already full. A chunk carrying InvalidTaskID is a
// no-op.
func (b *Buffers) Append(chunk ring.Chunk) {
	if chunk.TaskID() == invalidTaskID {
		return
	}
	b.wasTerminal = false
	buf := b.buffers[b.writeIdx]
	idx := b.byteIdx[b.writeIdx]
	for i := 1; i < constants.ChunkSize && !b.wasTerminal; i++ {
		out := chunk[i]
		if out == endOfMessage {
			out = endOfLine
		}
		if idx < b.bufLengthBytes {
			buf[idx] = out
			idx++
		}
		b.wasTerminal = chunk[i] == endOfMessage
	}
	b.byteIdx[b.writeIdx] = idx
	b.chunkCnt[b.writeIdx]++
	if b.wasTerminal {
		b.activeTaskID = invalidTaskID
	} else {
		b.activeTaskID = chunk.TaskID()
	}
}

// TransmitIfNeeded hands the write buffer to the sink once it is either
// full (after waiting out any prior in-flight transmit) or a refresh has
// fired and the previous transmit has completed, then flips to the other
// half. Reports whether a transmit was actually started, so the caller
// knows to rearm the refresh timer.
func (b *Buffers) TransmitIfNeeded() bool {
	if b.chunkCnt[b.writeIdx] == 0 {
		return false
	}
	if b.chunkCnt[b.writeIdx] == b.bufLengthChunks {
		b.sink.WaitWhileTransmitInProgress()
		b.refreshNeeded.Store(true)
	}
	if b.sink.IsTransmitDone() && b.refreshNeeded.Load() {
		b.sink.Transmit(b.buffers[b.writeIdx], b.byteIdx[b.writeIdx])
		b.writeIdx ^= 1
		b.byteIdx[b.writeIdx] = 0
		b.chunkCnt[b.writeIdx] = 0
		b.refreshNeeded.Store(false)
		return true
	}
	return false
}
