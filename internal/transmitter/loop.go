// Package transmitter implements the single consumer goroutine that drains
// the producer chunk queue through the sorting ring into the transmit
// buffers: the state machine that keeps one task's
// output contiguous on the wire even while interleaved with others at the
// queue.
//
// Ported case-for-case from the source's transmitterTaskFunction (Log.h);
// the six branches there (no active task / active task with empty, partial,
// full ring, inspected-or-not) keep the same shape here, with sKeepRunning
// replaced by a context.Context the way a long-running worker loop takes one.
package transmitter

import (
	"context"
	"time"

	"github.com/kallsen/chunklog/internal/ring"
	"github.com/kallsen/chunklog/internal/transmit"
)

// Queue is the subset of platform.ChunkQueue the loop pulls from.
type Queue interface {
	Fetch(pause time.Duration) (chunk [8]byte, ok bool)
}

// Clock is the subset of platform.Clock the loop drives.
type Clock interface {
	WaitForData(timeout time.Duration)
	StartRefreshTimer(period time.Duration)
}

// Lifecycle is called once after the loop observes ctx.Done and returns,
// mirroring the source's tInterface::finishedTransmitterTask.
type Lifecycle interface {
	FinishedTransmitterTask()
}

// Config wires the loop's collaborators and timing.
type Config struct {
	Queue         Queue
	Clock         Clock
	Sink          *transmit.Buffers
	Ring          *ring.Buffer
	Lifecycle     Lifecycle
	Pause         time.Duration
	RefreshPeriod time.Duration
}

// Loop owns the ring buffer and transmit buffers for the lifetime of one
// Run call. Not safe for concurrent use: it has sole ownership
// of both.
type Loop struct {
	cfg Config
}

// New builds a Loop from cfg. Zero-value Pause/RefreshPeriod are invalid;
// callers should fill them from chunklog.DefaultConfig.
func New(cfg Config) *Loop {
	return &Loop{cfg: cfg}
}

func (l *Loop) fetchFromQueue() (ring.Chunk, bool) {
	raw, ok := l.cfg.Queue.Fetch(l.cfg.Pause)
	return ring.Chunk(raw), ok
}

// fetchAndForwardOrKeep pulls one chunk straight from the producer queue
// (bypassing whatever is already resident in the ring): if it belongs to
// the task currently active at the transmit buffers, it is appended
// directly; otherwise it is committed into the ring for later delivery.
// Ports fetchViaCircularAndTransmit.
func (l *Loop) fetchAndForwardOrKeep() {
	chunk := l.cfg.Ring.Fetch(l.fetchFromQueue)
	if chunk.TaskID() == ring.InvalidTaskID {
		return
	}
	if l.cfg.Sink.ActiveTaskID() == chunk.TaskID() {
		l.cfg.Sink.Append(*chunk)
	} else {
		l.cfg.Ring.KeepFetched()
	}
}

// Run executes the transmitter's main loop until ctx is cancelled, then
// reports completion via cfg.Lifecycle. Intended to be launched as its own
// goroutine.
func (l *Loop) Run(ctx context.Context) {
	for ctx.Err() == nil {
		l.cfg.Clock.WaitForData(l.cfg.Pause)
		l.step()
	}
	l.cfg.Lifecycle.FinishedTransmitterTask()
}

func (l *Loop) step() {
	r := l.cfg.Ring
	buf := l.cfg.Sink

	if !buf.HasActiveTask() {
		if r.IsEmpty() {
			chunk := r.Fetch(l.fetchFromQueue)
			buf.Append(*chunk)
		} else {
			buf.Append(r.Peek())
			r.Pop()
		}
	} else {
		switch {
		case r.IsEmpty():
			l.fetchAndForwardOrKeep()
		case !r.IsFull():
			if r.IsInspected() {
				l.fetchAndForwardOrKeep()
			} else {
				chunk := r.Inspect(buf.ActiveTaskID())
				if !r.IsInspected() {
					buf.Append(chunk)
					r.RemoveFound()
				}
			}
		default: // ring full
			buf.Append(r.Peek())
			r.Pop()
			r.ClearInspected()
		}
	}

	if buf.GotTerminalChunk() {
		r.ClearInspected()
	}

	if buf.TransmitIfNeeded() {
		l.cfg.Clock.StartRefreshTimer(l.cfg.RefreshPeriod)
	}
}
