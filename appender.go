package chunklog

import (
	"github.com/kallsen/chunklog/internal/constants"
	"github.com/kallsen/chunklog/internal/ring"
)

// InvalidTaskID marks an unregistered or unassigned task slot.
const InvalidTaskID uint8 = ring.InvalidTaskID

// LocalTaskID is the reserved id the pipeline itself uses for internal
// messages (registration log lines) that don't originate from a registered
// task, sitting one below InvalidTaskID.
const LocalTaskID uint8 = constants.MaxTaskCount

// chunkPusher accepts one finished or full chunk. Implementations normally
// wrap the pipeline's queue.Adapter.Push, closing over the blocking policy.
type chunkPusher func(chunk ring.Chunk, blocks bool) bool

// appender assembles one task's outgoing byte stream into fixed-size
// chunks, exactly mirroring the source's Appender (Log.h): index starts at
// 1 (slot 0 holds the task id), a full chunk is pushed and index resets to
// 1, and flush appends the end-of-message byte before pushing whatever is
// left. Not safe for concurrent use — each task (or the chain helper acting
// on its behalf) has exclusive ownership of its own appender.
type appender struct {
	chunk  ring.Chunk
	index  int
	push   chunkPusher
	blocks bool
}

// newAppender creates an appender bound to taskID, ready to accept bytes.
func newAppender(taskID uint8, push chunkPusher, blocks bool) *appender {
	a := &appender{push: push, blocks: blocks}
	a.start(taskID)
	return a
}

// start begins a new message for taskID, discarding any partially
// assembled chunk.
func (a *appender) start(taskID uint8) {
	a.chunk[0] = taskID
	a.index = 1
}

// taskID returns the task id this appender is currently assembling for.
func (a *appender) taskID() uint8 {
	return a.chunk[0]
}

// valid reports whether the appender currently holds a real task id.
func (a *appender) valid() bool {
	return a.chunk[0] != InvalidTaskID
}

// invalidate marks the appender idle, so a stray flush (e.g. a double End)
// becomes a no-op rather than emitting a bogus chunk.
func (a *appender) invalidate() {
	a.chunk[0] = InvalidTaskID
}

// pushByte writes one payload byte, flushing and restarting the chunk when it
// fills, exactly as Log.h's Appender::push does.
func (a *appender) pushByte(b byte) {
	a.chunk[a.index] = b
	a.index++
	if a.index == constants.ChunkSize {
		a.push(a.chunk, a.blocks)
		a.index = 1
	}
}

// pushBytes writes a run of payload bytes.
func (a *appender) pushBytes(bs []byte) {
	for _, b := range bs {
		a.pushByte(b)
	}
}

// flush terminates the current message with the end-of-message marker and
// pushes the final (possibly partial) chunk. After flush the appender is
// invalidated (so a repeated flush is a no-op) and ready for the next start.
func (a *appender) flush() {
	if !a.valid() {
		return
	}
	a.chunk[a.index] = endOfMessage
	a.push(a.chunk, a.blocks)
	a.index = 1
	a.invalidate()
}
