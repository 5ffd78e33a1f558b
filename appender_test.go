package chunklog

import (
	"testing"

	"github.com/kallsen/chunklog/internal/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppenderStartSetsTaskIDAndIndex(t *testing.T) {
	a := newAppender(5, func(ring.Chunk, bool) bool { return true }, true)
	assert.Equal(t, uint8(5), a.taskID())
	assert.True(t, a.valid())
	assert.Equal(t, 1, a.index)
}

func TestAppenderInvalidate(t *testing.T) {
	a := newAppender(5, func(ring.Chunk, bool) bool { return true }, true)
	a.invalidate()
	assert.False(t, a.valid())
	assert.Equal(t, InvalidTaskID, a.taskID())
}

func TestAppenderPushFillsChunkThenFlushes(t *testing.T) {
	var pushed []ring.Chunk
	a := newAppender(2, func(c ring.Chunk, blocks bool) bool {
		pushed = append(pushed, c)
		return true
	}, true)

	for _, b := range []byte("abcdefg") { // exactly 7 payload bytes, fills the chunk
		a.pushByte(b)
	}

	require.Len(t, pushed, 1)
	assert.Equal(t, uint8(2), pushed[0][0])
	assert.Equal(t, []byte("abcdefg"), pushed[0][1:])
	assert.Equal(t, 1, a.index, "index resets to 1 after a full chunk pushes")
}

func TestAppenderFlushAppendsTerminator(t *testing.T) {
	var pushed []ring.Chunk
	a := newAppender(3, func(c ring.Chunk, blocks bool) bool {
		pushed = append(pushed, c)
		return true
	}, true)

	a.pushByte('h')
	a.pushByte('i')
	a.flush()

	require.Len(t, pushed, 1)
	assert.Equal(t, byte('h'), pushed[0][1])
	assert.Equal(t, byte('i'), pushed[0][2])
	assert.Equal(t, byte(endOfMessage), pushed[0][3])
	assert.Equal(t, 1, a.index)
}

func TestAppenderPushBytes(t *testing.T) {
	var pushed []ring.Chunk
	a := newAppender(1, func(c ring.Chunk, blocks bool) bool {
		pushed = append(pushed, c)
		return true
	}, true)

	a.pushBytes([]byte("hi"))
	a.flush()

	require.Len(t, pushed, 1)
	assert.Equal(t, "hi\r", string(pushed[0][1:4]))
}
