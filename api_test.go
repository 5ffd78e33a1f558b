package chunklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drainMessage pulls every queued chunk off pf and reassembles the payload
// bytes up to (not including) the terminal '\r'.
func drainMessage(t *testing.T, pf *MockPlatform) string {
	t.Helper()
	var out []byte
	for {
		chunk, ok := pf.Fetch(0)
		if !ok {
			break
		}
		for i := 1; i < len(chunk); i++ {
			if chunk[i] == endOfMessage {
				return string(out)
			}
			out = append(out, chunk[i])
		}
	}
	return string(out)
}

func newTestPipeline(t *testing.T) (*Pipeline, *MockPlatform) {
	t.Helper()
	pf := NewMockPlatform(256)
	cfg := DefaultConfig()
	cfg.TaskRepresentation = TaskRepresentationID
	cfg.TickFormat = FormatInvalid // keep expected strings simple
	p := New(cfg, pf)
	return p, pf
}

func TestSendEmitsHeaderAndValue(t *testing.T) {
	p, pf := newTestPipeline(t)

	err := p.Send(7, uint32(1234567890))
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	assert.Equal(t, "07 1234567890", msg)
}

func TestSendNoHeaderOmitsTaskAndTick(t *testing.T) {
	p, pf := newTestPipeline(t)

	err := p.SendNoHeader(7, "hi")
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	assert.Equal(t, "hi", msg)
}

func TestSendTopicInsertsTopicAfterHeader(t *testing.T) {
	p, pf := newTestPipeline(t)

	h, err := p.topics.Register("sys")
	require.NoError(t, err)

	err = p.SendTopic(7, h, true)
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	assert.Equal(t, "07 sys true", msg)
}

func TestSendWithExplicitFormat(t *testing.T) {
	p, pf := newTestPipeline(t)

	err := p.Send(7, uint32(42), FormatX4)
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	assert.Equal(t, "07 002a", msg)
}

func TestSendFromInterruptWithoutLogFromISRIsSilentlyDropped(t *testing.T) {
	p, pf := newTestPipeline(t)
	pf.SetInterrupt(true)

	err := p.Send(7, "dropped")
	require.NoError(t, err)

	_, ok := pf.Fetch(0)
	assert.False(t, ok, "nothing should have been queued")
}

func TestSendUnregisteredTaskReturnsError(t *testing.T) {
	p, _ := newTestPipeline(t)

	err := p.Send(InvalidTaskID, "x")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeNotRegistered))
}
