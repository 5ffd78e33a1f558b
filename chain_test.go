package chunklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainAssemblesMultipleValues(t *testing.T) {
	p, pf := newTestPipeline(t)

	err := p.I(7).Value("x=").Value(uint32(5)).End()
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	assert.Equal(t, "07 x=5", msg)
}

func TestChainFormatAppliesToNextValueOnly(t *testing.T) {
	p, pf := newTestPipeline(t)

	err := p.I(7).Format(FormatX4).Value(uint32(10)).Value(uint32(10)).End()
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	// first 10 formatted as hex (sticky-once), second as plain decimal default
	assert.Equal(t, "07 000a10", msg)
}

func TestChainNHasNoHeader(t *testing.T) {
	p, pf := newTestPipeline(t)

	err := p.N(7).Value("continuation").End()
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	assert.Equal(t, "continuation", msg)
}

func TestChainTopicInsertsPrefix(t *testing.T) {
	p, pf := newTestPipeline(t)

	h, err := p.topics.Register("net")
	require.NoError(t, err)

	err = p.ITopic(7, h).Value("up").End()
	require.NoError(t, err)

	msg := drainMessage(t, pf)
	assert.Equal(t, "07 net up", msg)
}

func TestChainDroppedByInterruptIsNilSafe(t *testing.T) {
	p, pf := newTestPipeline(t)
	pf.SetInterrupt(true)

	err := p.I(7).Format(FormatX4).Value(uint32(1)).End()
	require.NoError(t, err)

	_, ok := pf.Fetch(0)
	assert.False(t, ok)
}

func TestChainUnregisteredTaskReturnsErrorOnEnd(t *testing.T) {
	p, _ := newTestPipeline(t)

	err := p.I(InvalidTaskID).Value("x").End()
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeNotRegistered))
}
