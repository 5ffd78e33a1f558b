package chunklog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assembledMessages concatenates every transmitted buffer and splits it on
// the transmit-side line terminator ('\n', substituted for the appender's
// '\r' by the transmit buffers) into complete messages, discarding any
// trailing partial one still sitting in a write buffer.
func assembledMessages(pf *MockPlatform) []string {
	var all strings.Builder
	for _, b := range pf.Transmits() {
		all.Write(b)
	}
	lines := strings.Split(all.String(), "\n")
	if len(lines) > 0 {
		lines = lines[:len(lines)-1] // drop trailing partial/empty segment
	}
	return lines
}

// TestPipelineConcurrentProducersStayContiguous drives many goroutines
// sending through one Pipeline at once and asserts that, for every message
// that made it out, the transmitted bytes for that message are exactly
// what its producer sent: the sorting ring's whole job is to keep one
// task's message contiguous on the wire even under heavy interleaving.
func TestPipelineConcurrentProducersStayContiguous(t *testing.T) {
	pf := NewMockPlatform(4096)
	cfg := DefaultConfig()
	cfg.TickFormat = FormatInvalid
	cfg.TransmitBufferLength = 2 // small buffers so both halves cycle often
	p := New(cfg, pf)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))

	const producers = 8
	const messagesPerProducer = 20

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			taskID := p.RegisterTask(fmt.Sprintf("worker-%d", i))
			for m := 0; m < messagesPerProducer; m++ {
				err := p.SendNoHeader(taskID, fmt.Sprintf("worker%d-msg%d", i, m))
				assert.NoError(t, err)
			}
			p.UnregisterTask()
		}(i)
	}
	wg.Wait()

	// Drain whatever is left sitting in the ring/write buffer.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pf.TriggerRefresh()
		if pf.QueueLen() == 0 {
			time.Sleep(5 * time.Millisecond)
			pf.TriggerRefresh()
			break
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	require.NoError(t, p.Close())

	seenPerWorker := make(map[int]map[int]bool)
	for _, line := range assembledMessages(pf) {
		if !strings.HasPrefix(line, "worker") {
			continue // registration/unregistration lifecycle lines
		}
		var workerIdx, msgIdx int
		_, err := fmt.Sscanf(line, "worker%d-msg%d", &workerIdx, &msgIdx)
		require.NoError(t, err, "line %q must parse as a whole, contiguous message", line)
		assert.Equal(t, fmt.Sprintf("worker%d-msg%d", workerIdx, msgIdx), line)
		if seenPerWorker[workerIdx] == nil {
			seenPerWorker[workerIdx] = make(map[int]bool)
		}
		assert.False(t, seenPerWorker[workerIdx][msgIdx], "duplicate message %q", line)
		seenPerWorker[workerIdx][msgIdx] = true
	}
}

// TestPipelineRegisterTaskLogsLifecycle exercises the supplemented
// registration-logging feature: RegisterTask/UnregisterTask should each
// emit one line attributed to LocalTaskID when AllowRegistrationLog is set.
func TestPipelineRegisterTaskLogsLifecycle(t *testing.T) {
	pf := NewMockPlatform(64)
	cfg := DefaultConfig()
	cfg.TickFormat = FormatInvalid
	cfg.TransmitBufferLength = 1
	p := New(cfg, pf)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))

	id := p.RegisterTask("sensor")
	require.NotEqual(t, InvalidTaskID, id)
	p.UnregisterTask()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && pf.QueueLen() > 0 {
		pf.TriggerRefresh()
		time.Sleep(time.Millisecond)
	}
	pf.TriggerRefresh()
	time.Sleep(5 * time.Millisecond)
	pf.TriggerRefresh()

	cancel()
	require.NoError(t, p.Close())

	lines := assembledMessages(pf)
	var registered, unregistered bool
	for _, line := range lines {
		if strings.Contains(line, "registered") && strings.Contains(line, "sensor") {
			if strings.Contains(line, "unregistered") {
				unregistered = true
			} else {
				registered = true
			}
		}
	}
	assert.True(t, registered, "expected a registration line, got %v", lines)
	assert.True(t, unregistered, "expected an unregistration line, got %v", lines)
}
