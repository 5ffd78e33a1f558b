package constants

import "time"

// Default configuration constants
const (
	// ChunkSize is the fixed byte size of a chunk. Byte 0 carries the TaskID;
	// bytes 1..ChunkSize-1 carry payload.
	ChunkSize = 8

	// DefaultQueueLength is the default MPSC chunk queue depth.
	DefaultQueueLength = 64

	// DefaultCircularBufferLength is the default sorting ring length, in chunks.
	DefaultCircularBufferLength = 64

	// DefaultTransmitBufferLength is the default length of one half of the
	// double transmit buffer, in chunks.
	DefaultTransmitBufferLength = 32

	// DefaultPauseLengthMillis is the default wait, in milliseconds, for the
	// transmitter's waitForData / waitWhileTransmitInProgress primitives.
	DefaultPauseLengthMillis = 100

	// DefaultRefreshPeriodMillis is the default period, in milliseconds, after
	// which a partially filled transmit buffer is flushed anyway.
	DefaultRefreshPeriodMillis = 1000

	// MaxTaskCount is the largest number of tasks the registry supports,
	// one below cInvalidTaskID (0xFF) so cLocalTaskID can sit at MaxTaskCount.
	MaxTaskCount = 254

	// DefaultAppendStackBufferLength is the default scratch buffer length
	// used by the integer formatter's digit accumulator.
	DefaultAppendStackBufferLength = 70

	// DefaultMaxTopicCount bounds the topic registry.
	DefaultMaxTopicCount = 64
)

// Timing constants for pipeline lifecycle.
//
// These delays account for goroutine scheduling latency during pipeline
// startup and shutdown on a hosted platform. The chunked pipeline requires
// the transmitter goroutine to be draining the queue before producers start
// emitting, and a short grace period on shutdown so the transmitter's
// current iteration can flush best-effort before chunks start being lost.
const (
	// TransmitterStartupGrace is how long Start waits after launching the
	// transmitter goroutine before returning, giving it a chance to reach
	// its first waitForData() call.
	TransmitterStartupGrace = 1 * time.Millisecond

	// TransmitterShutdownGrace is a grace period for the transmitter's last
	// iteration after the run flag clears. Pipeline.Close does not read it:
	// Close waits for the transmitter goroutine to return, with no time limit.
	TransmitterShutdownGrace = 10 * time.Millisecond
)
