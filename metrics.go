package chunklog

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the latency histogram buckets in nanoseconds,
// covering a chunk's time from Push to leaving TransmitIfNeeded.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks performance and operational statistics for a pipeline.
type Metrics struct {
	// Chunk-level counters
	ChunksPushed  atomic.Uint64 // Chunks successfully enqueued
	ChunksDropped atomic.Uint64 // Chunks dropped by a non-blocking Push against a full queue
	ChunksSent    atomic.Uint64 // Chunks handed to the transmit sink

	// Byte counters
	BytesTransmitted atomic.Uint64 // Payload bytes written to the sink

	// Message-level counters
	MessagesCompleted atomic.Uint64 // Terminal chunks observed (one per finished Send)

	// Queue statistics
	QueueDepthTotal atomic.Uint64 // Cumulative queue depth samples
	QueueDepthCount atomic.Uint64 // Number of queue depth measurements
	MaxQueueDepth   atomic.Uint32 // Maximum observed queue depth

	// Performance tracking
	TotalLatencyNs atomic.Uint64 // Cumulative push-to-transmit latency in nanoseconds
	LatencyCount   atomic.Uint64 // Number of latency samples

	// Latency histogram buckets (cumulative counts)
	// Each bucket[i] contains the count of samples with latency <= LatencyBuckets[i]
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Pipeline lifecycle
	StartTime atomic.Int64 // Pipeline start timestamp (UnixNano)
	StopTime  atomic.Int64 // Pipeline stop timestamp (UnixNano)
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordPush records a successful chunk enqueue.
func (m *Metrics) RecordPush() {
	m.ChunksPushed.Add(1)
}

// RecordDrop records a chunk dropped by a non-blocking Push.
func (m *Metrics) RecordDrop() {
	m.ChunksDropped.Add(1)
}

// RecordTransmit records bytes handed to the sink and, when completesMessage
// is true, one completed message.
func (m *Metrics) RecordTransmit(chunks uint64, bytes uint64, completesMessage bool) {
	m.ChunksSent.Add(chunks)
	m.BytesTransmitted.Add(bytes)
	if completesMessage {
		m.MessagesCompleted.Add(1)
	}
}

// RecordQueueDepth records current queue depth for statistics.
func (m *Metrics) RecordQueueDepth(depth uint32) {
	m.QueueDepthTotal.Add(uint64(depth))
	m.QueueDepthCount.Add(1)

	for {
		current := m.MaxQueueDepth.Load()
		if depth <= current {
			break
		}
		if m.MaxQueueDepth.CompareAndSwap(current, depth) {
			break
		}
	}
}

// RecordLatency records one push-to-transmit latency sample and updates the
// histogram.
func (m *Metrics) RecordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.LatencyCount.Add(1)

	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the pipeline as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	ChunksPushed      uint64
	ChunksDropped     uint64
	ChunksSent        uint64
	BytesTransmitted  uint64
	MessagesCompleted uint64

	AvgQueueDepth float64
	MaxQueueDepth uint32

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	TransmitThroughputBps float64 // bytes transmitted per second
	DropRate              float64 // percentage of pushes dropped
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		ChunksPushed:      m.ChunksPushed.Load(),
		ChunksDropped:     m.ChunksDropped.Load(),
		ChunksSent:        m.ChunksSent.Load(),
		BytesTransmitted:  m.BytesTransmitted.Load(),
		MessagesCompleted: m.MessagesCompleted.Load(),
		MaxQueueDepth:     m.MaxQueueDepth.Load(),
	}

	queueDepthTotal := m.QueueDepthTotal.Load()
	queueDepthCount := m.QueueDepthCount.Load()
	if queueDepthCount > 0 {
		snap.AvgQueueDepth = float64(queueDepthTotal) / float64(queueDepthCount)
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	latencyCount := m.LatencyCount.Load()
	if latencyCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / latencyCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.TransmitThroughputBps = float64(snap.BytesTransmitted) / uptimeSeconds
	}

	totalPushAttempts := snap.ChunksPushed + snap.ChunksDropped
	if totalPushAttempts > 0 {
		snap.DropRate = float64(snap.ChunksDropped) / float64(totalPushAttempts) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if latencyCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalSamples := m.LatencyCount.Load()
	if totalSamples == 0 {
		return 0
	}

	targetCount := uint64(float64(totalSamples) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset resets all metrics counters (useful for testing).
func (m *Metrics) Reset() {
	m.ChunksPushed.Store(0)
	m.ChunksDropped.Store(0)
	m.ChunksSent.Store(0)
	m.BytesTransmitted.Store(0)
	m.MessagesCompleted.Store(0)
	m.QueueDepthTotal.Store(0)
	m.QueueDepthCount.Store(0)
	m.MaxQueueDepth.Store(0)
	m.TotalLatencyNs.Store(0)
	m.LatencyCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection external to Metrics itself
// (e.g. bridging into a host's own monitoring system).
type Observer interface {
	ObservePush(dropped bool)
	ObserveTransmit(chunks uint64, bytes uint64, completesMessage bool)
	ObserveQueueDepth(depth uint32)
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObservePush(bool)             {}
func (NoOpObserver) ObserveTransmit(uint64, uint64, bool) {}
func (NoOpObserver) ObserveQueueDepth(uint32)             {}

// MetricsObserver implements Observer using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObservePush(dropped bool) {
	if dropped {
		o.metrics.RecordDrop()
	} else {
		o.metrics.RecordPush()
	}
}

func (o *MetricsObserver) ObserveTransmit(chunks uint64, bytes uint64, completesMessage bool) {
	o.metrics.RecordTransmit(chunks, bytes, completesMessage)
}

func (o *MetricsObserver) ObserveQueueDepth(depth uint32) {
	o.metrics.RecordQueueDepth(depth)
}

var _ Observer = (*MetricsObserver)(nil)
var _ Observer = NoOpObserver{}
