// Package chunklog implements a chunked, non-blocking logging pipeline:
// many producer goroutines append message bytes through small fixed-size
// chunks into a bounded queue, and a single transmitter goroutine sorts and
// coalesces those chunks so that each task's message reaches the sink as
// one contiguous run, even when producers interleave heavily.
//
// The design and the two algorithms it depends on (the sorting ring buffer
// and the transmitter state machine) come from an embedded C++ logging
// library; this port keeps the same pipeline shape, trading the original's
// OS tasks/ISRs for goroutines and context.Context.
package chunklog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kallsen/chunklog/internal/constants"
	"github.com/kallsen/chunklog/internal/logging"
	"github.com/kallsen/chunklog/internal/platform"
	"github.com/kallsen/chunklog/internal/ring"
	"github.com/kallsen/chunklog/internal/transmit"
	"github.com/kallsen/chunklog/internal/transmitter"
)

// arenaSize covers every TaskID a Platform can hand out (0..MaxTaskCount-1)
// plus LocalTaskID, indexed directly by TaskID.
const arenaSize = constants.MaxTaskCount + 1

// Pipeline is the assembled chunked logging pipeline: one per process
// normally, wired to exactly one Platform. Create with New, start with
// Start, and shut down with Close.
type Pipeline struct {
	cfg      *Config
	pf       platform.Platform
	topics   *TopicRegistry
	metrics  *Metrics
	observer Observer

	ring        *ring.Buffer
	transmitBuf *transmit.Buffers
	loop        *transmitter.Loop

	arenaMu sync.Mutex
	arena   [arenaSize]*appender

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// sinkAdapter narrows a platform.Platform down to transmit.Sink while
// routing byte counts through the pipeline's metrics/observer. completesMessage
// is read before each Transmit call, since Buffers.Append already tracked
// whether the chunk that filled (or triggered refresh on) the write buffer
// was a message's terminal chunk.
type sinkAdapter struct {
	pf      platform.Platform
	obs     Observer
	buffers interface{ GotTerminalChunk() bool }
}

func (s *sinkAdapter) IsTransmitDone() bool         { return s.pf.IsTransmitDone() }
func (s *sinkAdapter) WaitWhileTransmitInProgress() { s.pf.WaitWhileTransmitInProgress() }
func (s *sinkAdapter) Transmit(bytes []byte, n int) {
	s.pf.Transmit(bytes, n)
	s.obs.ObserveTransmit(1, uint64(n), s.buffers.GotTerminalChunk())
}

// New assembles a Pipeline from cfg (nil selects DefaultConfig) and a
// Platform. It does not start the transmitter goroutine; call Start for
// that.
func New(cfg *Config, pf platform.Platform) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	metrics := NewMetrics()
	observer := Observer(NewMetricsObserver(metrics))

	p := &Pipeline{
		cfg:      cfg,
		pf:       pf,
		topics:   NewTopicRegistry(cfg.MaxTopicCount),
		metrics:  metrics,
		observer: observer,
		ring:     ring.New(cfg.CircularBufferLength),
	}

	adapter := &sinkAdapter{pf: pf, obs: observer}
	p.transmitBuf = transmit.New(cfg.TransmitBufferLength, adapter)
	adapter.buffers = p.transmitBuf
	p.loop = transmitter.New(transmitter.Config{
		Queue:         pf,
		Clock:         pf,
		Sink:          p.transmitBuf,
		Ring:          p.ring,
		Lifecycle:     pf,
		Pause:         cfg.PauseLength,
		RefreshPeriod: cfg.RefreshPeriod,
	})

	return p
}

// SetObserver overrides the metrics observer used for push/transmit
// tracking (e.g. to bridge into a host's own monitoring stack instead of
// the built-in Metrics).
func (p *Pipeline) SetObserver(obs Observer) {
	if obs == nil {
		obs = NoOpObserver{}
	}
	p.observer = obs
}

// Metrics returns the pipeline's built-in metrics.
func (p *Pipeline) Metrics() *Metrics { return p.metrics }

// Start launches the transmitter goroutine and calls Platform.Init,
// mirroring the source's init(): the platform is told when the
// transmitter's loop body has actually started and when a refresh fires.
func (p *Pipeline) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	started := make(chan struct{})
	var once sync.Once
	onStart := func() { once.Do(func() { close(started) }) }
	onRefresh := func() { p.transmitBuf.RefreshNeeded() }

	if err := p.pf.Init(onStart, onRefresh); err != nil {
		p.cancel()
		logging.Default().Errorf("pipeline: platform init failed: %v", err)
		return WrapError("Init", err)
	}
	logging.Default().Info("pipeline: starting transmitter")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		onStart()
		p.loop.Run(p.ctx)
	}()
	time.Sleep(constants.TransmitterStartupGrace)

	return nil
}

// Close cancels the transmitter goroutine, waits for it to observe
// shutdown, and releases the platform.
func (p *Pipeline) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.pf.Done()
	logging.Default().Info("pipeline: stopped")
	return nil
}

// push enqueues one chunk, recording it in metrics/observer.
func (p *Pipeline) push(chunk ring.Chunk, blocks bool) bool {
	ok := p.pf.Push([8]byte(chunk), blocks)
	p.observer.ObservePush(!ok)
	return ok
}

// RegisterTask registers the calling task with the platform, returning its
// TaskID. A full task table or double registration is fatal at the
// platform layer; this call does not return in that case.
func (p *Pipeline) RegisterTask(name string) uint8 {
	id := p.pf.RegisterCurrentTask(name)
	if id == InvalidTaskID {
		logging.Default().Errorf("pipeline: task registration failed for %q", name)
		p.pf.FatalError(platform.FatalOutOfTaskIDsOrDoubleRegistration)
		return InvalidTaskID
	}
	if p.cfg.AllowRegistrationLog {
		p.logLifecycle(id, name, true)
	}
	return id
}

// UnregisterTask removes the calling task's registration.
func (p *Pipeline) UnregisterTask() uint8 {
	id := p.pf.UnregisterCurrentTask()
	if id != InvalidTaskID && p.cfg.AllowRegistrationLog {
		p.logLifecycle(id, p.pf.CurrentTaskName(), false)
	}
	return id
}

// logLifecycle emits a LocalTaskID-attributed line reporting a task
// (un)registration, the supplemented feature mirroring the source's
// registration logging around registerCurrentTask/unregisterCurrentTask.
func (p *Pipeline) logLifecycle(id uint8, name string, registered bool) {
	a := p.appenderFor(LocalTaskID)
	a.start(LocalTaskID)
	p.writeHeader(a, LocalTaskID)
	verb := "unregistered"
	if registered {
		verb = "registered"
	}
	appendString(a, fmt.Sprintf("task %d (%s) %s", id, name, verb))
	a.flush()
}

// appenderFor returns the arena slot for taskID, creating it on first use.
// Each task is assumed to drive its own slot from one goroutine at a time,
// the same assumption the source makes about its per-task Appender array.
func (p *Pipeline) appenderFor(taskID uint8) *appender {
	p.arenaMu.Lock()
	a := p.arena[taskID]
	if a == nil {
		a = newAppender(taskID, p.push, p.cfg.Blocks)
		p.arena[taskID] = a
	}
	p.arenaMu.Unlock()
	return a
}
