// Package host is a reference platform.Platform for hosted (non-embedded)
// use: registration keyed by an opaque TaskHandle, a bounded Go channel as
// the chunk queue, an x/sys/unix timerfd-driven refresh timer, and a
// unix.Write transmit sink: the one concrete, usable implementation shipped
// alongside the pluggable interface the core depends on.
//
// Go goroutines have no stable OS-level identity to key a registration
// table on the way a FreeRTOS task handle would; every caller must carry
// its own TaskHandle, obtained from RegisterCurrentTask, across goroutine
// boundaries explicitly. CurrentTaskID maps the reserved "local" id, which
// it cannot resolve to a caller, to the invalid id rather than panicking.
package host

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kallsen/chunklog/internal/constants"
	"github.com/kallsen/chunklog/internal/logging"
	"github.com/kallsen/chunklog/internal/platform"
	"github.com/kallsen/chunklog/internal/queue"
)

// TaskHandle is the token RegisterCurrentTask hands back; callers must pass
// it to every subsequent Pipeline call made from a different goroutine,
// since there is no ambient "current task" to recover it from.
type TaskHandle = uint8

const invalidTaskID = 0xFF
const localTaskID = constants.MaxTaskCount

// Host implements platform.Platform over goroutines, a channel queue, and a
// real file descriptor sink (typically a pipe, fifo, or regular file).
type Host struct {
	mu        sync.Mutex
	nextID    uint8
	names     map[uint8]string

	adapter *queue.Adapter

	sinkFD int

	timerFD       int
	onRefreshFire func()

	doneCh chan struct{}
}

// New creates a Host whose transmit sink writes to sinkFD (already open,
// e.g. via unix.Open or an inherited fd like os.Stdout.Fd()).
func New(sinkFD int, queueLength int) *Host {
	return &Host{
		names:   make(map[uint8]string),
		adapter: queue.New(queueLength),
		sinkFD:  sinkFD,
		doneCh:  make(chan struct{}),
	}
}

// RegisterCurrentTask implements platform.TaskRegistry. The returned
// TaskHandle must be reused by the caller for every later call instead of
// platform.LocalTaskID/chunklog.LocalTaskID, since Host cannot recover a
// goroutine's identity on its own.
func (h *Host) RegisterCurrentTask(name string) TaskHandle {
	h.mu.Lock()
	defer h.mu.Unlock()

	if int(h.nextID) >= constants.MaxTaskCount {
		return invalidTaskID
	}
	for _, existing := range h.names {
		if existing == name {
			return invalidTaskID // double registration
		}
	}
	id := h.nextID
	h.nextID++
	h.names[id] = name
	return id
}

// UnregisterCurrentTask implements platform.TaskRegistry. Host has no way
// to know which handle "the current task" holds, so this always reports
// invalid; callers on a hosted platform should track and pass their own
// handle to whatever teardown path needs it instead.
func (h *Host) UnregisterCurrentTask() TaskHandle {
	return invalidTaskID
}

// CurrentTaskID implements platform.TaskRegistry: requested already is the
// caller's own handle on this platform (see TaskHandle doc), so it is
// returned unchanged, except for the reserved local sentinel which this
// platform cannot resolve without more context and maps to invalid.
func (h *Host) CurrentTaskID(requested uint8) uint8 {
	if requested == localTaskID {
		return invalidTaskID
	}
	return requested
}

// CurrentTaskName implements platform.TaskRegistry.
func (h *Host) CurrentTaskName() string {
	return ""
}

// IsInterrupt implements platform.TaskRegistry: a hosted platform never
// calls from interrupt context.
func (h *Host) IsInterrupt() bool { return false }

// Push implements platform.ChunkQueue.
func (h *Host) Push(chunk [8]byte, blocks bool) bool {
	return h.adapter.Push(chunk, blocks)
}

// Fetch implements platform.ChunkQueue.
func (h *Host) Fetch(pause time.Duration) ([8]byte, bool) {
	return h.adapter.Fetch(pause)
}

// Now implements platform.Clock using the Unix wall-clock time in
// milliseconds, the same units FreeRTOS tick counts approximate at 1kHz.
// The value follows the system clock, so it is not monotonic if that
// clock is stepped backwards.
func (h *Host) Now() uint64 {
	return uint64(time.Now().UnixMilli())
}

// WaitForData implements platform.Clock as a plain sleep: the queue.Adapter
// already blocks inside Fetch, so this just bounds how long the
// transmitter waits between Fetch attempts when the queue stays empty.
func (h *Host) WaitForData(timeout time.Duration) {
	time.Sleep(timeout)
}

// StartRefreshTimer implements platform.Clock using a Linux timerfd so the
// refresh callback fires even while the transmitter goroutine is blocked
// elsewhere, without polling.
func (h *Host) StartRefreshTimer(period time.Duration) {
	h.mu.Lock()
	fd := h.timerFD
	cb := h.onRefreshFire
	h.mu.Unlock()

	if fd == 0 || cb == nil {
		return
	}

	spec := unix.ItimerSpec{
		Value: unix.NsecToTimespec(period.Nanoseconds()),
	}
	_ = unix.TimerfdSettime(fd, 0, &spec, nil)
}

// IsTransmitDone implements platform.Transmitter: Transmit is synchronous.
func (h *Host) IsTransmitDone() bool { return true }

// WaitWhileTransmitInProgress implements platform.Transmitter as a no-op.
func (h *Host) WaitWhileTransmitInProgress() {}

// Transmit implements platform.Transmitter with a direct unix.Write.
func (h *Host) Transmit(bytes []byte, n int) {
	_, _ = unix.Write(h.sinkFD, bytes[:n])
}

// FatalError implements platform.FatalHandler by panicking, matching the
// source's documented behavior for these two conditions: they are
// programming errors (task/topic table sized too small), not runtime ones.
func (h *Host) FatalError(kind platform.FatalKind) {
	logging.Default().Error("host: fatal condition", "kind", kind.String())
	panic(fmt.Sprintf("chunklog: fatal: %s", kind.String()))
}

// Init implements platform.Platform: arms a timerfd for the refresh
// callback and calls onTransmitterStart before returning, that is before
// the caller has launched its transmitter goroutine.
func (h *Host) Init(onTransmitterStart func(), onRefresh func()) error {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		logging.Default().Errorf("host: timerfd_create failed: %v", err)
		return fmt.Errorf("timerfd_create: %w", err)
	}
	logging.Default().Info("host: initialized")

	h.mu.Lock()
	h.timerFD = fd
	h.onRefreshFire = onRefresh
	h.mu.Unlock()

	go h.watchTimer(fd, onRefresh)

	if onTransmitterStart != nil {
		onTransmitterStart()
	}
	return nil
}

func (h *Host) watchTimer(fd int, onRefresh func()) {
	buf := make([]byte, 8)
	for {
		select {
		case <-h.doneCh:
			return
		default:
		}
		n, err := unix.Read(fd, buf)
		if err != nil || n <= 0 {
			return
		}
		if onRefresh != nil {
			onRefresh()
		}
	}
}

// Done implements platform.Platform, releasing the timerfd.
func (h *Host) Done() {
	h.mu.Lock()
	fd := h.timerFD
	h.timerFD = 0
	h.mu.Unlock()

	close(h.doneCh)
	if fd != 0 {
		_ = unix.Close(fd)
	}
	logging.Default().Info("host: shut down")
}

// FinishedTransmitterTask implements platform.Platform as a no-op: Host
// holds no resource that must outlive the transmitter loop beyond the sink
// fd, which the caller owns.
func (h *Host) FinishedTransmitterTask() {}

var _ platform.Platform = (*Host)(nil)
