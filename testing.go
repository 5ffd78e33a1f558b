package chunklog

import (
	"sync"
	"time"

	"github.com/kallsen/chunklog/internal/platform"
)

// MockPlatform is a mock platform.Platform for testing code that builds on
// Pipeline without a real host environment. It implements every method the
// pipeline calls and tracks call counts for verification, the same shape as
// a backend test double tracking read/write/flush/sync calls.
type MockPlatform struct {
	mu sync.Mutex

	nextTaskID  uint8
	names       map[uint8]string
	byName      map[string]uint8
	currentName string

	queue     [][8]byte
	queueCap  int
	tick      uint64
	transmits [][]byte

	interrupt   bool
	initCalled  bool
	doneCalled  bool
	finished    bool
	fatalCalls  []FatalKind
	onStart     func()
	onRefresh   func()

	registerCalls   int
	unregisterCalls int
	pushCalls       int
	fetchCalls      int
	transmitCalls   int
}

// NewMockPlatform creates a mock platform with the given queue capacity.
func NewMockPlatform(queueCapacity int) *MockPlatform {
	return &MockPlatform{
		names:    make(map[uint8]string),
		byName:   make(map[string]uint8),
		queueCap: queueCapacity,
	}
}

// RegisterCurrentTask implements platform.TaskRegistry.
func (m *MockPlatform) RegisterCurrentTask(name string) uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registerCalls++
	if id, ok := m.byName[name]; ok {
		_ = id
		return InvalidTaskID // double registration
	}
	if int(m.nextTaskID) >= 254 {
		return InvalidTaskID
	}
	id := m.nextTaskID
	m.nextTaskID++
	m.names[id] = name
	m.byName[name] = id
	m.currentName = name
	return id
}

// UnregisterCurrentTask implements platform.TaskRegistry.
func (m *MockPlatform) UnregisterCurrentTask() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unregisterCalls++
	id, ok := m.byName[m.currentName]
	if !ok {
		return InvalidTaskID
	}
	delete(m.byName, m.currentName)
	delete(m.names, id)
	return id
}

// CurrentTaskID implements platform.TaskRegistry: requested is returned
// unchanged unless it is the reserved "resolve to caller" sentinel.
func (m *MockPlatform) CurrentTaskID(requested uint8) uint8 {
	if requested != LocalTaskID {
		return requested
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byName[m.currentName]; ok {
		return id
	}
	return InvalidTaskID
}

// CurrentTaskName implements platform.TaskRegistry.
func (m *MockPlatform) CurrentTaskName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentName
}

// IsInterrupt implements platform.TaskRegistry.
func (m *MockPlatform) IsInterrupt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interrupt
}

// SetInterrupt lets tests simulate an ISR-context call.
func (m *MockPlatform) SetInterrupt(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupt = v
}

// Push implements platform.ChunkQueue.
func (m *MockPlatform) Push(chunk [8]byte, blocks bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pushCalls++
	if len(m.queue) >= m.queueCap {
		return false
	}
	m.queue = append(m.queue, chunk)
	return true
}

// Fetch implements platform.ChunkQueue.
func (m *MockPlatform) Fetch(pause time.Duration) ([8]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls++
	if len(m.queue) == 0 {
		return [8]byte{}, false
	}
	c := m.queue[0]
	m.queue = m.queue[1:]
	return c, true
}

// Now implements platform.Clock.
func (m *MockPlatform) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick++
	return m.tick
}

// WaitForData implements platform.Clock as a no-op (tests drive timing
// explicitly rather than sleeping).
func (m *MockPlatform) WaitForData(timeout time.Duration) {}

// StartRefreshTimer implements platform.Clock as a no-op.
func (m *MockPlatform) StartRefreshTimer(period time.Duration) {}

// IsTransmitDone implements platform.Transmitter.
func (m *MockPlatform) IsTransmitDone() bool { return true }

// WaitWhileTransmitInProgress implements platform.Transmitter as a no-op.
func (m *MockPlatform) WaitWhileTransmitInProgress() {}

// Transmit implements platform.Transmitter, recording the bytes written.
func (m *MockPlatform) Transmit(bytes []byte, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transmitCalls++
	cp := make([]byte, n)
	copy(cp, bytes[:n])
	m.transmits = append(m.transmits, cp)
}

// FatalError implements platform.FatalHandler. Unlike a real platform, the
// mock records the call and returns instead of halting, so tests can assert
// on it.
func (m *MockPlatform) FatalError(kind FatalKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fatalCalls = append(m.fatalCalls, kind)
}

// Init implements platform.Platform.
func (m *MockPlatform) Init(onTransmitterStart func(), onRefresh func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalled = true
	m.onStart = onTransmitterStart
	m.onRefresh = onRefresh
	return nil
}

// Done implements platform.Platform.
func (m *MockPlatform) Done() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doneCalled = true
}

// FinishedTransmitterTask implements platform.Platform.
func (m *MockPlatform) FinishedTransmitterTask() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = true
}

// Testing utility methods

// Transmits returns a copy of every byte slice handed to Transmit so far.
func (m *MockPlatform) Transmits() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.transmits))
	copy(out, m.transmits)
	return out
}

// FatalCalls returns every FatalKind recorded by FatalError.
func (m *MockPlatform) FatalCalls() []FatalKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FatalKind, len(m.fatalCalls))
	copy(out, m.fatalCalls)
	return out
}

// CallCounts returns the number of times each tracked method has been called.
func (m *MockPlatform) CallCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"register":   m.registerCalls,
		"unregister": m.unregisterCalls,
		"push":       m.pushCalls,
		"fetch":      m.fetchCalls,
		"transmit":   m.transmitCalls,
	}
}

// QueueLen returns the number of chunks currently queued.
func (m *MockPlatform) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// TriggerRefresh simulates the platform's refresh timer firing, letting
// tests force a partial transmit-buffer flush instead of waiting for it to
// fill. No-op before Init has registered a callback.
func (m *MockPlatform) TriggerRefresh() {
	m.mu.Lock()
	onRefresh := m.onRefresh
	m.mu.Unlock()
	if onRefresh != nil {
		onRefresh()
	}
}

var _ platform.Platform = (*MockPlatform)(nil)
