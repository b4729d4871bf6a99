package mainthread

import (
	"github.com/petermattis/goid"

	"github.com/iotaledger/liveevent.go/syncutils"
)

// Manual is a Dispatcher whose main thread is the goroutine that created it. Posted tasks are queued until RunPending
// is called, which makes it the Dispatcher of choice for deterministic tests.
type Manual struct {
	goroutineID int64

	pending      []func()
	pendingMutex syncutils.Mutex
}

// NewManual creates a Manual dispatcher bound to the calling goroutine.
func NewManual() *Manual {
	return &Manual{
		goroutineID: goid.Get(),
	}
}

// IsMainThread returns true if it is called from the goroutine that created the dispatcher.
func (m *Manual) IsMainThread() bool {
	return goid.Get() == m.goroutineID
}

// PostToMainThread queues the task until RunPending is called.
func (m *Manual) PostToMainThread(task func()) {
	m.pendingMutex.Lock()
	defer m.pendingMutex.Unlock()

	m.pending = append(m.pending, task)
}

// PendingCount returns the amount of queued tasks.
func (m *Manual) PendingCount() int {
	m.pendingMutex.Lock()
	defer m.pendingMutex.Unlock()

	return len(m.pending)
}

// RunPending executes the queued tasks (including tasks queued while running them) and returns how many were
// executed.
func (m *Manual) RunPending() (executed int) {
	AssertMainThread(m, "RunPending")

	for {
		m.pendingMutex.Lock()
		if len(m.pending) == 0 {
			m.pendingMutex.Unlock()

			return executed
		}
		task := m.pending[0]
		m.pending[0] = nil
		m.pending = m.pending[1:]
		m.pendingMutex.Unlock()

		task()
		executed++
	}
}

var _ Dispatcher = &Manual{}
