package mainthread

import (
	"context"
	"sync"

	"github.com/petermattis/goid"
	"go.uber.org/atomic"

	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/logger"
	"github.com/iotaledger/liveevent.go/options"
	"github.com/iotaledger/liveevent.go/syncutils"
)

// ErrLoopShutdown is returned when a task is submitted to a loop that was already stopped.
var ErrLoopShutdown = ierrors.New("event loop was shut down")

// EventLoop is a Dispatcher backed by a single goroutine that executes the queued tasks one after another.
type EventLoop struct {
	*logger.WrappedLogger

	ctx       context.Context
	ctxCancel context.CancelFunc

	settings *loopSettings

	calls chan func()

	// goroutineID is the id of the loop goroutine (0 while the loop is not running).
	goroutineID *atomic.Int64

	running  bool
	shutdown bool

	mutex syncutils.RWMutex
	wait  sync.WaitGroup
}

// NewEventLoop returns a new stopped EventLoop.
func NewEventLoop(opts ...options.Option[loopSettings]) *EventLoop {
	settings := options.Apply(defaultLoopSettings(), opts)

	ctx, ctxCancel := context.WithCancel(context.Background())

	return &EventLoop{
		WrappedLogger: logger.NewWrappedLogger(settings.logger),
		ctx:           ctx,
		ctxCancel:     ctxCancel,
		settings:      settings,
		calls:         make(chan func(), settings.queueSize),
		goroutineID:   atomic.NewInt64(0),
	}
}

// IsMainThread returns true if it is called from the loop goroutine.
func (e *EventLoop) IsMainThread() bool {
	id := e.goroutineID.Load()

	return id != 0 && id == goid.Get()
}

// PostToMainThread submits the task to the loop.
func (e *EventLoop) PostToMainThread(task func()) {
	e.Submit(task)
}

// Submit submits a task to the loop, if the queue is full the call blocks until the task is successfully submitted.
// Tasks submitted after the loop was stopped are dropped.
func (e *EventLoop) Submit(task func()) {
	e.mutex.RLock()
	if e.shutdown {
		e.mutex.RUnlock()
		e.LogDebugf("dropping task submitted after shutdown")

		return
	}
	e.mutex.RUnlock()

	select {
	case e.calls <- task:
	case <-e.ctx.Done():
		e.LogDebugf("dropping task submitted during shutdown")
	}
}

// TrySubmit submits a task to the loop without blocking, it returns false if the queue is full or the loop was
// stopped.
func (e *EventLoop) TrySubmit(task func()) (added bool) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	if e.shutdown {
		return false
	}

	select {
	case e.calls <- task:
		return true
	default:
		return false
	}
}

// SubmitAndWait executes the task on the loop and waits until it was executed. Called from the loop goroutine it
// executes the task right away.
func (e *EventLoop) SubmitAndWait(task func()) error {
	if e.IsMainThread() {
		e.execute(task)

		return nil
	}

	e.mutex.RLock()
	shutdown := e.shutdown
	e.mutex.RUnlock()

	if shutdown {
		return ErrLoopShutdown
	}

	done := make(chan struct{})
	e.Submit(func() {
		defer close(done)

		task()
	})

	select {
	case <-done:
		return nil
	case <-e.ctx.Done():
		// the task may still be flushed, but we do not wait for it.
		select {
		case <-done:
			return nil
		default:
			return ErrLoopShutdown
		}
	}
}

// Start starts the EventLoop.
func (e *EventLoop) Start() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.running {
		return
	}

	if e.shutdown {
		panic("EventLoop was already used before")
	}
	e.running = true

	started := make(chan struct{})

	e.wait.Add(1)
	go e.loop(started)

	<-started
}

// Run starts the EventLoop and waits for its shutdown.
func (e *EventLoop) Run() {
	e.Start()

	e.wait.Wait()
}

// Stop stops the EventLoop.
func (e *EventLoop) Stop() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.running {
		e.shutdown = true
		e.running = false

		e.ctxCancel()
	}
}

// StopAndWait stops the EventLoop and waits for its shutdown.
func (e *EventLoop) StopAndWait() {
	e.Stop()
	e.wait.Wait()
}

// PendingQueueSize returns the amount of tasks pending to be processed.
func (e *EventLoop) PendingQueueSize() int {
	return len(e.calls)
}

func (e *EventLoop) loop(started chan struct{}) {
	defer e.wait.Done()

	e.goroutineID.Store(goid.Get())
	defer e.goroutineID.Store(0)

	close(started)

	for {
		select {
		case <-e.ctx.Done():
			if e.settings.flushTasksAtShutdown {
				e.flush()
			}

			return

		case task := <-e.calls:
			e.execute(task)
		}
	}
}

// flush processes all waiting tasks after the shutdown signal.
func (e *EventLoop) flush() {
	for {
		select {
		case task := <-e.calls:
			e.execute(task)
		default:
			return
		}
	}
}

func (e *EventLoop) execute(task func()) {
	defer func() {
		if err := ierrors.Recovered(recover()); err != nil {
			e.LogErrorf("task of event loop panicked: %s\n%s", err, ierrors.StackTrace(err))
		}
	}()

	task()
}

// code guard to ensure that EventLoop implements Dispatcher.
var _ Dispatcher = &EventLoop{}
