// Package mainthread provides the capability of running work on one designated goroutine ("main thread").
//
// Everything that mutates a live event has to happen on that goroutine, so that value, version and registration
// table never need to be locked.
package mainthread

import "github.com/iotaledger/liveevent.go/ierrors"

// ErrNotOnMainThread is the cause of the panic raised when a main thread only method is invoked from another goroutine.
var ErrNotOnMainThread = ierrors.New("not on main thread")

// Dispatcher is the abstraction of a designated delivery goroutine.
type Dispatcher interface {
	// IsMainThread returns true if the calling goroutine is the main thread.
	IsMainThread() bool

	// PostToMainThread schedules the task to be executed on the main thread.
	PostToMainThread(task func())
}

// AssertMainThread panics if the calling goroutine is not the main thread of the given Dispatcher.
func AssertMainThread(dispatcher Dispatcher, methodName string) {
	if !dispatcher.IsMainThread() {
		panic(ierrors.Wrapf(ErrNotOnMainThread, "cannot invoke %s on a background goroutine", methodName))
	}
}

// RunOnMainThread executes the task right away if called from the main thread and schedules it otherwise.
func RunOnMainThread(dispatcher Dispatcher, task func()) {
	if dispatcher.IsMainThread() {
		task()

		return
	}

	dispatcher.PostToMainThread(task)
}
