package mainthread

// Instant is a Dispatcher that treats every goroutine as main thread and executes posted tasks right away.
//
// It is only safe if the caller guarantees that a single goroutine uses the dispatched components.
type Instant struct{}

// NewInstant returns an Instant dispatcher.
func NewInstant() *Instant {
	return &Instant{}
}

// IsMainThread always returns true.
func (i *Instant) IsMainThread() bool {
	return true
}

// PostToMainThread executes the task on the calling goroutine.
func (i *Instant) PostToMainThread(task func()) {
	task()
}

var _ Dispatcher = &Instant{}
