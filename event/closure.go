package event

import (
	"go.uber.org/atomic"
)

var idCounter = atomic.NewUint64(0)

// Closure wraps a callback so that it can be detached from an Event again.
type Closure[T any] struct {
	ID       uint64
	Function func(event T)
}

// NewClosure creates a Closure with a unique ID for the given function.
func NewClosure[T any](function func(event T)) *Closure[T] {
	return &Closure[T]{
		ID:       idCounter.Inc(),
		Function: function,
	}
}
