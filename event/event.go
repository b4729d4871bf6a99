package event

import (
	"go.uber.org/atomic"

	"github.com/iotaledger/liveevent.go/orderedmap"
)

// Event represents an object that is triggered to notify code of "interesting updates" that may affect its behavior.
// Callbacks are executed synchronously in the order they were attached.
type Event[T any] struct {
	callbacks *orderedmap.OrderedMap[uint64, func(T)]
}

// New creates a new Event.
func New[T any]() *Event[T] {
	return &Event[T]{
		callbacks: orderedmap.New[uint64, func(T)](),
	}
}

// Attach registers a Closure that is executed when the Event triggers.
// If 'triggerMaxCount' is >0, the Closure is automatically detached after reaching the trigger limit.
func (e *Event[T]) Attach(closure *Closure[T], triggerMaxCount ...uint64) {
	if closure == nil {
		return
	}

	callbackFunc := closure.Function
	if len(triggerMaxCount) > 0 && triggerMaxCount[0] > 0 {
		triggerCount := atomic.NewUint64(0)

		callbackFunc = func(event T) {
			if triggerCount.Inc() >= triggerMaxCount[0] {
				e.detachID(closure.ID)
			}

			closure.Function(event)
		}
	}

	e.callbacks.Set(closure.ID, callbackFunc)
}

// Hook is a shortcut that wraps the callback in a Closure, attaches it and returns the function that detaches it.
func (e *Event[T]) Hook(callback func(T), triggerMaxCount ...uint64) (unhook func()) {
	closure := NewClosure(callback)
	e.Attach(closure, triggerMaxCount...)

	return func() {
		e.Detach(closure)
	}
}

// Detach unregisters a Closure that was previously registered.
func (e *Event[T]) Detach(closure *Closure[T]) {
	if closure == nil {
		return
	}

	e.detachID(closure.ID)
}

// DetachAll removes all registered callbacks.
func (e *Event[T]) DetachAll() {
	e.callbacks.Clear()
}

// Trigger calls the registered callbacks with the given parameter.
func (e *Event[T]) Trigger(event T) {
	e.callbacks.ForEach(func(_ uint64, callback func(T)) bool {
		callback(event)

		return true
	})
}

// HasCallbacks returns true if at least one callback is attached.
func (e *Event[T]) HasCallbacks() bool {
	return e.callbacks.Size() > 0
}

func (e *Event[T]) detachID(closureID uint64) {
	e.callbacks.Delete(closureID)
}
