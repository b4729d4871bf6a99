package liveevent

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/mainthread"
)

// Mediator is a LiveEvent that observes other LiveEvents (its sources). The sources are only observed while the
// Mediator has active listeners.
type Mediator[T any] struct {
	*LiveEvent[T]

	// sources maps the observed LiveEvents to their pluggable bindings in insertion order.
	sources *linkedhashmap.Map
}

// pluggable is the type independent part of a source binding.
type pluggable interface {
	plug()
	unplug()
}

// source forwards the values of an observed LiveEvent to the onChanged callback.
type source[S any] struct {
	event        *LiveEvent[S]
	onChanged    func(S)
	version      int
	subscription *Subscription
}

func (s *source[S]) plug() {
	if s.subscription == nil {
		s.subscription = s.event.ListenForever(s.forward)
	}
}

func (s *source[S]) unplug() {
	if s.subscription != nil {
		s.subscription.Unsubscribe()
		s.subscription = nil
	}
}

func (s *source[S]) forward(value S) {
	if version := s.event.Version(); version != s.version {
		s.version = version
		s.onChanged(value)
	}
}

// NewMediator creates a Mediator without sources.
func NewMediator[T any](dispatcher mainthread.Dispatcher, opts ...Option) *Mediator[T] {
	m := &Mediator[T]{
		LiveEvent: New[T](dispatcher, opts...),
		sources:   linkedhashmap.New(),
	}

	m.Events.ActiveStateChanged.Hook(func(active bool) {
		m.sources.Each(func(_ interface{}, binding interface{}) {
			if active {
				binding.(pluggable).plug()
			} else {
				binding.(pluggable).unplug()
			}
		})
	})

	return m
}

// AddSource starts to observe the source. The onChanged callback is invoked with the values of the source as long
// as the Mediator has active listeners.
//
// The source needs to be delivered on the same main thread as the Mediator.
func AddSource[T, S any](m *Mediator[T], sourceEvent *LiveEvent[S], onChanged func(S)) error {
	mainthread.AssertMainThread(m.dispatcher, "AddSource")

	if sourceEvent.dispatcher != m.dispatcher {
		return ierrors.Wrapf(ErrForeignDispatcher, "failed to add %s to %s", sourceEvent.name, m.name)
	}

	if _, exists := m.sources.Get(sourceEvent); exists {
		return ierrors.Wrapf(ErrSourceAlreadyAdded, "failed to add %s to %s", sourceEvent.name, m.name)
	}

	binding := &source[S]{
		event:     sourceEvent,
		onChanged: onChanged,
		version:   neverObserved,
	}
	m.sources.Put(sourceEvent, binding)

	if m.HasActiveListeners() {
		binding.plug()
	}

	return nil
}

// RemoveSource stops observing the source. Removing a source that was not added is a no-op.
func RemoveSource[T, S any](m *Mediator[T], sourceEvent *LiveEvent[S]) {
	mainthread.AssertMainThread(m.dispatcher, "RemoveSource")

	binding, exists := m.sources.Get(sourceEvent)
	if !exists {
		return
	}

	m.sources.Remove(sourceEvent)
	binding.(pluggable).unplug()
}

// SourceCount returns the amount of observed sources.
func (m *Mediator[T]) SourceCount() int {
	return m.sources.Size()
}
