// Package liveevent implements a lifecycle aware, single-shot event dispatcher.
//
// A LiveEvent holds the latest posted value together with a version counter. Every listener remembers the version it
// observed last, so it receives each value at most once and a burst of posts that it missed while its owner was
// inactive collapses into a single delivery of the latest value (Sticky mode) or into nothing at all (Normal mode).
//
// All mutating methods have to be called on the main thread of the Dispatcher that the LiveEvent was created with.
package liveevent

import (
	"go.uber.org/atomic"

	"github.com/iotaledger/liveevent.go/event"
	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/lifecycle"
	"github.com/iotaledger/liveevent.go/logger"
	"github.com/iotaledger/liveevent.go/mainthread"
	"github.com/iotaledger/liveevent.go/metrics"
	"github.com/iotaledger/liveevent.go/options"
	"github.com/iotaledger/liveevent.go/orderedmap"
	"github.com/iotaledger/liveevent.go/syncutils"
)

// Events contains the hooks of a LiveEvent. They are triggered on the main thread.
type Events struct {
	// ActiveStateChanged is triggered with true when the first listener becomes active and with false when the last
	// active listener becomes inactive.
	ActiveStateChanged *event.Event[bool]
	// ListenerFailed is triggered with the error of a listener that panicked.
	ListenerFailed *event.Event[error]
}

func newEvents() *Events {
	return &Events{
		ActiveStateChanged: event.New[bool](),
		ListenerFailed:     event.New[error](),
	}
}

// LiveEvent is a holder of the latest posted value that notifies its listeners.
type LiveEvent[T any] struct {
	// Events contains the hooks of the LiveEvent.
	Events *Events

	*logger.WrappedLogger

	dispatcher mainthread.Dispatcher
	name       string
	metrics    *metrics.Metrics

	value      T
	version    int
	valueMutex syncutils.RWMutex

	listeners         *orderedmap.OrderedMap[uint64, *listener[T]]
	listenerIDCounter uint64
	activeCount       *atomic.Int64

	dispatching         bool
	dispatchInvalidated bool

	pendingValue T
	pendingSet   bool
	pendingMutex syncutils.Mutex
}

// New creates a LiveEvent without a value whose listeners are notified on the main thread of the dispatcher.
func New[T any](dispatcher mainthread.Dispatcher, opts ...Option) *LiveEvent[T] {
	settings := options.Apply(&eventSettings{name: defaultName}, opts)

	return &LiveEvent[T]{
		Events:        newEvents(),
		WrappedLogger: logger.NewWrappedLogger(settings.logger),
		dispatcher:    dispatcher,
		name:          settings.name,
		metrics:       settings.metrics,
		version:       startVersion,
		listeners:     orderedmap.New[uint64, *listener[T]](),
		activeCount:   atomic.NewInt64(0),
	}
}

// NewWithValue creates a LiveEvent that treats the initial value as the first post.
func NewWithValue[T any](dispatcher mainthread.Dispatcher, value T, opts ...Option) *LiveEvent[T] {
	l := New[T](dispatcher, opts...)
	l.value = value
	l.version = startVersion + 1

	return l
}

// Name returns the name of the LiveEvent.
func (l *LiveEvent[T]) Name() string {
	return l.name
}

// Dispatcher returns the Dispatcher whose main thread delivers the values.
func (l *LiveEvent[T]) Dispatcher() mainthread.Dispatcher {
	return l.dispatcher
}

// Value returns the latest posted value and false if nothing was posted yet. It can be called from any goroutine.
func (l *LiveEvent[T]) Value() (value T, posted bool) {
	l.valueMutex.RLock()
	defer l.valueMutex.RUnlock()

	return l.value, l.version != startVersion
}

// Version returns the amount of values that were posted. It can be called from any goroutine.
func (l *LiveEvent[T]) Version() int {
	l.valueMutex.RLock()
	defer l.valueMutex.RUnlock()

	return l.version
}

// HasListeners returns true if at least one listener is registered.
func (l *LiveEvent[T]) HasListeners() bool {
	return l.listeners.Size() > 0
}

// HasActiveListeners returns true if at least one registered listener is active.
func (l *LiveEvent[T]) HasActiveListeners() bool {
	return l.activeCount.Load() > 0
}

// ListenerCount returns the amount of registered listeners.
func (l *LiveEvent[T]) ListenerCount() int {
	return l.listeners.Size()
}

// Post sets the value and notifies all active listeners that have not observed it yet. It has to be called on the
// main thread.
func (l *LiveEvent[T]) Post(value T) {
	mainthread.AssertMainThread(l.dispatcher, "Post")

	l.valueMutex.Lock()
	l.value = value
	l.version++
	l.valueMutex.Unlock()

	l.metrics.Posted(l.name)

	l.dispatch(nil)
}

// PostAsync hands the value over to the main thread and posts it there. It can be called from any goroutine.
//
// If PostAsync is called multiple times before the main thread executes the hand-off, only the last value is posted.
func (l *LiveEvent[T]) PostAsync(value T) {
	l.pendingMutex.Lock()
	scheduled := l.pendingSet
	l.pendingValue = value
	l.pendingSet = true
	l.pendingMutex.Unlock()

	if scheduled {
		return
	}

	l.dispatcher.PostToMainThread(l.postPending)
}

func (l *LiveEvent[T]) postPending() {
	var zero T

	l.pendingMutex.Lock()
	value := l.pendingValue
	l.pendingValue = zero
	l.pendingSet = false
	l.pendingMutex.Unlock()

	l.Post(value)
}

// Register adds a listener that is invoked with the posted values. Without options the listener is always active and
// only observes values that are posted after the registration.
//
// Registering the same callback twice creates two independent listeners. A registration with an owner that is
// already destroyed is ignored.
func (l *LiveEvent[T]) Register(callback func(value T), opts ...ListenOption) *Subscription {
	mainthread.AssertMainThread(l.dispatcher, "Register")

	settings := options.Apply(&listenerSettings{
		mode:           Normal,
		minActiveState: lifecycle.Started,
	}, opts)

	subscription := &Subscription{source: l}

	if settings.owner != nil && settings.owner.CurrentState() == lifecycle.Destroyed {
		l.LogDebugf("ignoring listener of %s with destroyed owner", l.name)

		return subscription
	}

	l.listenerIDCounter++
	entry := newListener(l.listenerIDCounter, callback, settings, l.version)

	subscription.id = entry.id
	subscription.remove = func() { l.Remove(subscription) }

	l.listeners.Set(entry.id, entry)
	l.metrics.ListenerCountChanged(l.name, l.listeners.Size())

	if entry.owner == nil {
		l.activeStateChanged(entry, true)

		return subscription
	}

	entry.unhookOwner = entry.owner.OnStateChanged(func(newState lifecycle.State) {
		mainthread.RunOnMainThread(l.dispatcher, func() {
			l.ownerStateChanged(entry, newState)
		})
	})
	l.activeStateChanged(entry, entry.shouldBeActive())

	return subscription
}

// Listen registers a Normal listener bound to the lifecycle of the owner.
func (l *LiveEvent[T]) Listen(owner lifecycle.Owner, callback func(value T)) *Subscription {
	return l.Register(callback, WithOwner(owner))
}

// ListenSticky registers a Sticky listener bound to the lifecycle of the owner.
func (l *LiveEvent[T]) ListenSticky(owner lifecycle.Owner, callback func(value T)) *Subscription {
	return l.Register(callback, WithOwner(owner), WithSticky())
}

// ListenForever registers a Normal listener that is always active.
func (l *LiveEvent[T]) ListenForever(callback func(value T)) *Subscription {
	return l.Register(callback)
}

// ListenForeverSticky registers a Sticky listener that is always active.
func (l *LiveEvent[T]) ListenForeverSticky(callback func(value T)) *Subscription {
	return l.Register(callback, WithSticky())
}

// Remove removes the listener of the subscription. Unknown or already removed subscriptions are ignored.
func (l *LiveEvent[T]) Remove(subscription *Subscription) {
	mainthread.AssertMainThread(l.dispatcher, "Remove")

	if subscription == nil || subscription.source != any(l) {
		return
	}

	if entry, exists := l.listeners.Get(subscription.id); exists {
		l.removeListener(entry)
	}
}

// RemoveOwner removes all listeners that are bound to the given owner.
func (l *LiveEvent[T]) RemoveOwner(owner lifecycle.Owner) {
	mainthread.AssertMainThread(l.dispatcher, "RemoveOwner")

	if owner == nil {
		return
	}

	var ownedListeners []*listener[T]
	l.listeners.ForEach(func(_ uint64, entry *listener[T]) bool {
		if entry.owner == owner {
			ownedListeners = append(ownedListeners, entry)
		}

		return true
	})

	for _, entry := range ownedListeners {
		l.removeListener(entry)
	}
}

func (l *LiveEvent[T]) ownerStateChanged(entry *listener[T], newState lifecycle.State) {
	if newState == lifecycle.Destroyed {
		l.removeListener(entry)

		return
	}

	l.activeStateChanged(entry, newState.IsAtLeast(entry.minActiveState))
}

func (l *LiveEvent[T]) removeListener(entry *listener[T]) {
	if entry.removed {
		return
	}

	l.setActive(entry, false)
	entry.removed = true

	l.listeners.Delete(entry.id)
	l.metrics.ListenerCountChanged(l.name, l.listeners.Size())

	if entry.unhookOwner != nil {
		entry.unhookOwner()
	}
}

// activeStateChanged updates the active flag of the listener. A Sticky listener that became active catches up with
// the latest value, a Normal one skips everything that was posted while it was inactive.
func (l *LiveEvent[T]) activeStateChanged(entry *listener[T], active bool) {
	if entry.removed || !l.setActive(entry, active) || !active {
		return
	}

	if entry.mode == Normal {
		entry.lastVersion = l.version

		return
	}

	l.dispatch(entry)
}

func (l *LiveEvent[T]) setActive(entry *listener[T], active bool) (changed bool) {
	if entry.active == active {
		return false
	}
	entry.active = active

	if active {
		if l.activeCount.Inc() == 1 {
			l.Events.ActiveStateChanged.Trigger(true)
		}
	} else if l.activeCount.Dec() == 0 {
		l.Events.ActiveStateChanged.Trigger(false)
	}

	return true
}

// dispatch notifies the given listener or all listeners (if nil). A dispatch that is triggered while another one is
// running invalidates the running one, which then starts over with all listeners.
func (l *LiveEvent[T]) dispatch(initiator *listener[T]) {
	if l.dispatching {
		l.dispatchInvalidated = true

		return
	}

	l.dispatching = true
	defer func() { l.dispatching = false }()

	for {
		l.dispatchInvalidated = false

		if initiator != nil {
			l.considerNotify(initiator)
			initiator = nil
		} else {
			l.listeners.ForEach(func(_ uint64, entry *listener[T]) bool {
				l.considerNotify(entry)

				return !l.dispatchInvalidated
			})
		}

		if !l.dispatchInvalidated {
			return
		}
	}
}

func (l *LiveEvent[T]) considerNotify(entry *listener[T]) {
	if !entry.active || entry.removed {
		return
	}

	// the owner may have changed its state without the notification having arrived yet
	if !entry.shouldBeActive() {
		l.activeStateChanged(entry, false)

		return
	}

	if l.version == startVersion || entry.lastVersion >= l.version {
		return
	}
	entry.lastVersion = l.version

	if entry.once {
		l.removeListener(entry)
	}

	l.notify(entry, l.value)
}

func (l *LiveEvent[T]) notify(entry *listener[T], value T) {
	defer func() {
		if err := ierrors.Recovered(recover()); err != nil {
			l.listenerFailed(entry, err)
		}
	}()

	l.metrics.Delivered(l.name)

	entry.callback(value)
}

func (l *LiveEvent[T]) listenerFailed(entry *listener[T], err error) {
	l.LogErrorf("listener %d of %s panicked: %s\n%s", entry.id, l.name, err, ierrors.StackTrace(err))
	l.metrics.ListenerFailed(l.name)

	l.Events.ListenerFailed.Trigger(ierrors.Errorf("%w: listener %d of %s: %w", ErrListenerFailed, entry.id, l.name, err))
}
