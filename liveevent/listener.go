package liveevent

import (
	"github.com/iotaledger/liveevent.go/lifecycle"
)

// startVersion is the version of a LiveEvent that was never posted to.
const startVersion = 0

// neverObserved is the last observed version of a sticky listener.
const neverObserved = -1

// Mode determines what a listener observes of the values that were posted before it was registered.
type Mode uint8

const (
	// Normal listeners only observe values that are posted after their registration.
	Normal Mode = iota
	// Sticky listeners additionally observe the latest value that was posted before they became active.
	Sticky
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "Normal"
	case Sticky:
		return "Sticky"
	default:
		return "Unknown"
	}
}

// listener is a registered callback together with its delivery state.
type listener[T any] struct {
	id       uint64
	callback func(T)
	mode     Mode

	// lastVersion is the version of the last value that was delivered (or skipped) for this listener.
	lastVersion int

	// owner is nil for listeners that are always active.
	owner          lifecycle.Owner
	minActiveState lifecycle.State
	unhookOwner    func()

	once    bool
	active  bool
	removed bool
}

func newListener[T any](id uint64, callback func(T), settings *listenerSettings, currentVersion int) *listener[T] {
	l := &listener[T]{
		id:             id,
		callback:       callback,
		mode:           settings.mode,
		lastVersion:    currentVersion,
		owner:          settings.owner,
		minActiveState: settings.minActiveState,
		once:           settings.once,
	}

	if l.mode == Sticky {
		l.lastVersion = neverObserved
	}

	return l
}

// shouldBeActive returns true if the owner of the listener allows deliveries.
func (l *listener[T]) shouldBeActive() bool {
	return l.owner == nil || l.owner.CurrentState().IsAtLeast(l.minActiveState)
}
