package liveevent

import "github.com/iotaledger/liveevent.go/ierrors"

var (
	// ErrSourceAlreadyAdded is returned when a source is added to a Mediator twice.
	ErrSourceAlreadyAdded = ierrors.New("source was already added")
	// ErrForeignDispatcher is returned when a source is delivered on another goroutine than the Mediator.
	ErrForeignDispatcher = ierrors.New("source uses a different dispatcher")
	// ErrListenerFailed wraps the errors published on Events.ListenerFailed.
	ErrListenerFailed = ierrors.New("listener failed")
)
