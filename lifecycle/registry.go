package lifecycle

import (
	"github.com/iotaledger/liveevent.go/event"
	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/syncutils"
)

var (
	// ErrDestroyed is returned when a destroyed Registry is asked to move to another state.
	ErrDestroyed = ierrors.New("lifecycle was already destroyed")
	// ErrInvalidTransition is returned when a Registry is asked to move back to Initialized.
	ErrInvalidTransition = ierrors.New("invalid lifecycle transition")
)

// Registry is an Owner whose state is driven manually.
//
// Moving to a state walks through every state in between and notifies the observers about each of them, so that an
// observer never misses a transition across its activation threshold. Only one goroutine walks the states at a time:
// a MoveTo that is issued while another transition is running (for example by an observer of that transition) only
// replaces the target, and the running transition continues towards it.
type Registry struct {
	state        State
	targetState  State
	moving       bool
	stateChanged *event.Event[State]

	mutex syncutils.RWMutex
}

// NewRegistry creates a Registry in the given state (Initialized if omitted).
func NewRegistry(initialState ...State) *Registry {
	r := &Registry{
		state:        Initialized,
		stateChanged: event.New[State](),
	}

	if len(initialState) > 0 {
		r.state = initialState[0]
	}
	r.targetState = r.state

	return r
}

// CurrentState returns the current lifecycle state.
func (r *Registry) CurrentState() State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.state
}

// OnStateChanged registers a callback that is invoked with every new state the Registry moves to.
func (r *Registry) OnStateChanged(callback func(newState State)) (unsubscribe func()) {
	return r.stateChanged.Hook(callback)
}

// MoveTo moves the Registry to the given state.
//
// If another transition is running, MoveTo only updates its target and returns without waiting for the state to be
// reached.
func (r *Registry) MoveTo(targetState State) error {
	r.mutex.Lock()
	if err := validateTarget(r.targetState, targetState); err != nil {
		r.mutex.Unlock()

		return ierrors.Wrapf(err, "failed to move from %s to %s", r.targetState, targetState)
	}

	r.targetState = targetState
	if r.moving {
		r.mutex.Unlock()

		return nil
	}
	r.moving = true
	r.mutex.Unlock()

	for nextState, done := r.nextState(); !done; nextState, done = r.nextState() {
		r.stateChanged.Trigger(nextState)
	}

	return nil
}

// Destroy moves the Registry to the Destroyed state.
func (r *Registry) Destroy() error {
	return r.MoveTo(Destroyed)
}

// nextState applies the next step towards the target state and returns it. It returns done once the target is
// reached, which also ends the running transition.
func (r *Registry) nextState() (nextState State, done bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state == r.targetState {
		r.moving = false

		return r.state, true
	}

	r.state = step(r.state, r.targetState)

	return r.state, false
}

// validateTarget checks whether a Registry that is (or will be) in plannedState may move to targetState.
func validateTarget(plannedState, targetState State) error {
	switch {
	case plannedState == targetState:
		return nil
	case plannedState == Destroyed:
		return ErrDestroyed
	case targetState == Initialized:
		return ErrInvalidTransition
	default:
		return nil
	}
}

// step returns the state that follows currentState on the way to targetState.
func step(currentState, targetState State) State {
	switch {
	case targetState > currentState:
		return currentState + 1
	case currentState == Created:
		// leaving Created downwards means destruction
		return Destroyed
	default:
		return currentState - 1
	}
}
