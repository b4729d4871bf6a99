package lifecycle

import (
	"strings"

	"github.com/iotaledger/liveevent.go/ierrors"
)

// ErrUnknownState is returned when a State cannot be parsed.
var ErrUnknownState = ierrors.New("unknown lifecycle state")

// State is the ordered lifecycle state of an Owner.
type State int8

const (
	// Destroyed is the terminal state. An Owner never leaves it.
	Destroyed State = iota
	// Initialized is the state of an Owner that was constructed but not created yet.
	Initialized
	// Created is the state of an Owner that exists but is not visible.
	Created
	// Started is the state of an Owner that is visible.
	Started
	// Resumed is the state of an Owner that is visible and in the foreground.
	Resumed
)

// IsAtLeast returns true if the state is greater or equal to the given state.
func (s State) IsAtLeast(state State) bool {
	return s >= state
}

// String returns a human-readable version of the State.
func (s State) String() string {
	switch s {
	case Destroyed:
		return "DESTROYED"
	case Initialized:
		return "INITIALIZED"
	case Created:
		return "CREATED"
	case Started:
		return "STARTED"
	case Resumed:
		return "RESUMED"
	default:
		return "UNKNOWN"
	}
}

// ParseState parses the (case-insensitive) name of a State.
func ParseState(name string) (State, error) {
	for state := Destroyed; state <= Resumed; state++ {
		if strings.EqualFold(state.String(), name) {
			return state, nil
		}
	}

	return Destroyed, ierrors.Wrapf(ErrUnknownState, "failed to parse %q", name)
}
