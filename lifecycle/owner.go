package lifecycle

// Owner is anything that has a lifecycle that can be observed.
type Owner interface {
	// CurrentState returns the current lifecycle state.
	CurrentState() State

	// OnStateChanged registers a callback that is invoked with every new state the Owner moves to.
	OnStateChanged(callback func(newState State)) (unsubscribe func())
}
