package liveevent

// Map returns a Mediator that posts the result of fn for every value posted to source.
//
// fn is executed on the main thread and only while the returned Mediator has active listeners.
func Map[S, T any](sourceEvent *LiveEvent[S], fn func(S) T, opts ...Option) *Mediator[T] {
	result := NewMediator[T](sourceEvent.dispatcher, opts...)

	if err := AddSource(result, sourceEvent, func(value S) { result.Post(fn(value)) }); err != nil {
		// a fresh Mediator on the dispatcher of the source accepts every source
		panic(err)
	}

	return result
}

// SwitchMap returns a Mediator that forwards the values of the LiveEvent that fn returns for the latest value of
// source. Returning nil stops forwarding until fn returns a LiveEvent again.
func SwitchMap[S, T any](sourceEvent *LiveEvent[S], fn func(S) *LiveEvent[T], opts ...Option) *Mediator[T] {
	result := NewMediator[T](sourceEvent.dispatcher, opts...)

	var current *LiveEvent[T]
	if err := AddSource(result, sourceEvent, func(value S) {
		next := fn(value)
		if next == current {
			return
		}

		if current != nil {
			RemoveSource(result, current)
		}

		current = next
		if current == nil {
			return
		}

		if err := AddSource(result, current, result.Post); err != nil {
			result.LogErrorf("failed to switch %s: %s", result.Name(), err)
			current = nil
		}
	}); err != nil {
		panic(err)
	}

	return result
}
