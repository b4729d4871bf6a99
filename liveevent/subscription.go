package liveevent

// Subscription is the handle of a registered listener.
type Subscription struct {
	id     uint64
	source any
	remove func()
}

// ID returns the identifier of the listener (0 if the registration was ignored).
func (s *Subscription) ID() uint64 {
	if s == nil {
		return 0
	}

	return s.id
}

// Unsubscribe removes the listener. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.remove != nil {
		s.remove()
	}
}
