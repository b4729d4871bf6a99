package liveevent

import (
	"github.com/iotaledger/liveevent.go/lifecycle"
	"github.com/iotaledger/liveevent.go/logger"
	"github.com/iotaledger/liveevent.go/metrics"
	"github.com/iotaledger/liveevent.go/options"
)

const defaultName = "liveevent"

type eventSettings struct {
	name    string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a LiveEvent.
type Option = options.Option[eventSettings]

// WithName sets the name that the LiveEvent uses in logs and metrics.
func WithName(name string) Option {
	return func(s *eventSettings) {
		s.name = name
	}
}

// WithLogger sets the logger that reports failing listeners.
func WithLogger(log *logger.Logger) Option {
	return func(s *eventSettings) {
		s.logger = log
	}
}

// WithMetrics sets the collectors that the LiveEvent reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *eventSettings) {
		s.metrics = m
	}
}

type listenerSettings struct {
	mode           Mode
	owner          lifecycle.Owner
	minActiveState lifecycle.State
	once           bool
}

// ListenOption configures a single registration.
type ListenOption = options.Option[listenerSettings]

// WithMode sets the Mode of the listener (default Normal).
func WithMode(mode Mode) ListenOption {
	return func(s *listenerSettings) {
		s.mode = mode
	}
}

// WithSticky is a shortcut for WithMode(Sticky).
func WithSticky() ListenOption {
	return WithMode(Sticky)
}

// WithOwner binds the listener to the lifecycle of the owner: it only receives values while the owner is at least in
// the minimum active state and it is removed once the owner is destroyed.
func WithOwner(owner lifecycle.Owner) ListenOption {
	return func(s *listenerSettings) {
		s.owner = owner
	}
}

// WithMinActiveState overrides the state an owner needs to reach for the listener to become active (default Started).
func WithMinActiveState(state lifecycle.State) ListenOption {
	return func(s *listenerSettings) {
		s.minActiveState = state
	}
}

// WithOnce removes the listener after its first delivery.
func WithOnce() ListenOption {
	return func(s *listenerSettings) {
		s.once = true
	}
}
