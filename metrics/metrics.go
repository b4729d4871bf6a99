// Package metrics contains the prometheus collectors that live events report to.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotaledger/liveevent.go/ierrors"
)

const eventLabel = "event"

// Metrics bundles the collectors of all live events that share it. Every method is safe to call on a nil instance,
// which disables the reporting.
type Metrics struct {
	posts            *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	listenerFailures *prometheus.CounterVec
	listeners        *prometheus.GaugeVec
}

// New creates the collectors in the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		posts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "liveevent",
				Name:      "posts_total",
				Help:      "Total number of values posted to a live event",
			},
			[]string{eventLabel},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "liveevent",
				Name:      "deliveries_total",
				Help:      "Total number of values delivered to listeners",
			},
			[]string{eventLabel},
		),
		listenerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "liveevent",
				Name:      "listener_failures_total",
				Help:      "Total number of listener callbacks that panicked",
			},
			[]string{eventLabel},
		),
		listeners: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "liveevent",
				Name:      "listeners",
				Help:      "Number of registered listeners",
			},
			[]string{eventLabel},
		),
	}
}

// Collectors returns all collectors of the instance.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}

	return []prometheus.Collector{m.posts, m.deliveries, m.listenerFailures, m.listeners}
}

// Register registers all collectors with the given registerer.
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	for _, collector := range m.Collectors() {
		if err := registerer.Register(collector); err != nil {
			return ierrors.Wrap(err, "failed to register live event collector")
		}
	}

	return nil
}

// Posted counts a value posted to the event.
func (m *Metrics) Posted(event string) {
	if m != nil {
		m.posts.WithLabelValues(event).Inc()
	}
}

// Delivered counts a value handed to a listener of the event.
func (m *Metrics) Delivered(event string) {
	if m != nil {
		m.deliveries.WithLabelValues(event).Inc()
	}
}

// ListenerFailed counts a panic of a listener of the event.
func (m *Metrics) ListenerFailed(event string) {
	if m != nil {
		m.listenerFailures.WithLabelValues(event).Inc()
	}
}

// ListenerCountChanged sets the listener gauge of the event.
func (m *Metrics) ListenerCountChanged(event string, count int) {
	if m != nil {
		m.listeners.WithLabelValues(event).Set(float64(count))
	}
}
