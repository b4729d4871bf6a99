package main

import (
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/lifecycle"
	"github.com/iotaledger/liveevent.go/liveevent"
	"github.com/iotaledger/liveevent.go/logger"
	"github.com/iotaledger/liveevent.go/mainthread"
	"github.com/iotaledger/liveevent.go/metrics"
)

const metricsNamespace = "liveevent_demo"

type dependencies struct {
	dig.In

	Parameters *Parameters
	Logger     *logger.Logger
	Registry   *prometheus.Registry
	Loop       *mainthread.EventLoop
	Owner      *lifecycle.Registry
	Counter    *liveevent.LiveEvent[int]
	Producers  *ants.Pool
}

func newContainer(params *Parameters) (*dig.Container, error) {
	container := dig.New(dig.DeferAcyclicVerification())

	providers := []interface{}{
		func() *Parameters {
			return params
		},
		func(p *Parameters) (*logger.Logger, error) {
			return logger.NewRootLogger(p.Logger)
		},
		func() *metrics.Metrics {
			return metrics.New(metricsNamespace)
		},
		func(m *metrics.Metrics) (*prometheus.Registry, error) {
			registry := prometheus.NewRegistry()

			return registry, m.Register(registry)
		},
		func(p *Parameters, log *logger.Logger) *mainthread.EventLoop {
			return mainthread.NewEventLoop(
				mainthread.WithQueueSize(p.Loop.QueueSize),
				mainthread.WithFlushTasksAtShutdown(p.Loop.FlushTasksAtShutdown),
				mainthread.WithLogger(log.Named("Loop")),
			)
		},
		func() *lifecycle.Registry {
			return lifecycle.NewRegistry()
		},
		func(loop *mainthread.EventLoop, log *logger.Logger, m *metrics.Metrics) *liveevent.LiveEvent[int] {
			return liveevent.New[int](loop,
				liveevent.WithName("counter"),
				liveevent.WithLogger(log.Named("Counter")),
				liveevent.WithMetrics(m),
			)
		},
		func(p *Parameters) (*ants.Pool, error) {
			size := p.Demo.Producers
			if size < 1 {
				size = 1
			}

			return ants.NewPool(size)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, ierrors.Wrap(err, "unable to provide component")
		}
	}

	return container, nil
}
