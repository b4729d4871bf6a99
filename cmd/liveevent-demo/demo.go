package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/lifecycle"
	"github.com/iotaledger/liveevent.go/liveevent"
)

// ErrProducersTimedOut is returned if the producers did not finish in time.
var ErrProducersTimedOut = ierrors.New("producers timed out")

// scenarioStep moves the owner to a state and posts a value afterwards.
type scenarioStep struct {
	state lifecycle.State
	value int
}

var scenario = []scenarioStep{
	{state: lifecycle.Created, value: 99},
	{state: lifecycle.Started, value: 109},
	{state: lifecycle.Resumed, value: 119},
	{state: lifecycle.Started, value: 129},
	{state: lifecycle.Created, value: 139},
}

// report contains what the listeners of the demo observed.
type report struct {
	Listen              []int
	ListenSticky        []int
	ListenForever       []int
	ListenForeverSticky []int

	Posted    int
	Delivered int
	Version   int
	Latest    int
}

func (r *report) String() string {
	return fmt.Sprintf("listen=%v listenSticky=%v listenForever=%v listenForeverSticky=%v posted=%d delivered=%d version=%d latest=%d",
		r.Listen, r.ListenSticky, r.ListenForever, r.ListenForeverSticky, r.Posted, r.Delivered, r.Version, r.Latest)
}

func runDemo(deps dependencies) (*report, error) {
	log := deps.Logger.Named("Demo")
	defer func() { _ = deps.Logger.Sync() }()

	deps.Loop.Start()
	defer deps.Loop.StopAndWait()
	defer deps.Producers.Release()

	if address := deps.Parameters.Demo.MetricsBindAddress; address != "" {
		server := &http.Server{
			Addr:              address,
			Handler:           promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && !ierrors.Is(err, http.ErrServerClosed) {
				log.Warnf("metrics endpoint stopped: %s", err)
			}
		}()
		defer func() { _ = server.Shutdown(context.Background()) }()

		log.Infof("serving metrics on %s", address)
	}

	result := &report{}
	if err := runScenario(deps, result); err != nil {
		return nil, err
	}

	log.Infof("lifecycle scenario finished: %s", result)

	if err := runProducers(deps, result); err != nil {
		return nil, err
	}

	log.Infof("producers finished: %s", result)

	return result, nil
}

// runScenario registers one listener of every kind and walks the owner through its states, posting a value after
// every transition.
func runScenario(deps dependencies, result *report) (err error) {
	log := deps.Logger.Named("Scenario")
	minActiveState := deps.Parameters.MinActiveState()

	record := func(name string, values *[]int) func(int) {
		return func(value int) {
			log.Debugf("%s received %d", name, value)
			*values = append(*values, value)
		}
	}

	if submitErr := deps.Loop.SubmitAndWait(func() {
		if err = deps.Owner.MoveTo(lifecycle.Created); err != nil {
			return
		}

		deps.Counter.Register(record("listen", &result.Listen), liveevent.WithOwner(deps.Owner), liveevent.WithMinActiveState(minActiveState))
		deps.Counter.Register(record("listenSticky", &result.ListenSticky), liveevent.WithOwner(deps.Owner), liveevent.WithMinActiveState(minActiveState), liveevent.WithSticky())
		forever := deps.Counter.ListenForever(record("listenForever", &result.ListenForever))
		foreverSticky := deps.Counter.ListenForeverSticky(record("listenForeverSticky", &result.ListenForeverSticky))

		for _, step := range scenario {
			if err = deps.Owner.MoveTo(step.state); err != nil {
				return
			}

			log.Infof("owner is %s, posting %d", step.state, step.value)
			deps.Counter.Post(step.value)
		}

		// the owner takes its listeners with it
		if err = deps.Owner.Destroy(); err != nil {
			return
		}
		forever.Unsubscribe()
		foreverSticky.Unsubscribe()

		deps.Counter.ListenForever(func(int) { result.Delivered++ })
	}); submitErr != nil {
		return submitErr
	}

	return err
}

// runProducers lets the producers post concurrently from the goroutines of the pool.
func runProducers(deps dependencies, result *report) error {
	var wg sync.WaitGroup

	params := deps.Parameters.Demo
	for producer := 0; producer < params.Producers; producer++ {
		base := (producer + 1) * 1000

		wg.Add(1)
		if err := deps.Producers.Submit(func() {
			defer wg.Done()

			for i := 0; i < params.PostsPerProducer; i++ {
				deps.Counter.PostAsync(base + i)
			}
		}); err != nil {
			wg.Done()

			return ierrors.Wrap(err, "unable to start producer")
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(params.ProducerTimeout):
		return ErrProducersTimedOut
	}

	// the hand-offs were submitted before this task, so all posts happened once it executes
	return deps.Loop.SubmitAndWait(func() {
		result.Posted = params.Producers * params.PostsPerProducer
		result.Version = deps.Counter.Version()
		result.Latest, _ = deps.Counter.Value()
	})
}
