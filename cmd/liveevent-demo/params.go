package main

import (
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/lifecycle"
	"github.com/iotaledger/liveevent.go/logger"
)

// ErrInvalidParameter is the cause of every parameter validation error.
var ErrInvalidParameter = ierrors.New("invalid parameter")

// ParametersLoop contains the configuration of the event loop that delivers the values.
type ParametersLoop struct {
	// QueueSize is the amount of tasks that can be pending before producers block.
	QueueSize int `default:"1024" usage:"the amount of tasks the event loop can queue before producers block"`
	// FlushTasksAtShutdown defines whether pending tasks are executed after the loop was stopped.
	FlushTasksAtShutdown bool `default:"true" usage:"whether pending tasks are executed after the loop was stopped"`
}

// ParametersDemo contains the configuration of the demo scenario.
type ParametersDemo struct {
	Producers          int           `default:"4" usage:"the amount of concurrent producers"`
	PostsPerProducer   int           `default:"25" usage:"the amount of values every producer posts"`
	ProducerTimeout    time.Duration `default:"10s" usage:"the time the producers have to finish"`
	MinActiveState     string        `default:"STARTED" usage:"the lifecycle state bound listeners need to reach to receive values"`
	MetricsBindAddress string        `default:"" usage:"the bind address of the prometheus endpoint (disabled if empty)"`
}

// Parameters contains all parameters of the demo.
type Parameters struct {
	Logger logger.Config
	Loop   ParametersLoop
	Demo   ParametersDemo
}

// MinActiveState returns the parsed minimum active state of bound listeners.
func (p *Parameters) MinActiveState() lifecycle.State {
	state, err := lifecycle.ParseState(p.Demo.MinActiveState)
	if err != nil {
		return lifecycle.Started
	}

	return state
}

// Validate returns all problems of the parameters at once.
func (p *Parameters) Validate() error {
	var result *multierror.Error

	if p.Loop.QueueSize < 1 {
		result = multierror.Append(result, ierrors.Wrapf(ErrInvalidParameter, "loop.queueSize must be positive (got %d)", p.Loop.QueueSize))
	}

	if p.Demo.Producers < 0 {
		result = multierror.Append(result, ierrors.Wrapf(ErrInvalidParameter, "demo.producers must not be negative (got %d)", p.Demo.Producers))
	}

	if p.Demo.PostsPerProducer < 0 {
		result = multierror.Append(result, ierrors.Wrapf(ErrInvalidParameter, "demo.postsPerProducer must not be negative (got %d)", p.Demo.PostsPerProducer))
	}

	if p.Demo.ProducerTimeout <= 0 {
		result = multierror.Append(result, ierrors.Wrapf(ErrInvalidParameter, "demo.producerTimeout must be positive (got %s)", p.Demo.ProducerTimeout))
	}

	state, err := lifecycle.ParseState(p.Demo.MinActiveState)
	switch {
	case err != nil:
		result = multierror.Append(result, ierrors.Wrapf(ErrInvalidParameter, "demo.minActiveState: %s", err))
	case !state.IsAtLeast(lifecycle.Created):
		result = multierror.Append(result, ierrors.Wrapf(ErrInvalidParameter, "demo.minActiveState must be at least %s (got %s)", lifecycle.Created, state))
	}

	return result.ErrorOrNil()
}
