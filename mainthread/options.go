package mainthread

import (
	"github.com/iotaledger/liveevent.go/logger"
	"github.com/iotaledger/liveevent.go/options"
)

const defaultQueueSize = 1024

type loopSettings struct {
	queueSize            int
	flushTasksAtShutdown bool
	logger               *logger.Logger
}

func defaultLoopSettings() *loopSettings {
	return &loopSettings{
		queueSize: defaultQueueSize,
	}
}

// WithQueueSize sets the amount of tasks that can be pending before Submit blocks.
func WithQueueSize(queueSize int) options.Option[loopSettings] {
	return func(s *loopSettings) {
		if queueSize >= 0 {
			s.queueSize = queueSize
		}
	}
}

// WithFlushTasksAtShutdown makes the loop execute all pending tasks after it was stopped.
func WithFlushTasksAtShutdown(flush bool) options.Option[loopSettings] {
	return func(s *loopSettings) {
		s.flushTasksAtShutdown = flush
	}
}

// WithLogger sets the logger that reports panicking tasks.
func WithLogger(log *logger.Logger) options.Option[loopSettings] {
	return func(s *loopSettings) {
		s.logger = log
	}
}
