//go:build deadlock

// Package syncutils provides the mutex types used by the module. Building with the "deadlock" tag swaps them for
// deadlock detecting implementations.
package syncutils

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Mutex is a mutual exclusion lock that reports potential deadlocks.
type Mutex = deadlock.Mutex

// RWMutex is a reader/writer mutual exclusion lock that reports potential deadlocks.
type RWMutex = deadlock.RWMutex

func init() {
	SetDeadlockTimeout(20 * time.Second)
}

// SetDeadlockTimeout sets the duration after which a waiting lock is reported as a potential deadlock.
func SetDeadlockTimeout(timeout time.Duration) {
	deadlock.Opts.DeadlockTimeout = timeout
}
