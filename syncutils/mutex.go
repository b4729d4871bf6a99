//go:build !deadlock

// Package syncutils provides the mutex types used by the module. Building with the "deadlock" tag swaps them for
// deadlock detecting implementations.
package syncutils

import (
	"sync"
	"time"
)

// Mutex is a mutual exclusion lock.
type Mutex = sync.Mutex

// RWMutex is a reader/writer mutual exclusion lock.
type RWMutex = sync.RWMutex

// SetDeadlockTimeout has no effect unless the module is built with the "deadlock" tag.
func SetDeadlockTimeout(time.Duration) {}
