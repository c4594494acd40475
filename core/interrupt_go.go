//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// Host builds stand in for interrupt masking with a mutex so tests can post
// from goroutines. Critical sections must not nest.
var criticalMu sync.Mutex

func disableInterrupts() State {
	criticalMu.Lock()
	return 0
}

func restoreInterrupts(state State) {
	criticalMu.Unlock()
}

// inInterrupt is always false on regular Go
func inInterrupt() bool {
	return false
}
