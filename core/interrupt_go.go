//go:build !tinygo

package core

// State is the saved global interrupt state on regular Go.
type State uintptr

// criticalDepth counts open critical sections so host tests can check that
// register sequencing ran with interrupts masked.
var criticalDepth int

// disableInterrupts opens a critical section (for testing)
func disableInterrupts() State {
	criticalDepth++
	return State(criticalDepth - 1)
}

// restoreInterrupts closes the critical section opened by the matching disableInterrupts
func restoreInterrupts(state State) {
	criticalDepth = int(state)
}

func inCriticalSection() bool {
	return criticalDepth > 0
}
