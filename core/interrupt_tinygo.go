//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved global interrupt state.
type State = interrupt.State

// disableInterrupts masks interrupts on the hart and returns the previous state
func disableInterrupts() State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state State) {
	interrupt.Restore(state)
}
