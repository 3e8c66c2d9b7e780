//go:build !tinygo

package core

import "blhal/mmio"

// SimPeripherals returns a fresh set of capabilities over a simulated
// register file. It does not consume Take, so host tools can replay several
// configurations in one process.
func SimPeripherals(sim *mmio.Sim, hart *SimHart) *Peripherals {
	return newPeripherals(sim, hart)
}
