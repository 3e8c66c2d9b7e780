//go:build !tinygo

package mmio

var hostBus = NewSim()

// Default returns a process-wide simulated register file on regular Go
// (for testing and host tooling).
func Default() Bus {
	return hostBus
}
