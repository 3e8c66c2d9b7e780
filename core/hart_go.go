//go:build !(tinygo && riscv)

package core

var hostHart = NewSimHart()

// DefaultHart returns a process-wide simulated hart on regular Go.
func DefaultHart() Hart {
	return hostHart
}
