package core

import (
	"errors"
	"testing"

	"blhal/mmio"
)

// expectPanic runs fn and checks that it panics with want.
func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %v, got none", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

// newSimFixture returns a fresh register file, hart and clock token.
// The crystal reports ready unless the caller removes the hook.
func newSimFixture() (*mmio.Sim, *SimHart, *ClkCfg) {
	sim := mmio.NewSim()
	hart := NewSimHart()
	sim.OnLoad(AON_TSEN, func(v uint32) uint32 { return v | AON_TSEN_XTAL_RDY })
	return sim, hart, &ClkCfg{bus: sim, hart: hart}
}

// testClocks builds a clock description without running the hardware
// sequence.
func testClocks(sysclk, bus uint32) Clocks {
	return Clocks{sysclk: sysclk, busClk: bus, uartClk: sysclk, spiClk: bus}
}

// firstWriteTo returns the log index of the first store to addr, or -1.
func firstWriteTo(sim *mmio.Sim, addr uintptr) int {
	for i, a := range sim.Writes() {
		if a.Addr == addr {
			return i
		}
	}
	return -1
}
