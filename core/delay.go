package core

// CycleCounter is a free-running 64-bit counter that increments once per
// core clock cycle.
type CycleCounter interface {
	Cycles() uint64
}

// McycleDelay busy-waits on the hart cycle counter. It blocks the whole
// hart and never yields, so it is usable before the scheduler runs and
// inside the clock sequencing critical window.
type McycleDelay struct {
	counter CycleCounter
	coreHz  uint32
}

// NewMcycleDelay returns a delay provider for a core running at coreHz.
func NewMcycleDelay(counter CycleCounter, coreHz uint32) McycleDelay {
	return McycleDelay{counter: counter, coreHz: coreHz}
}

// CoreHz returns the frequency the delay was calibrated for.
func (d McycleDelay) CoreHz() uint32 { return d.coreHz }

// Now returns the current cycle count.
func (d McycleDelay) Now() uint64 {
	return d.counter.Cycles()
}

// Elapsed returns the cycles since a previous Now reading. The subtraction
// wraps, so a counter rollover between the two readings is harmless.
func (d McycleDelay) Elapsed(since uint64) uint64 {
	return d.counter.Cycles() - since
}

// WaitCycles spins until at least n cycles have elapsed.
func (d McycleDelay) WaitCycles(n uint64) {
	start := d.Now()
	for d.Elapsed(start) < n {
	}
}

// WaitMicros spins for at least us microseconds.
func (d McycleDelay) WaitMicros(us uint32) {
	d.WaitCycles(cyclesFor(us, d.coreHz, 1_000_000))
}

// WaitMillis spins for at least ms milliseconds.
func (d McycleDelay) WaitMillis(ms uint32) {
	d.WaitCycles(cyclesFor(ms, d.coreHz, 1_000))
}

// cyclesFor converts a duration in 1/unit seconds to cycles without
// overflowing 32 bits.
func cyclesFor(d, hz, unit uint32) uint64 {
	return uint64(d) * uint64(hz) / uint64(unit)
}
