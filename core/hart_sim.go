package core

import "sync/atomic"

// SimHart is a software hart used on regular Go (for testing and host
// tooling). Every Cycles call advances the counter by Step so busy-waits
// make progress.
type SimHart struct {
	cycles atomic.Uint64
	Step   uint64

	CauseValue uintptr
	TrapVector uintptr
	MIE        bool
	MIEChanges int
}

func NewSimHart() *SimHart {
	return &SimHart{Step: 1}
}

func (h *SimHart) Cycles() uint64 {
	return h.cycles.Add(h.Step) - h.Step
}

// SetCycles moves the counter to c.
func (h *SimHart) SetCycles(c uint64) { h.cycles.Store(c) }

func (h *SimHart) Cause() uintptr { return h.CauseValue }

func (h *SimHart) SetTrapVector(v uintptr) { h.TrapVector = v }

func (h *SimHart) DisableInterrupts() {
	h.MIE = false
	h.MIEChanges++
}

func (h *SimHart) EnableInterrupts() {
	h.MIE = true
	h.MIEChanges++
}
