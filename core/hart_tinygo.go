//go:build tinygo && riscv

package core

import "device/riscv"

type riscvHart struct{}

// DefaultHart returns the hart the code is running on.
func DefaultHart() Hart {
	return riscvHart{}
}

// Cycles reads the 64-bit mcycle counter on RV32.
// Must read high first, then low, then high again to detect rollover.
func (riscvHart) Cycles() uint64 {
	for {
		high1 := riscv.MCYCLEH.Get()
		low := riscv.MCYCLE.Get()
		high2 := riscv.MCYCLEH.Get()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

func (riscvHart) Cause() uintptr { return riscv.MCAUSE.Get() }

func (riscvHart) SetTrapVector(v uintptr) { riscv.MTVEC.Set(v) }

func (riscvHart) DisableInterrupts() { riscv.MSTATUS.ClearBits(riscv.MSTATUS_MIE) }

func (riscvHart) EnableInterrupts() { riscv.MSTATUS.SetBits(riscv.MSTATUS_MIE) }
