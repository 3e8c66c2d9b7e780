package core

// Hart is the CSR surface of the single RISC-V hardware thread.
type Hart interface {
	CycleCounter

	// Cause returns mcause.
	Cause() uintptr

	// SetTrapVector writes mtvec.
	SetTrapVector(v uintptr)

	// DisableInterrupts clears mstatus.MIE.
	DisableInterrupts()

	// EnableInterrupts sets mstatus.MIE.
	EnableInterrupts()
}

// mcause layout on RV32
const (
	mcauseInterrupt = uintptr(1) << 31
	mcauseCodeMask  = mcauseInterrupt - 1
)
