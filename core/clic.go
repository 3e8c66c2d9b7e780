package core

import "blhal/mmio"

// Interrupt identifies a peripheral interrupt routed through the CLIC.
type Interrupt uint8

const (
	InterruptUnknown Interrupt = iota
	InterruptGPIO
	InterruptTimerCh0
	InterruptTimerCh1
	InterruptWatchdog

	numInterrupts
)

// irqBase is the first external IRQ number; codes below it are the
// RISC-V local interrupts (software, timer, external).
const irqBase = 16

// mtvecCLIC selects CLIC vectoring mode in the low bits of mtvec.
const mtvecCLIC = 2

var irqNumbers = [numInterrupts]uint32{
	InterruptGPIO:     irqBase + 44,
	InterruptTimerCh0: irqBase + 36,
	InterruptTimerCh1: irqBase + 37,
	InterruptWatchdog: irqBase + 38,
}

// IRQ returns the CLIC interrupt number. It panics for InterruptUnknown.
func (i Interrupt) IRQ() uint32 {
	if i == InterruptUnknown || i >= numInterrupts {
		panic(ErrUnknownInterrupt)
	}
	return irqNumbers[i]
}

// InterruptFromIRQ maps a CLIC interrupt number back to its identity.
// Numbers outside the table map to InterruptUnknown.
func InterruptFromIRQ(irq uint32) Interrupt {
	for i := InterruptGPIO; i < numInterrupts; i++ {
		if irqNumbers[i] == irq {
			return i
		}
	}
	return InterruptUnknown
}

func (i Interrupt) String() string {
	switch i {
	case InterruptGPIO:
		return "GPIO"
	case InterruptTimerCh0:
		return "TimerCh0"
	case InterruptTimerCh1:
		return "TimerCh1"
	case InterruptWatchdog:
		return "Watchdog"
	}
	return "Unknown"
}

// TrapFrame holds the registers saved by the trap entry stub. The field
// order matches the stub's store sequence and must not change.
type TrapFrame struct {
	RA                             uintptr
	T0, T1, T2, T3, T4, T5, T6     uintptr
	A0, A1, A2, A3, A4, A5, A6, A7 uintptr
	S0, S1, S2, S3, S4, S5         uintptr
	S6, S7, S8, S9, S10, S11       uintptr
	GP, TP, SP                     uintptr
}

// Handler services one trap. The frame may be modified; the stub restores
// registers from it on return.
type Handler func(tf *TrapFrame)

type clicState uint8

const (
	clicUninstalled clicState = iota
	clicVectorInstalled
	clicActive
)

// activeCLIC is the controller the exported trap entry dispatches to.
var activeCLIC *CLIC

// CLIC is the core-local interrupt controller of hart 0 together with the
// trap dispatcher. It is obtained once from Take.
type CLIC struct {
	bus       mmio.Bus
	hart      Hart
	state     clicState
	handlers  [numInterrupts]Handler
	exception Handler
}

func newCLIC(bus mmio.Bus, hart Hart) *CLIC {
	return &CLIC{bus: bus, hart: hart, exception: defaultExceptionHandler}
}

func defaultExceptionHandler(tf *TrapFrame) {
	panic("unhandled trap")
}

// SetHandler registers h for interrupt i, replacing any previous handler.
// A nil h removes it; the trap then goes to the exception handler.
func (c *CLIC) SetHandler(i Interrupt, h Handler) {
	i.IRQ() // rejects InterruptUnknown
	c.handlers[i] = h
}

// SetExceptionHandler sets the handler for exceptions, local interrupts and
// interrupts without a registered handler. A nil h restores the default,
// which panics.
func (c *CLIC) SetExceptionHandler(h Handler) {
	if h == nil {
		h = defaultExceptionHandler
	}
	c.exception = h
}

// Install points mtvec at entry in CLIC mode, masks and clears every
// interrupt, and then enables interrupts on the hart. It must run once at
// boot before any Enable.
func (c *CLIC) Install(entry uintptr) {
	if c.state != clicUninstalled {
		panic(ErrInstalled)
	}

	c.hart.DisableInterrupts()
	c.hart.SetTrapVector(entry | mtvecCLIC)

	for i := uintptr(0); i < CLIC_BITMAP_WORDS; i++ {
		c.bus.Store32(CLIC_INTIE+i*4, 0)
	}
	for i := uintptr(0); i < CLIC_BITMAP_WORDS; i++ {
		c.bus.Store32(CLIC_INTIP+i*4, 0)
	}
	c.state = clicVectorInstalled

	activeCLIC = c
	c.hart.EnableInterrupts()
	c.state = clicActive
}

// Installed reports whether Install has run.
func (c *CLIC) Installed() bool { return c.state == clicActive }

func (c *CLIC) irq(i Interrupt) uintptr {
	irq := i.IRQ()
	if c.state != clicActive {
		panic(ErrNotInstalled)
	}
	return uintptr(irq)
}

// Enable unmasks interrupt i.
func (c *CLIC) Enable(i Interrupt) {
	c.bus.Store8(CLIC_INTIE+c.irq(i), 1)
}

// Disable masks interrupt i.
func (c *CLIC) Disable(i Interrupt) {
	c.bus.Store8(CLIC_INTIE+c.irq(i), 0)
}

// Clear drops a pending interrupt i.
func (c *CLIC) Clear(i Interrupt) {
	c.bus.Store8(CLIC_INTIP+c.irq(i), 0)
}

// Enabled reports whether interrupt i is unmasked.
func (c *CLIC) Enabled(i Interrupt) bool {
	return c.loadByte(CLIC_INTIE+c.irq(i)) != 0
}

// Pending reports whether interrupt i is pending.
func (c *CLIC) Pending(i Interrupt) bool {
	return c.loadByte(CLIC_INTIP+c.irq(i)) != 0
}

func (c *CLIC) loadByte(addr uintptr) uint8 {
	word := c.bus.Load32(addr &^ 3)
	return uint8(word >> ((addr & 3) * 8))
}

// Dispatch routes the trap described by mcause to its handler. Exceptions,
// local interrupts and interrupts that are unknown or have no handler go to
// the exception handler. A recognised interrupt runs its handler exactly
// once.
func (c *CLIC) Dispatch(tf *TrapFrame) {
	cause := c.hart.Cause()
	if cause&mcauseInterrupt == 0 {
		c.fallback(tf, cause)
		return
	}
	code := cause & mcauseCodeMask
	if code < irqBase {
		c.fallback(tf, cause)
		return
	}

	irq := uint32(code & 0xff)
	h := c.handlers[InterruptFromIRQ(irq)]
	if h == nil {
		c.fallback(tf, cause)
		return
	}
	RecordEvent(EvtTrap, uint32(c.hart.Cycles()), uint32(cause), irq)
	h(tf)
}

func (c *CLIC) fallback(tf *TrapFrame, cause uintptr) {
	RecordEvent(EvtTrapFallback, uint32(c.hart.Cycles()), uint32(cause), 0)
	c.exception(tf)
}
