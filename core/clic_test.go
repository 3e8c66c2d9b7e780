package core

import (
	"testing"

	"blhal/mmio"
)

const testTrapEntry = 0x2300_0100

func newTestCLIC() (*mmio.Sim, *SimHart, *CLIC) {
	sim := mmio.NewSim()
	hart := NewSimHart()
	return sim, hart, newCLIC(sim, hart)
}

func interruptCause(irq uint32) uintptr {
	return mcauseInterrupt | uintptr(irq)
}

func TestInterruptIRQBijection(t *testing.T) {
	seen := map[uint32]Interrupt{}
	for i := InterruptGPIO; i < numInterrupts; i++ {
		irq := i.IRQ()
		if irq < irqBase {
			t.Errorf("%s: IRQ %d is a local interrupt number", i, irq)
		}
		if prev, dup := seen[irq]; dup {
			t.Errorf("%s and %s share IRQ %d", prev, i, irq)
		}
		seen[irq] = i
		if back := InterruptFromIRQ(irq); back != i {
			t.Errorf("InterruptFromIRQ(%d) = %s, want %s", irq, back, i)
		}
	}

	if got := InterruptFromIRQ(0); got != InterruptUnknown {
		t.Errorf("InterruptFromIRQ(0) = %s, want Unknown", got)
	}
	if got := InterruptFromIRQ(255); got != InterruptUnknown {
		t.Errorf("InterruptFromIRQ(255) = %s, want Unknown", got)
	}
	if InterruptWatchdog.IRQ() != 54 || InterruptTimerCh1.IRQ() != 53 {
		t.Errorf("timer IRQs = %d/%d, want 53/54", InterruptTimerCh1.IRQ(), InterruptWatchdog.IRQ())
	}
}

func TestUnknownInterruptPanics(t *testing.T) {
	_, _, c := newTestCLIC()
	c.Install(testTrapEntry)

	expectPanic(t, ErrUnknownInterrupt, func() { InterruptUnknown.IRQ() })
	expectPanic(t, ErrUnknownInterrupt, func() { c.Enable(InterruptUnknown) })
	expectPanic(t, ErrUnknownInterrupt, func() { c.SetHandler(InterruptUnknown, func(*TrapFrame) {}) })
}

func TestEnableBeforeInstallPanics(t *testing.T) {
	sim, _, c := newTestCLIC()

	expectPanic(t, ErrNotInstalled, func() { c.Enable(InterruptGPIO) })
	expectPanic(t, ErrNotInstalled, func() { c.Clear(InterruptTimerCh0) })
	if n := len(sim.Writes()); n != 0 {
		t.Errorf("%d CLIC writes before Install", n)
	}
	// identity is checked before installation state
	expectPanic(t, ErrUnknownInterrupt, func() { c.Disable(InterruptUnknown) })
}

func TestInstall(t *testing.T) {
	sim, hart, c := newTestCLIC()
	hart.MIE = true
	sim.Poke(CLIC_INTIE+4, 0xFFFF_FFFF)
	sim.Poke(CLIC_INTIP+8, 0x0101_0101)

	c.Install(testTrapEntry)

	if hart.TrapVector != testTrapEntry|mtvecCLIC {
		t.Errorf("mtvec = %#x, want %#x", hart.TrapVector, testTrapEntry|mtvecCLIC)
	}
	if !hart.MIE {
		t.Error("interrupts not enabled after Install")
	}
	if hart.MIEChanges != 2 {
		t.Errorf("MIE changed %d times, want disable then enable", hart.MIEChanges)
	}
	for i := uintptr(0); i < CLIC_BITMAP_WORDS; i++ {
		if v := sim.Peek(CLIC_INTIE + i*4); v != 0 {
			t.Errorf("INTIE word %d = %#x after Install", i, v)
		}
		if v := sim.Peek(CLIC_INTIP + i*4); v != 0 {
			t.Errorf("INTIP word %d = %#x after Install", i, v)
		}
	}

	// enable bitmap cleared before pending bitmap
	writes := sim.Writes()
	if len(writes) != 2*CLIC_BITMAP_WORDS {
		t.Fatalf("%d writes, want %d", len(writes), 2*CLIC_BITMAP_WORDS)
	}
	if writes[0].Addr != CLIC_INTIE || writes[CLIC_BITMAP_WORDS].Addr != CLIC_INTIP {
		t.Errorf("bitmap clear order: first %#x, then %#x", writes[0].Addr, writes[CLIC_BITMAP_WORDS].Addr)
	}
	if !c.Installed() {
		t.Error("Installed() = false")
	}

	expectPanic(t, ErrInstalled, func() { c.Install(testTrapEntry) })
}

func TestEnableDisableClear(t *testing.T) {
	sim, _, c := newTestCLIC()
	c.Install(testTrapEntry)
	sim.ClearLog()

	c.Enable(InterruptTimerCh0)
	if got := sim.PeekByte(CLIC_INTIE + 52); got != 1 {
		t.Errorf("INTIE[52] = %d, want 1", got)
	}
	if !c.Enabled(InterruptTimerCh0) {
		t.Error("Enabled(TimerCh0) = false")
	}
	if c.Enabled(InterruptTimerCh1) {
		t.Error("neighbouring IRQ enabled")
	}

	c.Disable(InterruptTimerCh0)
	if c.Enabled(InterruptTimerCh0) {
		t.Error("Enabled(TimerCh0) = true after Disable")
	}

	sim.Poke(CLIC_INTIP+52, 1<<16) // IRQ 54 pending
	if !c.Pending(InterruptWatchdog) {
		t.Error("Pending(Watchdog) = false")
	}
	c.Clear(InterruptWatchdog)
	if c.Pending(InterruptWatchdog) {
		t.Error("Pending(Watchdog) = true after Clear")
	}

	for _, w := range sim.Writes() {
		if w.Width != 1 {
			t.Errorf("write to %#x is %d bytes wide, want single byte", w.Addr, w.Width)
		}
	}
}

func TestDispatchWatchdogOnce(t *testing.T) {
	_, hart, c := newTestCLIC()
	c.Install(testTrapEntry)

	calls := map[Interrupt]int{}
	for i := InterruptGPIO; i < numInterrupts; i++ {
		i := i
		c.SetHandler(i, func(*TrapFrame) { calls[i]++ })
	}
	c.SetExceptionHandler(func(*TrapFrame) { t.Error("exception handler called") })

	hart.CauseValue = interruptCause(InterruptWatchdog.IRQ())
	c.Dispatch(&TrapFrame{})

	if calls[InterruptWatchdog] != 1 {
		t.Errorf("watchdog handler ran %d times, want 1", calls[InterruptWatchdog])
	}
	for i, n := range calls {
		if i != InterruptWatchdog && n != 0 {
			t.Errorf("%s handler ran %d times", i, n)
		}
	}
}

func TestDispatchMasksIRQCode(t *testing.T) {
	_, hart, c := newTestCLIC()
	c.Install(testTrapEntry)

	var got int
	c.SetHandler(InterruptGPIO, func(*TrapFrame) { got++ })

	// upper bits of the exception code carry CLIC level information
	hart.CauseValue = mcauseInterrupt | 0x300 | uintptr(InterruptGPIO.IRQ())
	c.Dispatch(&TrapFrame{})
	if got != 1 {
		t.Errorf("GPIO handler ran %d times, want 1", got)
	}
}

func TestDispatchFallback(t *testing.T) {
	tests := []struct {
		name  string
		cause uintptr
	}{
		{"exception", 2},           // illegal instruction
		{"local interrupt", mcauseInterrupt | 7},
		{"unknown irq", interruptCause(irqBase + 1)},
		{"no handler", interruptCause(InterruptTimerCh1.IRQ())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, hart, c := newTestCLIC()
			c.Install(testTrapEntry)
			c.SetHandler(InterruptTimerCh0, func(*TrapFrame) { t.Error("timer handler called") })

			var frame *TrapFrame
			c.SetExceptionHandler(func(tf *TrapFrame) { frame = tf })

			tf := &TrapFrame{A0: 42}
			hart.CauseValue = tt.cause
			c.Dispatch(tf)
			if frame != tf {
				t.Error("exception handler did not receive the trap frame")
			}
		})
	}
}

func TestDefaultExceptionHandlerPanics(t *testing.T) {
	_, hart, c := newTestCLIC()
	c.Install(testTrapEntry)
	c.SetExceptionHandler(func(*TrapFrame) {})
	c.SetExceptionHandler(nil)

	hart.CauseValue = 5 // load access fault
	defer func() {
		if r := recover(); r != "unhandled trap" {
			t.Errorf("panic = %v, want unhandled trap", r)
		}
	}()
	c.Dispatch(&TrapFrame{})
}

func TestSetHandlerNilRemoves(t *testing.T) {
	_, hart, c := newTestCLIC()
	c.Install(testTrapEntry)

	var handled, fallback int
	c.SetHandler(InterruptTimerCh0, func(*TrapFrame) { handled++ })
	c.SetHandler(InterruptTimerCh0, nil)
	c.SetExceptionHandler(func(*TrapFrame) { fallback++ })

	hart.CauseValue = interruptCause(InterruptTimerCh0.IRQ())
	c.Dispatch(&TrapFrame{})
	if handled != 0 || fallback != 1 {
		t.Errorf("handled=%d fallback=%d, want 0/1", handled, fallback)
	}
}
