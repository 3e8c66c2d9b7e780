package core

import (
	"testing"
	"time"

	"blhal/mmio"
)

var watchdogProtected = map[uintptr]string{
	TIMER_WMER: "wmer",
	TIMER_WMR:  "wmr",
	TIMER_WCR:  "wcr",
	TIMER_WICR: "wicr",
	TIMER_WSR:  "wsr",
}

// checkKeys verifies every protected write is preceded by both access keys.
func checkKeys(t *testing.T, sim *mmio.Sim) {
	t.Helper()
	writes := sim.Writes()
	for i, w := range writes {
		name, ok := watchdogProtected[w.Addr]
		if !ok {
			continue
		}
		if i < 2 ||
			writes[i-2].Addr != TIMER_WFAR || writes[i-2].Value != TIMER_WFAR_KEY ||
			writes[i-1].Addr != TIMER_WSAR || writes[i-1].Value != TIMER_WSAR_KEY {
			t.Errorf("write %d to %s not preceded by the access keys", i, name)
		}
	}
}

func TestWatchdogAccessKeys(t *testing.T) {
	sim := mmio.NewSim()
	w := newWatchdog(sim)

	w.Configure(testClocks(32_000_000, 32_000_000), TimerClock1K, 1_000)
	w.SetMode(WatchdogReset)
	w.SetTimeout(2 * time.Second)
	w.Enable()
	w.Feed()
	w.ClearInterrupt()
	w.ClearReset()
	w.SetMode(WatchdogInterrupt)
	w.Disable()

	checkKeys(t, sim)
	if n := len(sim.WritesTo(TIMER_WFAR)); n != 9 {
		t.Errorf("%d unlocks, want 9", n)
	}
}

func TestWatchdogConfigure(t *testing.T) {
	sim := mmio.NewSim()
	w := newWatchdog(sim)
	sim.Poke(TIMER_WMER, TIMER_WMER_WE)

	w.Configure(testClocks(32_000_000, 32_000_000), TimerClock32K, 1_000)

	if w.Enabled() {
		t.Error("watchdog running after Configure")
	}
	if got := mmio.At(sim, TIMER_TCCR).Field(TIMER_TCCR_CS_Msk, TIMER_TCCR_CS_WDT_Pos); got != uint32(TimerClock32K) {
		t.Errorf("clock select = %d, want 32K", got)
	}
	if got := mmio.At(sim, TIMER_TCDR).Field(TIMER_TCDR_Msk, TIMER_TCDR_WCDR_Pos); got != 31 {
		t.Errorf("divider = %d, want 31", got)
	}

	w.SetTimeout(2 * time.Second)
	if w.Match() != 2000 {
		t.Errorf("Match = %d, want 2000", w.Match())
	}
	w.SetTimeout(time.Hour)
	if w.Match() != 0xFFFF {
		t.Errorf("Match = %#x, want clamp to 0xffff", w.Match())
	}

	w.SetMode(WatchdogReset)
	if sim.Peek(TIMER_WMER)&TIMER_WMER_WRIE == 0 {
		t.Error("reset mode not selected")
	}
	w.Enable()
	if !w.Enabled() {
		t.Error("watchdog not running after Enable")
	}

	sim.Poke(TIMER_WVR, 0x1_0042)
	if w.Counter() != 0x42 {
		t.Errorf("Counter = %#x, want 0x42", w.Counter())
	}

	sim.Poke(TIMER_WSR, TIMER_WSR_WTS)
	if !w.ResetOccurred() {
		t.Error("ResetOccurred = false")
	}
	w.ClearReset()
	if w.ResetOccurred() {
		t.Error("ResetOccurred = true after ClearReset")
	}

	expectPanic(t, ErrUnreachableTimerClock, func() {
		w.Configure(testClocks(32_000_000, 32_000_000), TimerClock1K, 3)
	})
}

func TestWatchdogInterruptDispatch(t *testing.T) {
	sim := mmio.NewSim()
	hart := NewSimHart()
	c := newCLIC(sim, hart)
	c.Install(testTrapEntry)
	w := newWatchdog(sim)

	var fed int
	c.SetHandler(InterruptWatchdog, func(*TrapFrame) {
		w.ClearInterrupt()
		fed++
	})
	c.SetHandler(InterruptTimerCh1, func(*TrapFrame) { t.Error("timer channel 1 handler called") })

	hart.CauseValue = interruptCause(InterruptWatchdog.IRQ())
	c.Dispatch(&TrapFrame{})

	if fed != 1 {
		t.Errorf("watchdog handler ran %d times, want 1", fed)
	}
	if got := sim.Peek(TIMER_WICR); got != TIMER_WICR_WICLR {
		t.Errorf("wicr = %#x", got)
	}
}
