package core

import (
	"time"

	"blhal/mmio"
)

// WatchdogMode selects what a watchdog match does.
type WatchdogMode uint8

const (
	WatchdogInterrupt WatchdogMode = iota // raise InterruptWatchdog
	WatchdogReset                         // reset the chip
)

// Watchdog is the 16-bit watchdog timer. Every write to its registers must
// be preceded by the two access keys.
type Watchdog struct {
	bus    mmio.Bus
	tickHz uint32
}

func newWatchdog(bus mmio.Bus) *Watchdog {
	return &Watchdog{bus: bus}
}

func (w *Watchdog) reg(addr uintptr) mmio.Reg {
	return mmio.At(w.bus, addr)
}

// unlock writes the access keys that arm the next register write.
func (w *Watchdog) unlock() {
	w.reg(TIMER_WFAR).Set(TIMER_WFAR_KEY)
	w.reg(TIMER_WSAR).Set(TIMER_WSAR_KEY)
}

// Configure selects the clock source and a tick rate of tickHz. The
// watchdog is left disabled.
func (w *Watchdog) Configure(clocks Clocks, src TimerClockSource, tickHz uint32) {
	div := timerDivider(src.Hz(clocks), tickHz)

	w.unlock()
	w.reg(TIMER_WMER).ClearBits(TIMER_WMER_WE)

	w.reg(TIMER_TCCR).ReplaceBits(uint32(src), TIMER_TCCR_CS_Msk, TIMER_TCCR_CS_WDT_Pos)
	w.reg(TIMER_TCDR).ReplaceBits(div-1, TIMER_TCDR_Msk, TIMER_TCDR_WCDR_Pos)
	w.tickHz = tickHz
}

// SetMode selects interrupt or reset on match.
func (w *Watchdog) SetMode(m WatchdogMode) {
	w.unlock()
	if m == WatchdogReset {
		w.reg(TIMER_WMER).SetBits(TIMER_WMER_WRIE)
	} else {
		w.reg(TIMER_WMER).ClearBits(TIMER_WMER_WRIE)
	}
}

// SetTimeout sets the match value to d, clamped to the 16-bit counter.
func (w *Watchdog) SetTimeout(d time.Duration) {
	ticks := uint64(w.tickHz) * uint64(d) / uint64(time.Second)
	if ticks > 0xFFFF {
		ticks = 0xFFFF
	}
	w.SetMatch(uint16(ticks))
}

// SetMatch sets the match value in ticks.
func (w *Watchdog) SetMatch(ticks uint16) {
	w.unlock()
	w.reg(TIMER_WMR).Set(uint32(ticks))
}

// Match returns the match value in ticks.
func (w *Watchdog) Match() uint16 {
	return uint16(w.reg(TIMER_WMR).Get())
}

// Enable starts the watchdog counter.
func (w *Watchdog) Enable() {
	w.unlock()
	w.reg(TIMER_WMER).SetBits(TIMER_WMER_WE)
}

// Disable stops the watchdog counter.
func (w *Watchdog) Disable() {
	w.unlock()
	w.reg(TIMER_WMER).ClearBits(TIMER_WMER_WE)
}

func (w *Watchdog) Enabled() bool {
	return w.reg(TIMER_WMER).HasBits(TIMER_WMER_WE)
}

// Feed resets the watchdog counter.
func (w *Watchdog) Feed() {
	w.unlock()
	w.reg(TIMER_WCR).Set(TIMER_WCR_WCR)
}

// Counter returns the current count.
func (w *Watchdog) Counter() uint16 {
	return uint16(w.reg(TIMER_WVR).Get())
}

// ClearInterrupt acknowledges a watchdog interrupt.
func (w *Watchdog) ClearInterrupt() {
	w.unlock()
	w.reg(TIMER_WICR).Set(TIMER_WICR_WICLR)
}

// ResetOccurred reports whether the last reset was caused by the watchdog.
func (w *Watchdog) ResetOccurred() bool {
	return w.reg(TIMER_WSR).HasBits(TIMER_WSR_WTS)
}

// ClearReset clears the watchdog reset flag.
func (w *Watchdog) ClearReset() {
	w.unlock()
	w.reg(TIMER_WSR).ClearBits(TIMER_WSR_WTS)
}
