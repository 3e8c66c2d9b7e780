package core

import (
	"math"
	"time"

	"blhal/mmio"
)

// TimerClockSource selects the input clock of a timer channel or the
// watchdog.
type TimerClockSource uint8

const (
	TimerClockFCLK TimerClockSource = iota // core clock
	TimerClock32K                          // 32 kHz RC
	TimerClock1K                           // 1 kHz
	TimerClock32M                          // 32 MHz PLL tap
)

// Hz returns the source frequency for the given clock tree.
func (s TimerClockSource) Hz(clocks Clocks) uint32 {
	switch s {
	case TimerClockFCLK:
		return clocks.Sysclk()
	case TimerClock32K:
		return 32_000
	case TimerClock1K:
		return 1_000
	case TimerClock32M:
		return 32_000_000
	}
	panic(ErrUnreachableTimerClock)
}

// timerDivider returns the divider for tickHz. The division must be exact
// and fit the 8-bit divider register.
func timerDivider(srcHz, tickHz uint32) uint32 {
	div, ok := exactDiv(srcHz, tickHz, 1, 256)
	if !ok {
		panic(ErrUnreachableTimerClock)
	}
	return div
}

// Preload selects which match event reloads the counter.
type Preload uint8

const (
	NoPreload Preload = iota
	PreloadMatch0
	PreloadMatch1
	PreloadMatch2
)

// timerRegs is the register set of one timer channel.
type timerRegs struct {
	match    uintptr // first of three match registers
	counter  uintptr
	status   uintptr
	irqEn    uintptr
	preload  uintptr
	plcr     uintptr
	irqClear uintptr
	csPos    uint8
	divPos   uint8
	enable   uint32
	freeRun  uint32
}

var timerChannelRegs = [2]timerRegs{
	{TIMER_TMR2_0, TIMER_TCR2, TIMER_TMSR2, TIMER_TIER2, TIMER_TPLVR2, TIMER_TPLCR2, TIMER_TICR2,
		TIMER_TCCR_CS_1_Pos, TIMER_TCDR_TCDR2_Pos, TIMER_TCER_TIMER2_EN, TIMER_TCMR_TIMER2_MODE},
	{TIMER_TMR3_0, TIMER_TCR3, TIMER_TMSR3, TIMER_TIER3, TIMER_TPLVR3, TIMER_TPLCR3, TIMER_TICR3,
		TIMER_TCCR_CS_2_Pos, TIMER_TCDR_TCDR3_Pos, TIMER_TCER_TIMER3_EN, TIMER_TCMR_TIMER3_MODE},
}

// TimerChannel is one of the two 32-bit timer channels.
type TimerChannel struct {
	bus    mmio.Bus
	regs   timerRegs
	irq    Interrupt
	tickHz uint32
}

// Timers holds both timer channels.
type Timers struct {
	Ch0 *TimerChannel
	Ch1 *TimerChannel
}

func newTimers(bus mmio.Bus) Timers {
	return Timers{
		Ch0: &TimerChannel{bus: bus, regs: timerChannelRegs[0], irq: InterruptTimerCh0},
		Ch1: &TimerChannel{bus: bus, regs: timerChannelRegs[1], irq: InterruptTimerCh1},
	}
}

func (t *TimerChannel) reg(addr uintptr) mmio.Reg {
	return mmio.At(t.bus, addr)
}

// Interrupt returns the CLIC interrupt raised by the channel's matches.
func (t *TimerChannel) Interrupt() Interrupt { return t.irq }

// Configure selects the clock source and a tick rate of tickHz, and puts
// the channel in preload mode with a zero preload value. The channel is
// left disabled.
func (t *TimerChannel) Configure(clocks Clocks, src TimerClockSource, tickHz uint32) {
	div := timerDivider(src.Hz(clocks), tickHz)

	t.reg(TIMER_TCCR).ReplaceBits(uint32(src), TIMER_TCCR_CS_Msk, t.regs.csPos)
	t.reg(TIMER_TCDR).ReplaceBits(div-1, TIMER_TCDR_Msk, t.regs.divPos)
	t.reg(TIMER_TCMR).ClearBits(t.regs.freeRun)
	t.reg(t.regs.preload).Set(0)
	t.tickHz = tickHz
}

// TickHz returns the configured tick rate.
func (t *TimerChannel) TickHz() uint32 { return t.tickHz }

// Ticks converts d to timer ticks, rounding down. A negative duration or
// one that does not fit the 32-bit match registers panics with
// ErrInvalidMatch.
func (t *TimerChannel) Ticks(d time.Duration) uint32 {
	if d < 0 {
		panic(ErrInvalidMatch)
	}
	hz := uint64(t.tickHz)
	sec := uint64(d / time.Second)
	if hz == 0 {
		return 0
	}
	if sec > math.MaxUint32 {
		panic(ErrInvalidMatch)
	}
	ticks := sec*hz + uint64(d%time.Second)*hz/uint64(time.Second)
	if ticks > math.MaxUint32 {
		panic(ErrInvalidMatch)
	}
	return uint32(ticks)
}

func checkMatch(n int) {
	if n < 0 || n > 2 {
		panic(ErrInvalidMatch)
	}
}

// SetMatch sets match register n (0-2) to ticks.
func (t *TimerChannel) SetMatch(n int, ticks uint32) {
	checkMatch(n)
	t.reg(t.regs.match + uintptr(n)*4).Set(ticks)
}

// EnableMatchInterrupt lets match n raise the channel interrupt.
func (t *TimerChannel) EnableMatchInterrupt(n int) {
	checkMatch(n)
	t.reg(t.regs.irqEn).SetBits(1 << n)
}

func (t *TimerChannel) DisableMatchInterrupt(n int) {
	checkMatch(n)
	t.reg(t.regs.irqEn).ClearBits(1 << n)
}

// ClearMatchInterrupt acknowledges match n.
func (t *TimerChannel) ClearMatchInterrupt(n int) {
	checkMatch(n)
	t.reg(t.regs.irqClear).Set(1 << n)
}

// IsMatch reports whether match n has fired.
func (t *TimerChannel) IsMatch(n int) bool {
	checkMatch(n)
	return t.reg(t.regs.status).HasBits(1 << n)
}

// SetPreload selects the match that reloads the counter.
func (t *TimerChannel) SetPreload(p Preload) {
	t.reg(t.regs.plcr).ReplaceBits(uint32(p), TIMER_TPLCR_Msk, 0)
}

// SetPreloadValue sets the value loaded into the counter on preload.
func (t *TimerChannel) SetPreloadValue(ticks uint32) {
	t.reg(t.regs.preload).Set(ticks)
}

// SetFreeRunning switches between free running and preload mode.
func (t *TimerChannel) SetFreeRunning(free bool) {
	if free {
		t.reg(TIMER_TCMR).SetBits(t.regs.freeRun)
	} else {
		t.reg(TIMER_TCMR).ClearBits(t.regs.freeRun)
	}
}

// Enable starts the counter.
func (t *TimerChannel) Enable() {
	t.reg(TIMER_TCER).SetBits(t.regs.enable)
}

// Disable stops the counter.
func (t *TimerChannel) Disable() {
	t.reg(TIMER_TCER).ClearBits(t.regs.enable)
}

func (t *TimerChannel) Enabled() bool {
	return t.reg(TIMER_TCER).HasBits(t.regs.enable)
}

// Counter returns the current count.
func (t *TimerChannel) Counter() uint32 {
	return t.reg(t.regs.counter).Get()
}

// Millis returns the current count in milliseconds.
func (t *TimerChannel) Millis() uint32 {
	if t.tickHz == 0 {
		return 0
	}
	return uint32(uint64(t.Counter()) * 1000 / uint64(t.tickHz))
}
