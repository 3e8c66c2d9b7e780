//go:build tinygo && riscv

package main

import (
	"time"

	"blhal/core"
)

const (
	ledPin      = 11
	buttonPin   = 3
	blinkPeriod = 500 * time.Millisecond
	xtalHz      = 40_000_000
)

func main() {
	p, ok := core.TakeDefault()
	if !ok {
		return
	}

	// Stop a watchdog left running by the bootloader
	wdt := p.Watchdog
	wdt.Disable()

	// 160 MHz from the crystal, RC32M if it never starts
	clocks, err := core.NewStrict().
		UsePLL(xtalHz).
		SysClk(core.SysclkPLL160M).
		Freeze(p.ClkCfg)
	if err != nil {
		clocks, _ = core.NewStrict().Freeze(p.ClkCfg)
	}

	InitDebugUART(p, clocks)
	sendBanner(p)
	DebugPrintln(clocks.String())

	p.CLIC.Install(core.TrapEntry())

	led := p.Pins[ledPin].IntoFloatingOutput()
	startBlink(p, clocks, led)
	startButton(p)

	wdt.Configure(clocks, core.TimerClock1K, 1_000)
	wdt.SetMode(core.WatchdogReset)
	wdt.SetTimeout(4 * time.Second)
	wdt.Enable()

	delay := p.Delay(clocks)
	for {
		wdt.Feed()
		delay.WaitMillis(1_000)
		if wdt.ResetOccurred() {
			DebugPrintln("[WDT] last reset was a watchdog reset")
			wdt.ClearReset()
		}
	}
}

// startBlink toggles led from the channel 0 match interrupt.
func startBlink(p *core.Peripherals, clocks core.Clocks, led core.Pin) {
	tmr := p.Timers.Ch0
	tmr.Configure(clocks, core.TimerClockFCLK, 1_000_000)
	tmr.SetMatch(0, tmr.Ticks(blinkPeriod))
	tmr.SetPreload(core.PreloadMatch0)
	tmr.SetPreloadValue(0)
	tmr.EnableMatchInterrupt(0)

	p.CLIC.SetHandler(tmr.Interrupt(), func(*core.TrapFrame) {
		tmr.ClearMatchInterrupt(0)
		led.Toggle()
	})
	p.CLIC.SetExceptionHandler(func(*core.TrapFrame) {
		DebugPrintln("[TRAP] unhandled, mcause=" + core.Hex32(uint32(p.Hart.Cause())))
		core.DumpTrace()
		for {
		}
	})

	p.CLIC.Enable(tmr.Interrupt())
	tmr.Enable()
}

// sendBanner pushes the banner through DMA channel 0 into the UART0 TX FIFO.
func sendBanner(p *core.Peripherals) {
	p.UART0.LinkDMA(true, false)
	p.DMA.Enable()
	banner := []byte("=== BL602 HAL ===\r\n")
	if err := p.DMA.Channels[0].Start(core.DMABuffer(banner), p.UART0.DMATarget()).Wait(); err != nil {
		DebugPrintln("[DMA] banner transfer failed")
	}
}

// startButton logs presses of the button on buttonPin from the GPIO
// interrupt.
func startButton(p *core.Peripherals) {
	btn := p.Pins[buttonPin].IntoPullUpInput()
	btn.SetSchmitt(true)
	btn.TriggerOn(core.EventNegativePulse)
	btn.SetAsynchronous(true)

	p.CLIC.SetHandler(core.InterruptGPIO, func(*core.TrapFrame) {
		p.CLIC.Clear(core.InterruptGPIO)
		if btn.InterruptPending() {
			btn.ClearInterrupt()
			DebugPrintln("[GPIO] button")
		}
	})

	btn.EnableInterrupt()
	p.CLIC.Enable(core.InterruptGPIO)
}
