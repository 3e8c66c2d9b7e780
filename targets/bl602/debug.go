//go:build tinygo && riscv

package main

import "blhal/core"

const (
	consoleTX   = 16
	consoleRX   = 7
	consoleBaud = 115200
)

var (
	debugUART    *core.UART
	debugEnabled bool
)

// InitDebugUART routes UART0 to GPIO16 (TX) and GPIO7 (RX) and makes it the
// HAL debug writer.
// Baud rate: 115200
func InitDebugUART(p *core.Peripherals, clocks core.Clocks) {
	tx := p.Pins[consoleTX].IntoUART()
	rx := p.Pins[consoleRX].IntoUART()
	p.UARTMux[tx.UARTSignal()].Into(core.UART0TX)
	p.UARTMux[rx.UARTSignal()].Into(core.UART0RX)

	debugUART = p.UART0
	debugUART.Configure(clocks, core.UARTConfig{BaudRate: consoleBaud})
	debugEnabled = true

	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(true)
}

// DebugPrint writes a string to the debug UART (no newline)
func DebugPrint(s string) {
	if !debugEnabled || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
}

// DebugPrintln writes a string to the debug UART with newline
func DebugPrintln(s string) {
	if !debugEnabled || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
