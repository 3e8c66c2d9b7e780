package core

import (
	"sync/atomic"

	"blhal/mmio"
)

// Peripherals holds one capability per register block. Each capability
// is the only handle to its registers; code that needs a block receives it
// explicitly.
type Peripherals struct {
	ClkCfg   *ClkCfg
	CLIC     *CLIC
	Pins     Pins
	UARTMux  UARTMuxes
	UART0    *UART
	UART1    *UART
	SPI      *SPI
	I2C      *I2C
	PWM      PWMChannels
	Timers   Timers
	Watchdog *Watchdog
	Checksum *Checksum
	RTC      *RTC
	DMA      *DMA
	Hart     Hart
}

var taken atomic.Bool

// Take returns the peripherals on the first call and nil, false on every
// later call.
func Take(bus mmio.Bus, hart Hart) (*Peripherals, bool) {
	if !taken.CompareAndSwap(false, true) {
		return nil, false
	}
	return newPeripherals(bus, hart), true
}

// TakeDefault is Take on the physical bus and the running hart.
func TakeDefault() (*Peripherals, bool) {
	return Take(mmio.Default(), DefaultHart())
}

func newPeripherals(bus mmio.Bus, hart Hart) *Peripherals {
	return &Peripherals{
		ClkCfg:   &ClkCfg{bus: bus, hart: hart},
		CLIC:     newCLIC(bus, hart),
		Pins:     newPins(bus),
		UARTMux:  newUARTMuxes(bus),
		UART0:    newUART(bus, UART0_BASE),
		UART1:    newUART(bus, UART1_BASE),
		SPI:      newSPI(bus),
		I2C:      newI2C(bus),
		PWM:      newPWMChannels(bus),
		Timers:   newTimers(bus),
		Watchdog: newWatchdog(bus),
		Checksum: newChecksum(bus),
		RTC:      newRTC(bus),
		DMA:      newDMA(bus),
		Hart:     hart,
	}
}

// Delay returns a cycle delay calibrated to clocks.
func (p *Peripherals) Delay(clocks Clocks) McycleDelay {
	return NewMcycleDelay(p.Hart, clocks.Sysclk())
}
