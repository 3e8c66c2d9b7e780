package core

import "blhal/mmio"

// PinEvent selects what raises a pin interrupt.
type PinEvent uint8

const (
	EventNegativePulse PinEvent = iota // falling edge
	EventPositivePulse                 // rising edge
	EventNegativeLevel                 // while low
	EventPositiveLevel                 // while high
)

// Every pin interrupt is routed to InterruptGPIO. The handler finds the
// source with InterruptPending and acknowledges it with ClearInterrupt.

func (p Pin) intModeReg() (mmio.Reg, uint8) {
	addr := uintptr(GLB_GPIO_INT_MODE_SET1) + uintptr(p.num/GPIO_INT_PINS_PER_REG)*4
	return mmio.At(p.bus, addr), 3 * (p.num % GPIO_INT_PINS_PER_REG)
}

func (p Pin) checkInterruptPin() {
	if p.num >= NumPins {
		panic(ErrInvalidPin)
	}
	if !p.mode.IsInput() {
		panic(ErrPinMode)
	}
}

// TriggerOn selects the event that raises the pin interrupt.
func (p Pin) TriggerOn(e PinEvent) {
	p.checkInterruptPin()
	reg, shift := p.intModeReg()
	reg.ReplaceBits(uint32(e), GPIO_INT_TRIG_Msk, shift)
}

// SetAsynchronous chooses asynchronous event detection, which works
// without the bus clock. Synchronous detection samples on the bus clock.
func (p Pin) SetAsynchronous(async bool) {
	p.checkInterruptPin()
	reg, shift := p.intModeReg()
	if async {
		reg.SetBits(GPIO_INT_CTRL_ASYNC << shift)
	} else {
		reg.ClearBits(GPIO_INT_CTRL_ASYNC << shift)
	}
}

// EnableInterrupt unmasks the pin interrupt.
func (p Pin) EnableInterrupt() {
	p.checkInterruptPin()
	mmio.At(p.bus, GLB_GPIO_INT_MASK1).ClearBits(1 << p.num)
}

// DisableInterrupt masks the pin interrupt.
func (p Pin) DisableInterrupt() {
	p.checkInterruptPin()
	mmio.At(p.bus, GLB_GPIO_INT_MASK1).SetBits(1 << p.num)
}

// InterruptPending reports whether the pin has a latched interrupt.
func (p Pin) InterruptPending() bool {
	p.checkInterruptPin()
	return mmio.At(p.bus, GLB_GPIO_INT_STAT1).HasBits(1 << p.num)
}

// ClearInterrupt drops the latched interrupt. The clear bit is a level and
// must be released again or the pin stays cleared.
func (p Pin) ClearInterrupt() {
	p.checkInterruptPin()
	clr := mmio.At(p.bus, GLB_GPIO_INT_CLR1)
	clr.SetBits(1 << p.num)
	clr.ClearBits(1 << p.num)
}
