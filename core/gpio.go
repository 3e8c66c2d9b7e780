// GPIO pin multiplexing and digital I/O
package core

import "blhal/mmio"

// NumPins is the number of GPIO pins on the BL602.
const NumPins = 23

// PinMode is the configured function of a pin.
type PinMode uint8

const (
	ModeFloatingInput PinMode = iota
	ModePullUpInput
	ModePullDownInput
	ModeFloatingOutput
	ModePullUpOutput
	ModePullDownOutput
	ModeUART
	ModeSPI
	ModeI2C
	ModePWM
)

func (m PinMode) IsInput() bool {
	return m <= ModePullDownInput
}

func (m PinMode) IsOutput() bool {
	return m >= ModeFloatingOutput && m <= ModePullDownOutput
}

func (m PinMode) String() string {
	switch m {
	case ModeFloatingInput:
		return "input"
	case ModePullUpInput:
		return "input-pullup"
	case ModePullDownInput:
		return "input-pulldown"
	case ModeFloatingOutput:
		return "output"
	case ModePullUpOutput:
		return "output-pullup"
	case ModePullDownOutput:
		return "output-pulldown"
	case ModeUART:
		return "uart"
	case ModeSPI:
		return "spi"
	case ModeI2C:
		return "i2c"
	case ModePWM:
		return "pwm"
	}
	return "invalid"
}

// pinFunc is the register setting for each mode.
type pinFunc struct {
	fn     uint32
	pullUp bool
	pullDn bool
	input  bool
}

var pinFuncs = [...]pinFunc{
	ModeFloatingInput:  {GPIO_FUN_SWGPIO, false, false, true},
	ModePullUpInput:    {GPIO_FUN_SWGPIO, true, false, true},
	ModePullDownInput:  {GPIO_FUN_SWGPIO, false, true, true},
	ModeFloatingOutput: {GPIO_FUN_SWGPIO, false, false, false},
	ModePullUpOutput:   {GPIO_FUN_SWGPIO, true, false, false},
	ModePullDownOutput: {GPIO_FUN_SWGPIO, false, true, false},
	ModeUART:           {GPIO_FUN_UART, true, false, true},
	ModeSPI:            {GPIO_FUN_SPI, true, false, true},
	ModeI2C:            {GPIO_FUN_I2C, true, false, true},
	ModePWM:            {GPIO_FUN_PWM, false, false, false},
}

// Pin is one GPIO pin in a particular mode. Mode transitions take the pin
// by value and return the reconfigured pin; the old value must not be used
// afterwards.
type Pin struct {
	bus  mmio.Bus
	num  uint8
	mode PinMode
}

// Pins holds every GPIO pin, all floating inputs after reset.
type Pins [NumPins]Pin

func newPins(bus mmio.Bus) Pins {
	var p Pins
	for i := range p {
		p[i] = Pin{bus: bus, num: uint8(i), mode: ModeFloatingInput}
	}
	return p
}

// Num returns the pin number.
func (p Pin) Num() uint8 { return p.num }

// Mode returns the current mode.
func (p Pin) Mode() PinMode { return p.mode }

// UARTSignal returns the internal UART signal the pin is wired to.
func (p Pin) UARTSignal() uint8 { return p.num % 8 }

func (p Pin) IntoFloatingInput() Pin  { return p.into(ModeFloatingInput) }
func (p Pin) IntoPullUpInput() Pin    { return p.into(ModePullUpInput) }
func (p Pin) IntoPullDownInput() Pin  { return p.into(ModePullDownInput) }
func (p Pin) IntoFloatingOutput() Pin { return p.into(ModeFloatingOutput) }
func (p Pin) IntoPullUpOutput() Pin   { return p.into(ModePullUpOutput) }
func (p Pin) IntoPullDownOutput() Pin { return p.into(ModePullDownOutput) }

// IntoUART hands the pin to the UART signal mux.
func (p Pin) IntoUART() Pin { return p.into(ModeUART) }

// IntoSPI hands the pin to the SPI block. The SPI role (MISO, MOSI, SS,
// SCLK) is fixed by the pin number modulo 4.
func (p Pin) IntoSPI() Pin { return p.into(ModeSPI) }

// IntoI2C hands the pin to the I2C block; even pins are SCL, odd pins SDA.
func (p Pin) IntoI2C() Pin { return p.into(ModeI2C) }

// IntoPWM hands the pin to PWM channel Num() % 5.
func (p Pin) IntoPWM() Pin { return p.into(ModePWM) }

func (p Pin) cfgReg() (mmio.Reg, uint8) {
	addr := uintptr(GLB_GPIO_CFGCTL0) + uintptr(p.num/2)*4
	return mmio.At(p.bus, addr), (p.num % 2) * 16
}

func (p Pin) into(mode PinMode) Pin {
	if p.num >= NumPins {
		panic(ErrInvalidPin)
	}
	f := pinFuncs[mode]

	cfg := uint32(f.fn << GPIO_CFG_FUNC_SEL_Pos)
	if f.input {
		cfg |= GPIO_CFG_IE
	}
	if f.pullUp {
		cfg |= GPIO_CFG_PU
	}
	if f.pullDn {
		cfg |= GPIO_CFG_PD
	}
	// drive strength 0, schmitt trigger off

	reg, shift := p.cfgReg()
	reg.ReplaceBits(cfg, GPIO_CFG_Msk, shift)

	oe := mmio.At(p.bus, GLB_GPIO_CFGCTL34)
	if f.input {
		oe.ClearBits(1 << p.num)
	} else {
		oe.SetBits(1 << p.num)
	}

	p.mode = mode
	return p
}

// SetSchmitt enables or disables the input schmitt trigger.
func (p Pin) SetSchmitt(enable bool) {
	if !p.mode.IsInput() {
		panic(ErrPinMode)
	}
	reg, shift := p.cfgReg()
	if enable {
		reg.SetBits(GPIO_CFG_SMT << shift)
	} else {
		reg.ClearBits(GPIO_CFG_SMT << shift)
	}
}

// Set drives an output pin.
func (p Pin) Set(high bool) {
	if !p.mode.IsOutput() {
		panic(ErrPinMode)
	}
	out := mmio.At(p.bus, GLB_GPIO_CFGCTL32)
	if high {
		out.SetBits(1 << p.num)
	} else {
		out.ClearBits(1 << p.num)
	}
}

func (p Pin) High() { p.Set(true) }

func (p Pin) Low() { p.Set(false) }

// Toggle inverts an output pin.
func (p Pin) Toggle() {
	p.Set(!p.IsSetHigh())
}

// IsSetHigh reports the level an output pin is driving.
func (p Pin) IsSetHigh() bool {
	if !p.mode.IsOutput() {
		panic(ErrPinMode)
	}
	return mmio.At(p.bus, GLB_GPIO_CFGCTL32).HasBits(1 << p.num)
}

// Get reads an input pin.
func (p Pin) Get() bool {
	if !p.mode.IsInput() {
		panic(ErrPinMode)
	}
	return mmio.At(p.bus, GLB_GPIO_CFGCTL30).HasBits(1 << p.num)
}

// UARTFunction is the UART signal a mux slot routes.
type UARTFunction uint8

const (
	UART0RTS UARTFunction = iota
	UART0CTS
	UART0TX
	UART0RX
	UART1RTS
	UART1CTS
	UART1TX
	UART1RX
)

// UARTMux is one of the eight internal UART signal slots. Pin n drives
// slot n % 8.
type UARTMux struct {
	bus mmio.Bus
	sig uint8
	fn  UARTFunction
}

// UARTMuxes holds the eight signal slots, all routing UART0 CTS after reset.
type UARTMuxes [8]UARTMux

func newUARTMuxes(bus mmio.Bus) UARTMuxes {
	var m UARTMuxes
	for i := range m {
		m[i] = UARTMux{bus: bus, sig: uint8(i), fn: UART0CTS}
	}
	return m
}

// Signal returns the slot index.
func (m UARTMux) Signal() uint8 { return m.sig }

// Function returns the routed UART signal.
func (m UARTMux) Function() UARTFunction { return m.fn }

// Into routes fn through the slot and returns the reconfigured mux.
func (m UARTMux) Into(fn UARTFunction) UARTMux {
	if fn > UART1RX {
		panic(ErrPinMode)
	}
	mmio.At(m.bus, GLB_UART_SIG_SEL_0).ReplaceBits(uint32(fn), 0xF, m.sig*4)
	m.fn = fn
	return m
}
