package core

import (
	"blhal/mmio"
)

// SysclkFreq is one of the system clock frequencies the root clock mux can
// produce.
type SysclkFreq uint32

const (
	SysclkRC32M   SysclkFreq = 32_000_000  // internal RC oscillator
	SysclkPLL48M  SysclkFreq = 48_000_000  // PLL tap 0
	SysclkPLL120M SysclkFreq = 120_000_000 // PLL tap 1
	SysclkPLL160M SysclkFreq = 160_000_000 // PLL tap 2
	SysclkPLL192M SysclkFreq = 192_000_000 // PLL tap 3, above the datasheet maximum
)

const (
	rc32mHz   = uint32(SysclkRC32M)
	uartPLLHz = uint32(SysclkPLL160M) // PLL tap feeding the UART mux

	uartDivMax = 7
	spiDivMax  = 32

	irom2THz    = 120_000_000
	pllBclkFrom = 48_000_000
)

// Hz returns the frequency in hertz.
func (f SysclkFreq) Hz() uint32 { return uint32(f) }

// pllSel returns the reg_pll_sel tap for a PLL-derived frequency.
func (f SysclkFreq) pllSel() (uint32, bool) {
	switch f {
	case SysclkPLL48M:
		return 0, true
	case SysclkPLL120M:
		return 1, true
	case SysclkPLL160M:
		return 2, true
	case SysclkPLL192M:
		return 3, true
	}
	return 0, false
}

func (f SysclkFreq) String() string {
	switch f {
	case SysclkRC32M:
		return "RC32M"
	case SysclkPLL48M:
		return "PLL48M"
	case SysclkPLL120M:
		return "PLL120M"
	case SysclkPLL160M:
		return "PLL160M"
	case SysclkPLL192M:
		return "PLL192M"
	}
	return "sysclk(" + utoa(uint32(f)) + ")"
}

// Clocks describes the clock tree as programmed by Strict.Freeze. The value
// is read-only; it is only produced after the hardware sequence completed.
type Clocks struct {
	sysclk  uint32
	uartClk uint32
	spiClk  uint32
	busClk  uint32
	xtal    uint32
	pll     bool
}

// Sysclk returns the core (fclk/hclk) frequency.
func (c Clocks) Sysclk() uint32 { return c.sysclk }

// UARTClk returns the UART peripheral clock.
func (c Clocks) UARTClk() uint32 { return c.uartClk }

// SPIClk returns the SPI peripheral clock.
func (c Clocks) SPIClk() uint32 { return c.spiClk }

// BusClk returns bclk, which feeds I2C, PWM and the SPI divider.
func (c Clocks) BusClk() uint32 { return c.busClk }

// XtalFreq returns the crystal frequency when the PLL path was used.
func (c Clocks) XtalFreq() (uint32, bool) { return c.xtal, c.pll }

// PLLEnabled reports whether the crystal and PLL were powered.
func (c Clocks) PLLEnabled() bool { return c.pll }

// String renders the clock tree for logs.
func (c Clocks) String() string {
	s := "sysclk=" + utoa(c.sysclk) +
		" bclk=" + utoa(c.busClk) +
		" uart=" + utoa(c.uartClk) +
		" spi=" + utoa(c.spiClk)
	if c.pll {
		s += " xtal=" + utoa(c.xtal) + " pll=on"
	} else {
		s += " pll=off"
	}
	return s
}

// ClkCfg is the exclusive right to program the clock registers. It is handed
// out once by Take and consumed by Strict.Freeze.
type ClkCfg struct {
	bus    mmio.Bus
	hart   Hart
	frozen bool
}

// Strict collects clock targets. Every method returns a new value; the
// receiver is never modified. Freeze only accepts exact integer dividers.
type Strict struct {
	uartClk uint32
	spiClk  uint32
	xtal    uint32
	sysclk  SysclkFreq
}

// NewStrict returns a builder for the RC32M-only configuration.
func NewStrict() Strict {
	return Strict{sysclk: SysclkRC32M}
}

// UARTClk requests a UART peripheral clock. Zero leaves it unset, which
// selects the undivided source.
func (s Strict) UARTClk(hz uint32) Strict {
	s.uartClk = hz
	return s
}

// SPIClk requests an SPI peripheral clock. Zero leaves it unset, which
// selects the undivided bus clock.
func (s Strict) SPIClk(hz uint32) Strict {
	s.spiClk = hz
	return s
}

// UsePLL powers the crystal and PLL using an external crystal of xtalHz.
// Zero disables the PLL path.
func (s Strict) UsePLL(xtalHz uint32) Strict {
	s.xtal = xtalHz
	return s
}

// SysClk selects the system clock.
func (s Strict) SysClk(f SysclkFreq) Strict {
	s.sysclk = f
	return s
}

// clockPlan is the register-level outcome of a Strict builder. It is fully
// validated before any register is touched.
type clockPlan struct {
	clocks  Clocks
	params  pllParams
	pllSel  uint32
	bclkDiv uint32
	irom2T  bool
	uartDiv uint32
	spiDiv  uint32
}

// switchRoot reports whether the root clock moves to the PLL. A crystal with
// an RC32M system clock only starts the PLL for the UART mux.
func (p clockPlan) switchRoot() bool {
	return p.clocks.pll && p.clocks.sysclk != rc32mHz
}

// plan validates the builder and computes every register value. It panics
// with a sentinel error on any configuration that cannot be met exactly.
func (s Strict) plan() clockPlan {
	var p clockPlan
	c := &p.clocks
	c.sysclk = s.sysclk.Hz()
	c.xtal = s.xtal
	c.pll = s.xtal != 0

	sel, isPLLTap := s.sysclk.pllSel()
	switch {
	case s.sysclk == SysclkRC32M:
	case isPLLTap && c.pll:
		p.pllSel = sel
	default:
		panic(ErrUnreachableSysclk)
	}

	if c.pll {
		params, ok := pllParamsFor(s.xtal)
		if !ok {
			panic(ErrUnsupportedXtal)
		}
		p.params = params
	}

	if isPLLTap && c.sysclk > pllBclkFrom {
		p.bclkDiv = 1
	}
	p.irom2T = isPLLTap && c.sysclk > irom2THz
	c.busClk = c.sysclk / (p.bclkDiv + 1)

	uartSrc := c.sysclk
	if c.pll {
		uartSrc = uartPLLHz
	}
	c.uartClk = s.uartClk
	if c.uartClk == 0 {
		c.uartClk = uartSrc
	}
	div, ok := exactDiv(uartSrc, c.uartClk, 1, uartDivMax)
	if !ok {
		panic(ErrUnreachableUARTClock)
	}
	p.uartDiv = div

	c.spiClk = s.spiClk
	if c.spiClk == 0 {
		c.spiClk = c.busClk
	}
	div, ok = exactDiv(c.busClk, c.spiClk, 1, spiDivMax)
	if !ok {
		panic(ErrUnreachableSPIClock)
	}
	p.spiDiv = div
	return p
}

// Freeze programs the clock tree and returns its description. It consumes
// cfg; freezing twice with the same token panics with ErrClockFrozen.
//
// Unreachable or unsupported frequencies panic before any register is
// written. The only returned error is ErrXtalTimeout, in which case the
// core is left running from RC32M and cfg may be used again, for example
// with an RC32M-only builder.
func (s Strict) Freeze(cfg *ClkCfg) (Clocks, error) {
	if cfg == nil || cfg.frozen {
		panic(ErrClockFrozen)
	}
	p := s.plan()
	cfg.frozen = true

	e := clockEngine{bus: cfg.bus, hart: cfg.hart}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	e.setSystemClkRC32()

	if p.clocks.pll {
		if err := e.powerOnXtal(); err != nil {
			cfg.frozen = false
			return Clocks{}, err
		}
		e.powerOnPLL(p.params)
		e.delay().WaitMicros(pllLockMicros)
		e.record(EvtPLLLocked, p.clocks.xtal, p.pllSel)
		e.enablePLL()
		if p.switchRoot() {
			e.setSystemClkPLL(p)
		}
	}

	e.setPeripheralClocks(p)
	e.record(EvtFrozen, p.clocks.sysclk, p.clocks.busClk)
	DebugPrintln("[CLK] frozen " + p.clocks.String())
	return p.clocks, nil
}
