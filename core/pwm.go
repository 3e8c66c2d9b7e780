package core

import "blhal/mmio"

// NumPWMChannels is the number of PWM channels. Pin n is driven by channel
// n % NumPWMChannels.
const NumPWMChannels = 5

const pwmMaxCount = 0xFFFF

// PWMChannel is one PWM channel clocked from bclk.
type PWMChannel struct {
	bus    mmio.Bus
	ch     uint8
	srcHz  uint32
	div    uint32
	period uint32
}

// PWMChannels holds every PWM channel.
type PWMChannels [NumPWMChannels]PWMChannel

func newPWMChannels(bus mmio.Bus) PWMChannels {
	var p PWMChannels
	for i := range p {
		p[i] = PWMChannel{bus: bus, ch: uint8(i)}
	}
	return p
}

func (p *PWMChannel) reg(off uintptr) mmio.Reg {
	return mmio.At(p.bus, PWM_CH0+uintptr(p.ch)*PWM_CH_STRIDE+off)
}

// Configure selects bclk as the channel clock and leaves the output stopped.
func (p *PWMChannel) Configure(clocks Clocks) {
	p.srcHz = clocks.BusClk()
	p.reg(PWM_CONFIG).Modify(func(v uint32) uint32 {
		v &^= PWM_CONFIG_CLK_SEL_Msk << PWM_CONFIG_CLK_SEL_Pos
		return v | PWM_CLK_BCLK<<PWM_CONFIG_CLK_SEL_Pos | PWM_CONFIG_STOP_EN
	})
}

// pwmDivider picks the smallest clock divider that fits the period counter.
func pwmDivider(srcHz, hz uint32) (div, period uint32) {
	if hz == 0 || hz > srcHz {
		panic(ErrUnreachableFreq)
	}
	total := srcHz / hz
	div = ceilDiv(total, pwmMaxCount)
	if div == 0 {
		div = 1
	}
	if div > pwmMaxCount {
		panic(ErrUnreachableFreq)
	}
	return div, total / div
}

// SetPeriod sets the PWM frequency to hz, as closely as the dividers allow.
// The duty cycle is reset to 50%.
func (p *PWMChannel) SetPeriod(hz uint32) {
	div, period := pwmDivider(p.srcHz, hz)
	p.reg(PWM_CLKDIV).Set(div)
	p.reg(PWM_PERIOD).Set(period)
	p.div, p.period = div, period
	p.SetDuty(1, 2)
}

// Frequency returns the programmed PWM frequency.
func (p *PWMChannel) Frequency() uint32 {
	if p.div == 0 || p.period == 0 {
		return 0
	}
	return p.srcHz / p.div / p.period
}

// SetDuty sets the high time to num/den of the period.
func (p *PWMChannel) SetDuty(num, den uint32) {
	if den == 0 || num > den {
		panic(ErrInvalidDuty)
	}
	p.reg(PWM_THRE1).Set(0)
	p.reg(PWM_THRE2).Set(uint32(uint64(p.period) * uint64(num) / uint64(den)))
}

// Enable starts the output.
func (p *PWMChannel) Enable() {
	p.reg(PWM_CONFIG).ClearBits(PWM_CONFIG_STOP_EN)
}

// Disable stops the output.
func (p *PWMChannel) Disable() {
	p.reg(PWM_CONFIG).SetBits(PWM_CONFIG_STOP_EN)
}
