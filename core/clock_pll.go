package core

import "blhal/mmio"

// Settling times from the BL602 reference manual, in microseconds.
const (
	xtalPollMicros = 10
	xtalReadyPolls = 120

	pllSfregMicros    = 5
	pllPowerUpMicros  = 5
	pllSDMResetMicros = 1
	pllFBDVMicros     = 2
	pllReleaseMicros  = 1
	pllLockMicros     = 55

	clkSwitchMicros = 1
)

// pllParams are the analog PLL settings for one crystal frequency.
type pllParams struct {
	sdmin     uint32
	icp1u     uint32
	icp5u     uint32
	intFracSw bool
	c3        uint32
	cz        uint32
	rz        uint32
	r4Short   bool
}

var (
	// loop filter for the 26 MHz crystal
	pllLoop26M = pllParams{icp1u: 1, icp5u: 0, intFracSw: true, c3: 2, cz: 2, rz: 5, r4Short: false}
	// loop filter for every other crystal
	pllLoopDefault = pllParams{icp1u: 0, icp5u: 2, intFracSw: false, c3: 3, cz: 1, rz: 1, r4Short: true}
)

var pllTable = [...]struct {
	xtal  uint32
	sdmin uint32
}{
	{24_000_000, 0x50_0000},
	{26_000_000, 0x49_D39D},
	{32_000_000, 0x3C_0000},
	{38_400_000, 0x32_0000},
	{40_000_000, 0x30_0000},
}

// pllParamsFor looks up the PLL settings for a crystal frequency.
func pllParamsFor(xtal uint32) (pllParams, bool) {
	for _, e := range pllTable {
		if e.xtal != xtal {
			continue
		}
		p := pllLoopDefault
		if xtal == 26_000_000 {
			p = pllLoop26M
		}
		p.sdmin = e.sdmin
		return p, true
	}
	return pllParams{}, false
}

// SupportedXtals returns the crystal frequencies the PLL can lock to.
func SupportedXtals() []uint32 {
	out := make([]uint32, len(pllTable))
	for i, e := range pllTable {
		out[i] = e.xtal
	}
	return out
}

// clockEngine performs the register sequences behind Strict.Freeze.
type clockEngine struct {
	bus  mmio.Bus
	hart Hart
}

func (e clockEngine) reg(addr uintptr) mmio.Reg {
	return mmio.At(e.bus, addr)
}

// delay returns a delay calibrated to the shadow core clock in HBN_RSV2.
func (e clockEngine) delay() McycleDelay {
	hz := e.reg(HBN_RSV2).Get()
	if hz == 0 {
		hz = rc32mHz
	}
	return NewMcycleDelay(e.hart, hz)
}

func (e clockEngine) record(evt uint8, v1, v2 uint32) {
	RecordEvent(evt, uint32(e.hart.Cycles()), v1, v2)
}

// setSystemClkRC32 is the safe default: every bus clock gated on, root
// clock on RC32M and dividers at 1. It runs before any PLL register is
// touched, since the PLL cannot be reprogrammed while it drives the core.
func (e clockEngine) setSystemClkRC32() {
	// bclk, hclk and fclk enables must never be zero
	e.reg(GLB_CLK_CFG0).SetBits(GLB_CLK_CFG0_BCLK_EN | GLB_CLK_CFG0_HCLK_EN | GLB_CLK_CFG0_FCLK_EN)

	e.reg(HBN_GLB).ReplaceBits(ROOT_CLK_RC32M, HBN_GLB_ROOT_CLK_SEL_Msk, HBN_GLB_ROOT_CLK_SEL_Pos)

	e.setSystemClkDiv(0, 0)

	e.reg(HBN_RSV2).Set(rc32mHz)

	// PKA clock from hclk
	e.reg(GLB_SWRST_CFG2).ClearBits(GLB_SWRST_CFG2_PKA_CLK_SEL)

	e.record(EvtSafeDefault, rc32mHz, 0)
}

// setSystemClkDiv programs the hclk and bclk dividers (value+1 divides).
func (e clockEngine) setSystemClkDiv(hclkDiv, bclkDiv uint32) {
	cfg0 := e.reg(GLB_CLK_CFG0)
	cfg0.Modify(func(v uint32) uint32 {
		v &^= GLB_CLK_CFG0_HCLK_DIV_Msk<<GLB_CLK_CFG0_HCLK_DIV_Pos | GLB_CLK_CFG0_BCLK_DIV_Msk<<GLB_CLK_CFG0_BCLK_DIV_Pos
		v |= hclkDiv<<GLB_CLK_CFG0_HCLK_DIV_Pos | bclkDiv<<GLB_CLK_CFG0_BCLK_DIV_Pos
		return v
	})

	// undocumented bclk gate, must be pulsed for the new divider to apply
	bclkDis := e.reg(GLB_REG_BCLK_DIS)
	bclkDis.Set(1)
	bclkDis.Set(0)

	shadow := e.reg(HBN_RSV2)
	shadow.Set(shadow.Get() / (hclkDiv + 1))

	d := e.delay()
	d.WaitMicros(clkSwitchMicros)
	cfg0.SetBits(GLB_CLK_CFG0_HCLK_EN | GLB_CLK_CFG0_BCLK_EN)
	d.WaitMicros(clkSwitchMicros)
}

// powerOnXtal starts the external crystal and waits for it to report ready.
func (e clockEngine) powerOnXtal() error {
	e.reg(AON_RF_TOP_AON).SetBits(AON_RF_TOP_AON_PU_XTAL | AON_RF_TOP_AON_PU_XTAL_BUF)

	d := e.delay()
	tsen := e.reg(AON_TSEN)
	for i := uint32(0); i < xtalReadyPolls; i++ {
		d.WaitMicros(xtalPollMicros)
		if tsen.HasBits(AON_TSEN_XTAL_RDY) {
			e.record(EvtXtalReady, i+1, 0)
			return nil
		}
	}
	e.record(EvtXtalTimeout, xtalReadyPolls, 0)
	DebugPrintln("[CLK] crystal not ready after " + utoa(xtalReadyPolls*xtalPollMicros) + "us")
	return ErrXtalTimeout
}

// powerOffPLL drops the regulator, core and divider power bits.
func (e clockEngine) powerOffPLL() {
	pu := e.reg(PDS_PU_RST_CLKPLL)
	pu.ClearBits(CLKPLL_PU_SFREG | CLKPLL_PU)
	pu.ClearBits(CLKPLL_PU_CP | CLKPLL_PU_PFD | CLKPLL_PU_FBDV | CLKPLL_PU_POSTDIV)
}

// powerOnPLL configures the PLL for the crystal and runs the power-up
// sequence. Order and delays follow the reference manual.
func (e clockEngine) powerOnPLL(p pllParams) {
	top := e.reg(PDS_CLKPLL_TOP_CTRL)

	// crystal as reference
	top.Modify(func(v uint32) uint32 {
		return v&^CLKPLL_TOP_XTAL_RC32M_SEL | CLKPLL_TOP_REFCLK_SEL
	})

	e.powerOffPLL()

	e.reg(PDS_CLKPLL_CP).Modify(func(v uint32) uint32 {
		v &^= CLKPLL_CP_ICP_1U_Msk<<CLKPLL_CP_ICP_1U_Pos | CLKPLL_CP_ICP_5U_Msk<<CLKPLL_CP_ICP_5U_Pos | CLKPLL_CP_INT_FRAC_SW
		v |= p.icp1u<<CLKPLL_CP_ICP_1U_Pos | p.icp5u<<CLKPLL_CP_ICP_5U_Pos
		if p.intFracSw {
			v |= CLKPLL_CP_INT_FRAC_SW
		}
		return v
	})

	e.reg(PDS_CLKPLL_RZ).Modify(func(v uint32) uint32 {
		v &^= CLKPLL_RZ_C3_Msk<<CLKPLL_RZ_C3_Pos | CLKPLL_RZ_CZ_Msk<<CLKPLL_RZ_CZ_Pos |
			CLKPLL_RZ_RZ_Msk<<CLKPLL_RZ_RZ_Pos | CLKPLL_RZ_R4_SHORT
		v |= p.c3<<CLKPLL_RZ_C3_Pos | p.cz<<CLKPLL_RZ_CZ_Pos | p.rz<<CLKPLL_RZ_RZ_Pos
		if p.r4Short {
			v |= CLKPLL_RZ_R4_SHORT
		}
		return v
	})

	top.Modify(func(v uint32) uint32 {
		v &^= CLKPLL_TOP_POSTDIV_Msk<<CLKPLL_TOP_POSTDIV_Pos | CLKPLL_TOP_REFDIV_RATIO_Msk<<CLKPLL_TOP_REFDIV_RATIO_Pos
		return v | 0x14<<CLKPLL_TOP_POSTDIV_Pos | 2<<CLKPLL_TOP_REFDIV_RATIO_Pos
	})

	e.reg(PDS_CLKPLL_SDM).ReplaceBits(p.sdmin, CLKPLL_SDMIN_Msk, 0)

	e.reg(PDS_CLKPLL_FBDV).Modify(func(v uint32) uint32 {
		v &^= CLKPLL_FBDV_SEL_FB_CLK_Msk<<CLKPLL_FBDV_SEL_FB_CLK_Pos | CLKPLL_FBDV_SEL_SAMPLE_CLK_Msk<<CLKPLL_FBDV_SEL_SAMPLE_CLK_Pos
		return v | 1<<CLKPLL_FBDV_SEL_FB_CLK_Pos | 1<<CLKPLL_FBDV_SEL_SAMPLE_CLK_Pos
	})

	// power-up sequence
	d := e.delay()
	pu := e.reg(PDS_PU_RST_CLKPLL)

	pu.SetBits(CLKPLL_PU_SFREG)
	d.WaitMicros(pllSfregMicros)

	pu.SetBits(CLKPLL_PU)
	pu.SetBits(CLKPLL_PU_CP | CLKPLL_PU_PFD | CLKPLL_PU_FBDV | CLKPLL_PU_POSTDIV)
	d.WaitMicros(pllPowerUpMicros)

	pu.SetBits(CLKPLL_SDM_RESET)
	d.WaitMicros(pllSDMResetMicros)

	pu.SetBits(CLKPLL_RESET_FBDV)
	d.WaitMicros(pllFBDVMicros)
	pu.ClearBits(CLKPLL_RESET_FBDV)
	d.WaitMicros(pllReleaseMicros)

	pu.ClearBits(CLKPLL_SDM_RESET)
}

// enablePLL turns on every PLL output tap and the PLL clock gate.
func (e clockEngine) enablePLL() {
	e.reg(PDS_CLKPLL_OUTPUT_EN).SetBits(CLKPLL_OUTPUT_EN_ALL)
	e.reg(GLB_CLK_CFG0).SetBits(GLB_CLK_CFG0_PLL_EN)
}

// setSystemClkPLL selects the PLL tap and moves the root clock onto it.
func (e clockEngine) setSystemClkPLL(p clockPlan) {
	// tap select must precede the root switch
	e.reg(GLB_CLK_CFG0).ReplaceBits(p.pllSel, GLB_CLK_CFG0_PLL_SEL_Msk, GLB_CLK_CFG0_PLL_SEL_Pos)

	if p.bclkDiv != 0 {
		e.setSystemClkDiv(0, p.bclkDiv)
	}

	if p.irom2T {
		e.reg(L1C_CONFIG).SetBits(L1C_CONFIG_IROM_2T_ACCESS)
	}

	e.reg(HBN_GLB).ReplaceBits(ROOT_CLK_PLL, HBN_GLB_ROOT_CLK_SEL_Msk, HBN_GLB_ROOT_CLK_SEL_Pos)
	e.reg(HBN_RSV2).Set(p.clocks.sysclk)
	e.record(EvtRootSwitch, p.clocks.sysclk, p.pllSel)

	e.delay().WaitMicros(clkSwitchMicros)

	// PKA clock from the PLL
	e.reg(GLB_SWRST_CFG2).SetBits(GLB_SWRST_CFG2_PKA_CLK_SEL)
}

// setPeripheralClocks programs the UART mux and the UART and SPI dividers
// against the final clock tree.
func (e clockEngine) setPeripheralClocks(p clockPlan) {
	hbn := e.reg(HBN_GLB)
	if p.clocks.pll {
		hbn.SetBits(HBN_GLB_UART_CLK_SEL)
	} else {
		hbn.ClearBits(HBN_GLB_UART_CLK_SEL)
	}

	e.reg(GLB_CLK_CFG2).Modify(func(v uint32) uint32 {
		v &^= GLB_CLK_CFG2_UART_CLK_DIV_Msk << GLB_CLK_CFG2_UART_CLK_DIV_Pos
		return v | (p.uartDiv-1)<<GLB_CLK_CFG2_UART_CLK_DIV_Pos | GLB_CLK_CFG2_UART_CLK_EN
	})

	e.reg(GLB_CLK_CFG3).Modify(func(v uint32) uint32 {
		v &^= GLB_CLK_CFG3_SPI_CLK_DIV_Msk << GLB_CLK_CFG3_SPI_CLK_DIV_Pos
		return v | (p.spiDiv-1)<<GLB_CLK_CFG3_SPI_CLK_DIV_Pos | GLB_CLK_CFG3_SPI_CLK_EN
	})
}
