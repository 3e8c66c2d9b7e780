package main

import (
	"fmt"

	"blhal/core"
)

// regNames labels the registers the clock sequence touches.
var regNames = map[uintptr]string{
	core.GLB_CLK_CFG0:         "glb_clk_cfg0",
	core.GLB_CLK_CFG2:         "glb_clk_cfg2",
	core.GLB_CLK_CFG3:         "glb_clk_cfg3",
	core.GLB_SWRST_CFG2:       "glb_swrst_cfg2",
	core.GLB_REG_BCLK_DIS:     "glb_reg_bclk_dis",
	core.GLB_UART_SIG_SEL_0:   "glb_uart_sig_sel_0",
	core.GLB_GPIO_CFGCTL34:    "glb_gpio_cfgctl34",
	core.HBN_GLB:              "hbn_glb",
	core.HBN_RSV2:             "hbn_rsv2",
	core.AON_RF_TOP_AON:       "aon_rf_top_aon",
	core.PDS_PU_RST_CLKPLL:    "pds_pu_rst_clkpll",
	core.PDS_CLKPLL_TOP_CTRL:  "pds_clkpll_top_ctrl",
	core.PDS_CLKPLL_CP:        "pds_clkpll_cp",
	core.PDS_CLKPLL_RZ:        "pds_clkpll_rz",
	core.PDS_CLKPLL_FBDV:      "pds_clkpll_fbdv",
	core.PDS_CLKPLL_OUTPUT_EN: "pds_clkpll_output_en",
	core.PDS_CLKPLL_SDM:       "pds_clkpll_sdm",
	core.L1C_CONFIG:           "l1c_config",
}

func regName(addr uintptr) string {
	if name, ok := regNames[addr]; ok {
		return name
	}
	if addr >= core.GLB_GPIO_CFGCTL0 && addr < core.GLB_GPIO_CFGCTL30 {
		return fmt.Sprintf("glb_gpio_cfgctl%d", (addr-core.GLB_GPIO_CFGCTL0)/4)
	}
	if addr >= core.UART0_BASE && addr < core.UART0_BASE+0x100 {
		return fmt.Sprintf("uart0+%#x", addr-core.UART0_BASE)
	}
	return fmt.Sprintf("0x%08x", addr)
}
