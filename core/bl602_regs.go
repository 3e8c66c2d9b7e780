package core

// BL602 Register Definitions
// Based on the BL602/BL604 reference manual and the vendor SVD
// Bouffalo Lab

// Peripheral base addresses
const (
	GLB_BASE   = 0x4000_0000 // Global register: clock gating, dividers, GPIO
	L1C_BASE   = 0x4000_9000 // Level 1 cache controller
	UART0_BASE = 0x4000_A000
	UART1_BASE = 0x4000_A100
	SPI_BASE   = 0x4000_A200
	I2C_BASE   = 0x4000_A300
	PWM_BASE   = 0x4000_A400
	TIMER_BASE = 0x4000_A500
	CKS_BASE   = 0x4000_A700 // Checksum engine
	DMA_BASE   = 0x4000_C000
	PDS_BASE   = 0x4000_E000 // Power-down sleep: PLL control
	HBN_BASE   = 0x4000_F000 // Hibernate: root clock select, RTC
	AON_BASE   = 0x4000_F000 // Always-on: crystal power (shares the HBN page)

	CLIC_HART0_BASE = 0x0280_0000 // Core-local interrupt controller
)

// GLB registers
const (
	GLB_CLK_CFG0           = GLB_BASE + 0x000
	GLB_CLK_CFG2           = GLB_BASE + 0x008
	GLB_CLK_CFG3           = GLB_BASE + 0x00C
	GLB_SWRST_CFG2         = GLB_BASE + 0x018
	GLB_GLB_PARM           = GLB_BASE + 0x080
	GLB_UART_SIG_SEL_0     = GLB_BASE + 0x0C0
	GLB_GPIO_CFGCTL0       = GLB_BASE + 0x100 // two pins per register
	GLB_GPIO_CFGCTL30      = GLB_BASE + 0x180 // input value
	GLB_GPIO_CFGCTL32      = GLB_BASE + 0x188 // output value
	GLB_GPIO_CFGCTL34      = GLB_BASE + 0x190 // output enable
	GLB_GPIO_INT_MASK1     = GLB_BASE + 0x1A0 // 1 masks the pin interrupt
	GLB_GPIO_INT_STAT1     = GLB_BASE + 0x1A8
	GLB_GPIO_INT_CLR1      = GLB_BASE + 0x1B0
	GLB_GPIO_INT_MODE_SET1 = GLB_BASE + 0x1C0 // ten pins per register, then SET2, SET3
	GLB_REG_BCLK_DIS       = GLB_BASE + 0xFFC // undocumented bclk gate, pulsed after divider change
)

// GLB_CLK_CFG0 fields
const (
	GLB_CLK_CFG0_PLL_EN  = 1 << 0
	GLB_CLK_CFG0_FCLK_EN = 1 << 1
	GLB_CLK_CFG0_HCLK_EN = 1 << 2
	GLB_CLK_CFG0_BCLK_EN = 1 << 3

	GLB_CLK_CFG0_PLL_SEL_Pos       = 4
	GLB_CLK_CFG0_PLL_SEL_Msk       = 0x3
	GLB_CLK_CFG0_ROOT_CLK_SEL_Pos  = 6 // read-only mirror of HBN root select
	GLB_CLK_CFG0_ROOT_CLK_SEL_Msk  = 0x3
	GLB_CLK_CFG0_HCLK_DIV_Pos      = 8
	GLB_CLK_CFG0_HCLK_DIV_Msk      = 0xFF
	GLB_CLK_CFG0_BCLK_DIV_Pos      = 16
	GLB_CLK_CFG0_BCLK_DIV_Msk      = 0xFF
)

// GLB_CLK_CFG2 / CFG3 fields
const (
	GLB_CLK_CFG2_UART_CLK_DIV_Pos = 0
	GLB_CLK_CFG2_UART_CLK_DIV_Msk = 0x7
	GLB_CLK_CFG2_UART_CLK_EN      = 1 << 4

	GLB_CLK_CFG3_SPI_CLK_DIV_Pos = 0
	GLB_CLK_CFG3_SPI_CLK_DIV_Msk = 0x1F
	GLB_CLK_CFG3_SPI_CLK_EN      = 1 << 8

	GLB_SWRST_CFG2_PKA_CLK_SEL = 1 << 24

	GLB_GLB_PARM_SPI_0_MASTER_MODE = 1 << 12
	GLB_GLB_PARM_SPI_0_SWAP        = 1 << 13
)

// GPIO cfgctl half-word fields (even pin at bit 0, odd pin at bit 16)
const (
	GPIO_CFG_IE           = 1 << 0
	GPIO_CFG_SMT          = 1 << 1
	GPIO_CFG_DRV_Pos      = 2
	GPIO_CFG_DRV_Msk      = 0x3
	GPIO_CFG_PU           = 1 << 4
	GPIO_CFG_PD           = 1 << 5
	GPIO_CFG_FUNC_SEL_Pos = 8
	GPIO_CFG_FUNC_SEL_Msk = 0x1F
	GPIO_CFG_Msk          = 0xFFFF
)

// GPIO interrupt mode, three bits per pin
const (
	GPIO_INT_MODE_Msk     = 0x7
	GPIO_INT_TRIG_Msk     = 0x3
	GPIO_INT_CTRL_ASYNC   = 1 << 2
	GPIO_INT_PINS_PER_REG = 10
)

// GPIO function select values
const (
	GPIO_FUN_SPI    = 4
	GPIO_FUN_I2C    = 6
	GPIO_FUN_UART   = 7
	GPIO_FUN_PWM    = 8
	GPIO_FUN_SWGPIO = 11
)

// HBN registers
const (
	HBN_CTL        = HBN_BASE + 0x000
	HBN_RTC_TIME_L = HBN_BASE + 0x010
	HBN_RTC_TIME_H = HBN_BASE + 0x014
	HBN_GLB        = HBN_BASE + 0x030
	HBN_RSV2       = HBN_BASE + 0x108 // holds the current core clock in Hz

	HBN_CTL_RTC_CTL_Msk     = 0x7F
	HBN_CTL_RTC_EN          = 1 << 0
	HBN_RTC_TIME_H_LATCH    = 1 << 31
	HBN_GLB_ROOT_CLK_SEL_Pos = 0
	HBN_GLB_ROOT_CLK_SEL_Msk = 0x3
	HBN_GLB_UART_CLK_SEL     = 1 << 2
)

// Root clock select values
const (
	ROOT_CLK_RC32M = 0b00
	ROOT_CLK_XTAL  = 0b01
	ROOT_CLK_PLL   = 0b10
)

// AON registers
const (
	AON_RF_TOP_AON = AON_BASE + 0x880
	AON_TSEN       = AON_BASE + 0x908

	AON_RF_TOP_AON_PU_XTAL     = 1 << 4
	AON_RF_TOP_AON_PU_XTAL_BUF = 1 << 5
	AON_TSEN_XTAL_RDY          = 1 << 14
)

// PDS PLL registers
const (
	PDS_PU_RST_CLKPLL    = PDS_BASE + 0x400
	PDS_CLKPLL_TOP_CTRL  = PDS_BASE + 0x404
	PDS_CLKPLL_CP        = PDS_BASE + 0x408
	PDS_CLKPLL_RZ        = PDS_BASE + 0x40C
	PDS_CLKPLL_FBDV      = PDS_BASE + 0x410
	PDS_CLKPLL_OUTPUT_EN = PDS_BASE + 0x41C
	PDS_CLKPLL_SDM       = PDS_BASE + 0x420

	PDS_PLL_FIRST = PDS_PU_RST_CLKPLL
	PDS_PLL_LAST  = PDS_CLKPLL_SDM + 4
)

// PDS_PU_RST_CLKPLL fields
const (
	CLKPLL_SDM_RESET   = 1 << 0
	CLKPLL_RESET_FBDV  = 1 << 2
	CLKPLL_PU_POSTDIV  = 1 << 4
	CLKPLL_PU_FBDV     = 1 << 5
	CLKPLL_PU_PFD      = 1 << 7
	CLKPLL_PU_CP       = 1 << 8
	CLKPLL_PU_SFREG    = 1 << 9
	CLKPLL_PU          = 1 << 10
)

// PDS PLL parameter fields
const (
	CLKPLL_TOP_POSTDIV_Pos      = 0
	CLKPLL_TOP_POSTDIV_Msk      = 0x7F
	CLKPLL_TOP_REFDIV_RATIO_Pos = 8
	CLKPLL_TOP_REFDIV_RATIO_Msk = 0xF
	CLKPLL_TOP_XTAL_RC32M_SEL   = 1 << 12
	CLKPLL_TOP_REFCLK_SEL       = 1 << 16

	CLKPLL_CP_ICP_5U_Pos    = 4
	CLKPLL_CP_ICP_5U_Msk    = 0x3
	CLKPLL_CP_ICP_1U_Pos    = 6
	CLKPLL_CP_ICP_1U_Msk    = 0x3
	CLKPLL_CP_INT_FRAC_SW   = 1 << 8

	CLKPLL_RZ_C3_Pos     = 0
	CLKPLL_RZ_C3_Msk     = 0x3
	CLKPLL_RZ_CZ_Pos     = 2
	CLKPLL_RZ_CZ_Msk     = 0x3
	CLKPLL_RZ_RZ_Pos     = 16
	CLKPLL_RZ_RZ_Msk     = 0x7
	CLKPLL_RZ_R4_SHORT   = 1 << 24

	CLKPLL_FBDV_SEL_SAMPLE_CLK_Pos = 0
	CLKPLL_FBDV_SEL_SAMPLE_CLK_Msk = 0x3
	CLKPLL_FBDV_SEL_FB_CLK_Pos     = 2
	CLKPLL_FBDV_SEL_FB_CLK_Msk     = 0x3

	CLKPLL_SDMIN_Msk = 0xFF_FFFF
	CLKPLL_OUTPUT_EN_ALL = 0x1FF
)

// L1C registers
const (
	L1C_CONFIG                = L1C_BASE + 0x000
	L1C_CONFIG_IROM_2T_ACCESS = 1 << 12
)

// CLIC layout
const (
	CLIC_INTIP = CLIC_HART0_BASE + 0x000 // pending, one byte per IRQ
	CLIC_INTIE = CLIC_HART0_BASE + 0x400 // enable, one byte per IRQ

	CLIC_BITMAP_WORDS = 16 + 8
)

// UART registers (offsets from UARTn_BASE)
const (
	UART_UTX_CONFIG       = 0x00
	UART_URX_CONFIG       = 0x04
	UART_BIT_PRD          = 0x08
	UART_FIFO_CONFIG_0    = 0x80
	UART_FIFO_CONFIG_1    = 0x84
	UART_FIFO_WDATA       = 0x88
	UART_FIFO_RDATA       = 0x8C

	UART_CR_EN              = 1 << 0
	UART_CR_FRM_EN          = 1 << 2
	UART_CR_BIT_CNT_D_Pos   = 8
	UART_CR_BIT_CNT_D_Msk   = 0x7
	UART_CR_BIT_CNT_P_Pos   = 11
	UART_CR_BIT_CNT_P_Msk   = 0x3
	UART_TX_FIFO_CNT_Msk    = 0x3F
	UART_RX_FIFO_CNT_Pos    = 8
	UART_RX_FIFO_CNT_Msk    = 0x3F
)

// FIFO config 0 bits shared by UART, SPI and I2C
const (
	FIFO_DMA_TX_EN    = 1 << 0
	FIFO_DMA_RX_EN    = 1 << 1
	FIFO_TX_CLR       = 1 << 2
	FIFO_RX_CLR       = 1 << 3
	FIFO_TX_OVERFLOW  = 1 << 4
	FIFO_TX_UNDERFLOW = 1 << 5
	FIFO_RX_OVERFLOW  = 1 << 6
	FIFO_RX_UNDERFLOW = 1 << 7
)

// DMA controller registers
const (
	DMA_INT_TC_STATUS  = DMA_BASE + 0x04
	DMA_INT_TC_CLEAR   = DMA_BASE + 0x08
	DMA_INT_ERR_STATUS = DMA_BASE + 0x0C
	DMA_INT_ERR_CLR    = DMA_BASE + 0x10
	DMA_TOP_CONFIG     = DMA_BASE + 0x30
	DMA_TOP_CONFIG_E   = 1 << 0

	DMA_CH0_BASE   = DMA_BASE + 0x100
	DMA_CH_STRIDE  = 0x100
	DMA_NUM_CH     = 4
	DMA_CH_SRC     = 0x00
	DMA_CH_DST     = 0x04
	DMA_CH_LLI     = 0x08
	DMA_CH_CONTROL = 0x0C
	DMA_CH_CONFIG  = 0x10
)

// DMA channel control fields
const (
	DMA_CTRL_SIZE_Msk   = 0xFFF
	DMA_CTRL_SBSIZE_Pos = 12
	DMA_CTRL_DBSIZE_Pos = 15
	DMA_CTRL_SWIDTH_Pos = 18
	DMA_CTRL_DWIDTH_Pos = 21
	DMA_CTRL_SI         = 1 << 26
	DMA_CTRL_DI         = 1 << 27
	DMA_CTRL_I          = 1 << 31
)

// DMA channel config fields
const (
	DMA_CFG_E              = 1 << 0
	DMA_CFG_SRC_PERIPH_Pos = 1
	DMA_CFG_DST_PERIPH_Pos = 6
	DMA_CFG_PERIPH_Msk     = 0x1F
	DMA_CFG_FLOW_Pos       = 11
	DMA_CFG_FLOW_Msk       = 0x7
	DMA_CFG_IE             = 1 << 14 // 1 masks the error interrupt
	DMA_CFG_ITC            = 1 << 15 // 1 masks the terminal count interrupt
)

// DMA peripheral request numbers
const (
	DMA_REQ_UART0_RX = 0
	DMA_REQ_UART0_TX = 1
	DMA_REQ_UART1_RX = 2
	DMA_REQ_UART1_TX = 3
)

// SPI registers (offsets from SPI_BASE)
const (
	SPI_CONFIG        = 0x00
	SPI_PRD_0         = 0x10
	SPI_PRD_1         = 0x14
	SPI_FIFO_CONFIG_0 = 0x80
	SPI_FIFO_CONFIG_1 = 0x84
	SPI_FIFO_WDATA    = 0x88
	SPI_FIFO_RDATA    = 0x8C

	SPI_CONFIG_M_EN       = 1 << 0
	SPI_CONFIG_S_EN       = 1 << 1
	SPI_CONFIG_FRAME_Pos  = 2
	SPI_CONFIG_FRAME_Msk  = 0x3
	SPI_CONFIG_SCLK_POL   = 1 << 4
	SPI_CONFIG_SCLK_PH    = 1 << 5
	SPI_CONFIG_BIT_INV    = 1 << 6
	SPI_CONFIG_M_CONT_EN  = 1 << 9
	SPI_TX_FIFO_CNT_Msk   = 0x7
	SPI_RX_FIFO_CNT_Pos   = 8
	SPI_RX_FIFO_CNT_Msk   = 0x7
)

// I2C registers (offsets from I2C_BASE)
const (
	I2C_CONFIG        = 0x00
	I2C_BUS_BUSY      = 0x08
	I2C_PRD_START     = 0x10
	I2C_PRD_STOP      = 0x14
	I2C_PRD_DATA      = 0x18
	I2C_FIFO_CONFIG_0 = 0x80
	I2C_FIFO_CONFIG_1 = 0x84
	I2C_FIFO_WDATA    = 0x88
	I2C_FIFO_RDATA    = 0x8C

	I2C_CONFIG_M_EN          = 1 << 0
	I2C_CONFIG_PKT_DIR_READ  = 1 << 1
	I2C_CONFIG_SCL_SYNC_EN   = 1 << 3
	I2C_CONFIG_SUB_ADDR_EN   = 1 << 4
	I2C_CONFIG_SLV_ADDR_Pos  = 8
	I2C_CONFIG_SLV_ADDR_Msk  = 0x7F
	I2C_CONFIG_PKT_LEN_Pos   = 20
	I2C_CONFIG_PKT_LEN_Msk   = 0xFF
	I2C_BUS_BUSY_BIT         = 1 << 0
	I2C_TX_FIFO_CNT_Msk      = 0x3
	I2C_RX_FIFO_CNT_Pos      = 8
	I2C_RX_FIFO_CNT_Msk      = 0x3
)

// PWM registers
const (
	PWM_CH0       = PWM_BASE + 0x20
	PWM_CH_STRIDE = 0x20

	PWM_CONFIG = 0x00 // per-channel offsets
	PWM_CLKDIV = 0x04
	PWM_THRE1  = 0x08
	PWM_THRE2  = 0x0C
	PWM_PERIOD = 0x10

	PWM_CONFIG_CLK_SEL_Pos = 0
	PWM_CONFIG_CLK_SEL_Msk = 0x3
	PWM_CONFIG_STOP_EN     = 1 << 6
	PWM_CONFIG_STS_TOP     = 1 << 7

	PWM_CLK_XTAL = 0
	PWM_CLK_BCLK = 1
	PWM_CLK_32K  = 2
)

// TIMER registers
const (
	TIMER_TCCR   = TIMER_BASE + 0x00
	TIMER_TMR2_0 = TIMER_BASE + 0x10 // channel 0 match 0..2 follow at +4
	TIMER_TMR3_0 = TIMER_BASE + 0x1C // channel 1 match 0..2 follow at +4
	TIMER_TCR2   = TIMER_BASE + 0x2C
	TIMER_TCR3   = TIMER_BASE + 0x30
	TIMER_TMSR2  = TIMER_BASE + 0x38
	TIMER_TMSR3  = TIMER_BASE + 0x3C
	TIMER_TIER2  = TIMER_BASE + 0x44
	TIMER_TIER3  = TIMER_BASE + 0x48
	TIMER_TPLVR2 = TIMER_BASE + 0x50
	TIMER_TPLVR3 = TIMER_BASE + 0x54
	TIMER_TPLCR2 = TIMER_BASE + 0x5C
	TIMER_TPLCR3 = TIMER_BASE + 0x60
	TIMER_WMER   = TIMER_BASE + 0x64
	TIMER_WMR    = TIMER_BASE + 0x68
	TIMER_WVR    = TIMER_BASE + 0x6C
	TIMER_WSR    = TIMER_BASE + 0x70
	TIMER_TICR2  = TIMER_BASE + 0x78
	TIMER_TICR3  = TIMER_BASE + 0x7C
	TIMER_WICR   = TIMER_BASE + 0x80
	TIMER_TCER   = TIMER_BASE + 0x84
	TIMER_TCMR   = TIMER_BASE + 0x88
	TIMER_WCR    = TIMER_BASE + 0x98
	TIMER_WFAR   = TIMER_BASE + 0x9C
	TIMER_WSAR   = TIMER_BASE + 0xA0
	TIMER_TCDR   = TIMER_BASE + 0xBC

	TIMER_TCCR_CS_1_Pos   = 2
	TIMER_TCCR_CS_2_Pos   = 5
	TIMER_TCCR_CS_WDT_Pos = 8
	TIMER_TCCR_CS_Msk     = 0x3

	TIMER_TCDR_TCDR2_Pos = 8
	TIMER_TCDR_TCDR3_Pos = 16
	TIMER_TCDR_WCDR_Pos  = 24
	TIMER_TCDR_Msk       = 0xFF

	TIMER_TCER_TIMER2_EN = 1 << 1
	TIMER_TCER_TIMER3_EN = 1 << 2

	TIMER_TCMR_TIMER2_MODE = 1 << 1 // 1 = free running
	TIMER_TCMR_TIMER3_MODE = 1 << 2

	TIMER_TPLCR_Msk = 0x3

	TIMER_WMER_WE   = 1 << 0
	TIMER_WMER_WRIE = 1 << 1
	TIMER_WSR_WTS   = 1 << 0
	TIMER_WICR_WICLR = 1 << 0
	TIMER_WCR_WCR    = 1 << 0

	TIMER_WFAR_KEY = 0xBABA
	TIMER_WSAR_KEY = 0xEB10
)

// CKS registers
const (
	CKS_CONFIG  = CKS_BASE + 0x00
	CKS_DATA_IN = CKS_BASE + 0x04
	CKS_OUT     = CKS_BASE + 0x08

	CKS_CONFIG_CLR       = 1 << 0
	CKS_CONFIG_BYTE_SWAP = 1 << 1
)
