package core

import "blhal/mmio"

// UARTConfig holds UART line settings. Frames are always 8N1.
type UARTConfig struct {
	BaudRate uint32
}

// UART is one of the two UART blocks.
type UART struct {
	bus   mmio.Bus
	base  uintptr
	clock uint32
	baud  uint32
}

func newUART(bus mmio.Bus, base uintptr) *UART {
	return &UART{bus: bus, base: base}
}

func (u *UART) reg(off uintptr) mmio.Reg {
	return mmio.At(u.bus, u.base+off)
}

// uartBitPeriod returns the bit period register value for baud, rounded to
// the nearest clock. It panics when the period does not fit 16 bits.
func uartBitPeriod(clk, baud uint32) uint32 {
	if baud == 0 {
		panic(ErrUnreachableBaud)
	}
	div := (clk + baud/2) / baud
	if !between(div, 1, 1<<16) {
		panic(ErrUnreachableBaud)
	}
	return div - 1
}

// Configure sets the baud rate from the frozen UART clock and enables the
// transmitter and receiver. The TX and RX pins must already be routed
// through the UART mux.
func (u *UART) Configure(clocks Clocks, cfg UARTConfig) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 115200
	}
	prd := uartBitPeriod(clocks.UARTClk(), cfg.BaudRate)

	u.reg(UART_UTX_CONFIG).ClearBits(UART_CR_EN)
	u.reg(UART_URX_CONFIG).ClearBits(UART_CR_EN)

	u.reg(UART_BIT_PRD).Set(prd<<16 | prd)

	// 8 data bits, 1 stop bit, no parity
	frame := func(v uint32) uint32 {
		v &^= UART_CR_BIT_CNT_D_Msk<<UART_CR_BIT_CNT_D_Pos | UART_CR_BIT_CNT_P_Msk<<UART_CR_BIT_CNT_P_Pos
		return v | 7<<UART_CR_BIT_CNT_D_Pos | 1<<UART_CR_BIT_CNT_P_Pos | UART_CR_FRM_EN | UART_CR_EN
	}
	u.reg(UART_UTX_CONFIG).Modify(frame)
	u.reg(UART_URX_CONFIG).Modify(func(v uint32) uint32 {
		return frame(v) &^ UART_CR_FRM_EN
	})

	u.reg(UART_FIFO_CONFIG_0).SetBits(FIFO_TX_CLR | FIFO_RX_CLR)

	u.clock = clocks.UARTClk()
	u.baud = cfg.BaudRate
}

// BaudRate returns the configured baud rate.
func (u *UART) BaudRate() uint32 { return u.baud }

// txSpace returns the free TX FIFO entries.
func (u *UART) txSpace() uint32 {
	return u.reg(UART_FIFO_CONFIG_1).Get() & UART_TX_FIFO_CNT_Msk
}

// Buffered returns the number of received bytes waiting in the RX FIFO.
func (u *UART) Buffered() int {
	return int(u.reg(UART_FIFO_CONFIG_1).Field(UART_RX_FIFO_CNT_Msk, UART_RX_FIFO_CNT_Pos))
}

// WriteByte blocks until the TX FIFO has room and queues c.
func (u *UART) WriteByte(c byte) error {
	if u.reg(UART_FIFO_CONFIG_0).HasBits(FIFO_TX_OVERFLOW) {
		return ErrTxOverflow
	}
	for u.txSpace() == 0 {
	}
	u.reg(UART_FIFO_WDATA).Set(uint32(c))
	return nil
}

// Write implements io.Writer.
func (u *UART) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := u.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// ReadByte returns the next received byte, or ErrRxEmpty when the RX FIFO
// is empty.
func (u *UART) ReadByte() (byte, error) {
	if u.reg(UART_FIFO_CONFIG_0).HasBits(FIFO_RX_OVERFLOW) {
		return 0, ErrRxOverflow
	}
	if u.Buffered() == 0 {
		return 0, ErrRxEmpty
	}
	return byte(u.reg(UART_FIFO_RDATA).Get()), nil
}

// LinkDMA hands the TX and RX FIFOs to the DMA controller.
func (u *UART) LinkDMA(tx, rx bool) {
	u.reg(UART_FIFO_CONFIG_0).Modify(func(v uint32) uint32 {
		v &^= FIFO_TX_CLR | FIFO_RX_CLR | FIFO_DMA_TX_EN | FIFO_DMA_RX_EN
		if tx {
			v |= FIFO_DMA_TX_EN
		}
		if rx {
			v |= FIFO_DMA_RX_EN
		}
		return v
	})
}

// DMATarget returns the TX FIFO as a DMA destination.
func (u *UART) DMATarget() DMAEndpoint {
	req := uint8(DMA_REQ_UART0_TX)
	if u.base == UART1_BASE {
		req = DMA_REQ_UART1_TX
	}
	return dmaFIFO(u.base+UART_FIFO_WDATA, req)
}

// DMASource returns the RX FIFO as a DMA source.
func (u *UART) DMASource() DMAEndpoint {
	req := uint8(DMA_REQ_UART0_RX)
	if u.base == UART1_BASE {
		req = DMA_REQ_UART1_RX
	}
	return dmaFIFO(u.base+UART_FIFO_RDATA, req)
}

// Flush blocks until the TX FIFO has drained.
func (u *UART) Flush() {
	for u.txSpace() < uartFIFODepth {
	}
}

const uartFIFODepth = 32
