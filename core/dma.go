package core

import (
	"math"
	"unsafe"

	"blhal/mmio"
)

// dmaMaxTransfer is the largest count the 12-bit transfer size field holds.
const dmaMaxTransfer = 4095

// DMA is the four-channel DMA controller. Each channel is a separate
// capability; a transfer owns its channel until it completes.
type DMA struct {
	bus      mmio.Bus
	Channels [DMA_NUM_CH]*DMAChannel
}

func newDMA(bus mmio.Bus) *DMA {
	d := &DMA{bus: bus}
	for i := range d.Channels {
		d.Channels[i] = &DMAChannel{bus: bus, id: uint8(i)}
	}
	return d
}

// Enable turns the controller on. Channels cannot start before this.
func (d *DMA) Enable() {
	mmio.At(d.bus, DMA_TOP_CONFIG).SetBits(DMA_TOP_CONFIG_E)
}

// Disable turns the controller off.
func (d *DMA) Disable() {
	mmio.At(d.bus, DMA_TOP_CONFIG).ClearBits(DMA_TOP_CONFIG_E)
}

func (d *DMA) Enabled() bool {
	return mmio.At(d.bus, DMA_TOP_CONFIG).HasBits(DMA_TOP_CONFIG_E)
}

// DMAEndpoint is the source or destination of a transfer: a memory buffer
// or a peripheral FIFO.
type DMAEndpoint struct {
	addr    uintptr
	count   uint32
	incr    bool
	periph  bool
	request uint8
	buf     []byte // keeps a memory buffer reachable while the DMA owns it
}

// DMABuffer returns buf as a byte-wide transfer endpoint.
func DMABuffer(buf []byte) DMAEndpoint {
	e := DMAEndpoint{incr: true, buf: buf, count: uint32(len(buf))}
	if len(buf) > 0 {
		e.addr = uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	}
	return e
}

// dmaFIFO returns a peripheral FIFO endpoint with DMA request req.
func dmaFIFO(addr uintptr, req uint8) DMAEndpoint {
	return DMAEndpoint{addr: addr, count: math.MaxUint32, periph: true, request: req}
}

// dmaFlow returns the flow control field: memory or peripheral on each side.
func dmaFlow(from, to DMAEndpoint) uint32 {
	var f uint32
	if to.periph {
		f |= 1
	}
	if from.periph {
		f |= 2
	}
	return f
}

// DMAChannel is one channel of the DMA controller.
type DMAChannel struct {
	bus mmio.Bus
	id  uint8
}

// ID returns the channel number.
func (c *DMAChannel) ID() uint8 { return c.id }

func (c *DMAChannel) reg(off uintptr) mmio.Reg {
	return mmio.At(c.bus, DMA_CH0_BASE+uintptr(c.id)*DMA_CH_STRIDE+off)
}

func (c *DMAChannel) bit() uint32 { return 1 << c.id }

// Busy reports whether the channel is running a transfer.
func (c *DMAChannel) Busy() bool {
	return c.reg(DMA_CH_CONFIG).HasBits(DMA_CFG_E)
}

// Remaining returns the number of bytes the channel has yet to move.
func (c *DMAChannel) Remaining() uint32 {
	return c.reg(DMA_CH_CONTROL).Get() & DMA_CTRL_SIZE_Msk
}

// EnableTCInterrupt unmasks the terminal count interrupt.
func (c *DMAChannel) EnableTCInterrupt() {
	c.reg(DMA_CH_CONFIG).ClearBits(DMA_CFG_ITC)
}

// DisableTCInterrupt masks the terminal count interrupt.
func (c *DMAChannel) DisableTCInterrupt() {
	c.reg(DMA_CH_CONFIG).SetBits(DMA_CFG_ITC)
}

// CheckTC reports and clears a terminal count on this channel.
func (c *DMAChannel) CheckTC() bool {
	if !mmio.At(c.bus, DMA_INT_TC_STATUS).HasBits(c.bit()) {
		return false
	}
	mmio.At(c.bus, DMA_INT_TC_CLEAR).Set(c.bit())
	return true
}

// CheckError reports and clears an error on this channel.
func (c *DMAChannel) CheckError() bool {
	if !mmio.At(c.bus, DMA_INT_ERR_STATUS).HasBits(c.bit()) {
		return false
	}
	mmio.At(c.bus, DMA_INT_ERR_CLR).Set(c.bit())
	return true
}

// Start programs a single-buffer, byte-wide transfer from one endpoint to
// the other and starts it. The length is the smaller endpoint count, capped
// at 4095 bytes. Starting a busy channel, an empty transfer or a transfer on
// a disabled controller panics.
func (c *DMAChannel) Start(from, to DMAEndpoint) *DMATransfer {
	if !mmio.At(c.bus, DMA_TOP_CONFIG).HasBits(DMA_TOP_CONFIG_E) {
		panic(ErrDMADisabled)
	}
	if c.Busy() {
		panic(ErrDMABusy)
	}
	n := min(from.count, to.count, dmaMaxTransfer)
	if n == 0 {
		panic(ErrDMALength)
	}

	cfg := c.reg(DMA_CH_CONFIG)
	cfg.ClearBits(DMA_CFG_E)

	// single beats of 8-bit width on both sides
	ctrl := n | DMA_CTRL_I
	if from.incr {
		ctrl |= DMA_CTRL_SI
	}
	if to.incr {
		ctrl |= DMA_CTRL_DI
	}
	c.reg(DMA_CH_CONTROL).Set(ctrl)

	cfg.Modify(func(v uint32) uint32 {
		v &^= DMA_CFG_PERIPH_Msk<<DMA_CFG_SRC_PERIPH_Pos | DMA_CFG_PERIPH_Msk<<DMA_CFG_DST_PERIPH_Pos |
			DMA_CFG_FLOW_Msk<<DMA_CFG_FLOW_Pos | DMA_CFG_ITC
		v |= uint32(from.request)<<DMA_CFG_SRC_PERIPH_Pos | uint32(to.request)<<DMA_CFG_DST_PERIPH_Pos |
			dmaFlow(from, to)<<DMA_CFG_FLOW_Pos | DMA_CFG_IE
		return v
	})

	c.reg(DMA_CH_SRC).Set(uint32(from.addr))
	c.reg(DMA_CH_DST).Set(uint32(to.addr))
	c.reg(DMA_CH_LLI).Set(0)

	mmio.At(c.bus, DMA_INT_TC_CLEAR).Set(c.bit())
	mmio.At(c.bus, DMA_INT_ERR_CLR).Set(c.bit())

	cfg.SetBits(DMA_CFG_E)
	return &DMATransfer{ch: c, from: from, to: to, n: n}
}

// DMATransfer is a running single-buffer transfer.
type DMATransfer struct {
	ch       *DMAChannel
	from, to DMAEndpoint
	n        uint32
}

// Len returns the number of bytes the transfer moves.
func (t *DMATransfer) Len() uint32 { return t.n }

// IsDone reports whether the channel has stopped.
func (t *DMATransfer) IsDone() bool {
	return !t.ch.Busy()
}

// Wait blocks until the transfer stops and returns ErrDMATransfer if the
// controller flagged an error. The channel may be started again afterwards.
func (t *DMATransfer) Wait() error {
	for !t.IsDone() {
	}
	t.ch.CheckTC()
	if t.ch.CheckError() {
		return ErrDMATransfer
	}
	return nil
}
