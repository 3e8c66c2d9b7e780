package core

import (
	"bytes"
	"errors"
	"testing"

	"blhal/mmio"
)

// dmaEngine moves bytes when a channel is enabled, the way the controller
// would, and completes the transfer at once.
type dmaEngine struct {
	sim  *mmio.Sim
	mem  map[uint32][]byte
	rx   []byte // bytes waiting in the UART RX FIFO
	fail bool
}

func newDMAEngine(sim *mmio.Sim) *dmaEngine {
	e := &dmaEngine{sim: sim, mem: map[uint32][]byte{}}
	for ch := uintptr(0); ch < DMA_NUM_CH; ch++ {
		ch := ch
		sim.OnStore(DMA_CH0_BASE+ch*DMA_CH_STRIDE+DMA_CH_CONFIG, func(v uint32) {
			if v&DMA_CFG_E != 0 {
				e.run(ch)
			}
		})
	}
	sim.OnStore(DMA_INT_TC_CLEAR, func(v uint32) {
		sim.Poke(DMA_INT_TC_STATUS, sim.Peek(DMA_INT_TC_STATUS)&^v)
	})
	sim.OnStore(DMA_INT_ERR_CLR, func(v uint32) {
		sim.Poke(DMA_INT_ERR_STATUS, sim.Peek(DMA_INT_ERR_STATUS)&^v)
	})
	return e
}

// share registers buf as memory the engine may read and write.
func (e *dmaEngine) share(buf []byte) {
	e.mem[uint32(DMABuffer(buf).addr)] = buf
}

func (e *dmaEngine) run(ch uintptr) {
	base := DMA_CH0_BASE + ch*DMA_CH_STRIDE
	ctrl := e.sim.Peek(base + DMA_CH_CONTROL)
	cfg := e.sim.Peek(base + DMA_CH_CONFIG)

	if e.fail {
		e.sim.Poke(DMA_INT_ERR_STATUS, e.sim.Peek(DMA_INT_ERR_STATUS)|1<<ch)
	} else {
		src := e.sim.Peek(base + DMA_CH_SRC)
		dst := e.sim.Peek(base + DMA_CH_DST)
		flow := cfg >> DMA_CFG_FLOW_Pos & DMA_CFG_FLOW_Msk
		for k := uint32(0); k < ctrl&DMA_CTRL_SIZE_Msk; k++ {
			var b byte
			if flow&2 != 0 {
				b, e.rx = e.rx[0], e.rx[1:]
			} else {
				b = e.mem[src][k]
			}
			if flow&1 != 0 {
				e.sim.Store32(uintptr(dst), uint32(b))
			} else {
				e.mem[dst][k] = b
			}
		}
		e.sim.Poke(DMA_INT_TC_STATUS, e.sim.Peek(DMA_INT_TC_STATUS)|1<<ch)
	}
	e.sim.Poke(base+DMA_CH_CONTROL, ctrl&^DMA_CTRL_SIZE_Msk)
	e.sim.Poke(base+DMA_CH_CONFIG, cfg&^DMA_CFG_E)
}

func newDMAFixture() (*mmio.Sim, *Peripherals, *dmaEngine) {
	sim := mmio.NewSim()
	p := newPeripherals(sim, NewSimHart())
	p.UART0.Configure(testClocks(160_000_000, 80_000_000), UARTConfig{BaudRate: 2_000_000})
	p.DMA.Enable()
	return sim, p, newDMAEngine(sim)
}

func sentBytes(sim *mmio.Sim, addr uintptr) []byte {
	var out []byte
	for _, a := range sim.WritesTo(addr) {
		out = append(out, byte(a.Value))
	}
	return out
}

func TestDMAUARTTransmit(t *testing.T) {
	sim, p, e := newDMAFixture()
	msg := []byte("hello from dma\r\n")
	e.share(msg)

	p.UART0.LinkDMA(true, false)
	if got := sim.Peek(UART0_BASE+UART_FIFO_CONFIG_0) & (FIFO_DMA_TX_EN | FIFO_DMA_RX_EN); got != FIFO_DMA_TX_EN {
		t.Errorf("uart dma enables = %#x, want tx only", got)
	}

	ch := p.DMA.Channels[0]
	tr := ch.Start(DMABuffer(msg), p.UART0.DMATarget())

	base := uintptr(DMA_CH0_BASE)
	if got := sim.Peek(base + DMA_CH_DST); got != UART0_BASE+UART_FIFO_WDATA {
		t.Errorf("destination = %#x, want the uart0 tx fifo", got)
	}
	if got := sim.Peek(base + DMA_CH_SRC); got != uint32(DMABuffer(msg).addr) {
		t.Errorf("source = %#x, want the buffer", got)
	}
	cfg := sim.Peek(base + DMA_CH_CONFIG)
	if flow := cfg >> DMA_CFG_FLOW_Pos & DMA_CFG_FLOW_Msk; flow != 1 {
		t.Errorf("flow control = %d, want memory to peripheral", flow)
	}
	if req := cfg >> DMA_CFG_DST_PERIPH_Pos & DMA_CFG_PERIPH_Msk; req != DMA_REQ_UART0_TX {
		t.Errorf("destination request = %d, want %d", req, DMA_REQ_UART0_TX)
	}
	var ctrl uint32
	for _, a := range sim.WritesTo(base + DMA_CH_CONTROL) {
		ctrl = a.Value
	}
	if ctrl&DMA_CTRL_SIZE_Msk != uint32(len(msg)) || ctrl&DMA_CTRL_SI == 0 || ctrl&DMA_CTRL_DI != 0 {
		t.Errorf("control = %#x, want %d bytes, source increment only", ctrl, len(msg))
	}

	if err := tr.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !tr.IsDone() || ch.Busy() {
		t.Error("channel still busy after Wait")
	}
	if got := sentBytes(sim, UART0_BASE+UART_FIFO_WDATA); !bytes.Equal(got, msg) {
		t.Errorf("uart received %q, want %q", got, msg)
	}
	if tr.Len() != uint32(len(msg)) || ch.Remaining() != 0 {
		t.Errorf("Len = %d, Remaining = %d", tr.Len(), ch.Remaining())
	}
	if sim.Peek(DMA_INT_TC_STATUS) != 0 {
		t.Error("terminal count left pending after Wait")
	}

	// the channel is free for the next buffer
	if err := ch.Start(DMABuffer(msg), p.UART0.DMATarget()).Wait(); err != nil {
		t.Fatalf("second transfer: %v", err)
	}
	if n := len(sim.WritesTo(UART0_BASE + UART_FIFO_WDATA)); n != 2*len(msg) {
		t.Errorf("%d bytes sent after two transfers, want %d", n, 2*len(msg))
	}
}

func TestDMAUARTReceive(t *testing.T) {
	sim, p, e := newDMAFixture()
	e.rx = []byte("ok\n")
	buf := make([]byte, 3)
	e.share(buf)

	p.UART0.LinkDMA(false, true)
	ch := p.DMA.Channels[2]
	if err := ch.Start(p.UART0.DMASource(), DMABuffer(buf)).Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if string(buf) != "ok\n" {
		t.Errorf("received %q, want %q", buf, "ok\n")
	}

	cfg := sim.Peek(DMA_CH0_BASE + 2*DMA_CH_STRIDE + DMA_CH_CONFIG)
	if flow := cfg >> DMA_CFG_FLOW_Pos & DMA_CFG_FLOW_Msk; flow != 2 {
		t.Errorf("flow control = %d, want peripheral to memory", flow)
	}
	if req := cfg >> DMA_CFG_SRC_PERIPH_Pos & DMA_CFG_PERIPH_Msk; req != DMA_REQ_UART0_RX {
		t.Errorf("source request = %d, want %d", req, DMA_REQ_UART0_RX)
	}
}

func TestDMATransferLength(t *testing.T) {
	sim, p, e := newDMAFixture()

	src := []byte("abcdefgh")
	dst := make([]byte, 3)
	e.share(src)
	e.share(dst)
	tr := p.DMA.Channels[1].Start(DMABuffer(src), DMABuffer(dst))
	if err := tr.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if tr.Len() != 3 || string(dst) != "abc" {
		t.Errorf("memory copy moved %d bytes, dst = %q", tr.Len(), dst)
	}
	cfg := sim.Peek(DMA_CH0_BASE + DMA_CH_STRIDE + DMA_CH_CONFIG)
	if flow := cfg >> DMA_CFG_FLOW_Pos & DMA_CFG_FLOW_Msk; flow != 0 {
		t.Errorf("flow control = %d, want memory to memory", flow)
	}

	big := make([]byte, 5000)
	e.share(big)
	tr = p.DMA.Channels[3].Start(DMABuffer(big), p.UART1.DMATarget())
	if tr.Len() != 4095 {
		t.Errorf("Len = %d, want the 4095 byte cap", tr.Len())
	}
	cfg = sim.Peek(DMA_CH0_BASE + 3*DMA_CH_STRIDE + DMA_CH_CONFIG)
	if req := cfg >> DMA_CFG_DST_PERIPH_Pos & DMA_CFG_PERIPH_Msk; req != DMA_REQ_UART1_TX {
		t.Errorf("destination request = %d, want uart1 tx", req)
	}
}

func TestDMAMisuse(t *testing.T) {
	sim := mmio.NewSim()
	p := newPeripherals(sim, NewSimHart())
	ch := p.DMA.Channels[0]
	msg := []byte("x")

	expectPanic(t, ErrDMADisabled, func() { ch.Start(DMABuffer(msg), p.UART0.DMATarget()) })
	if len(sim.Writes()) != 0 {
		t.Errorf("%d writes before the controller was enabled", len(sim.Writes()))
	}

	p.DMA.Enable()
	if !p.DMA.Enabled() {
		t.Fatal("controller not enabled")
	}
	expectPanic(t, ErrDMALength, func() { ch.Start(DMABuffer(nil), p.UART0.DMATarget()) })

	// no engine: the first transfer never finishes
	tr := ch.Start(DMABuffer(msg), p.UART0.DMATarget())
	if tr.IsDone() {
		t.Error("transfer done without the engine running")
	}
	expectPanic(t, ErrDMABusy, func() { ch.Start(DMABuffer(msg), p.UART0.DMATarget()) })

	p.DMA.Disable()
	if p.DMA.Enabled() {
		t.Error("controller still enabled")
	}
}

func TestDMAErrorAndInterruptMask(t *testing.T) {
	sim, p, e := newDMAFixture()
	e.fail = true
	msg := []byte("lost")
	e.share(msg)

	ch := p.DMA.Channels[1]
	if err := ch.Start(DMABuffer(msg), p.UART0.DMATarget()).Wait(); !errors.Is(err, ErrDMATransfer) {
		t.Errorf("Wait = %v, want ErrDMATransfer", err)
	}
	if sim.Peek(DMA_INT_ERR_STATUS) != 0 {
		t.Error("error status not cleared")
	}
	if ch.CheckError() || ch.CheckTC() {
		t.Error("status reported twice")
	}

	cfg := uintptr(DMA_CH0_BASE + DMA_CH_STRIDE + DMA_CH_CONFIG)
	ch.DisableTCInterrupt()
	if sim.Peek(cfg)&DMA_CFG_ITC == 0 {
		t.Error("terminal count interrupt not masked")
	}
	ch.EnableTCInterrupt()
	if sim.Peek(cfg)&DMA_CFG_ITC != 0 {
		t.Error("terminal count interrupt still masked")
	}
}
