package core

import (
	"blhal/mmio"

	"tinygo.org/x/drivers"
)

// SPI modes (clock polarity and phase)
const (
	SPIMode0 uint8 = iota // idle low, sample on first edge
	SPIMode1              // idle low, sample on second edge
	SPIMode2              // idle high, sample on first edge
	SPIMode3              // idle high, sample on second edge
)

// SPIConfig holds SPI master settings.
type SPIConfig struct {
	Frequency uint32
	Mode      uint8
	LSBFirst  bool
}

// SPI is the SPI block in master mode with 8-bit frames.
type SPI struct {
	bus mmio.Bus
	// spins before a FIFO wait gives up
	timeout uint32
}

var _ drivers.SPI = (*SPI)(nil)

func newSPI(bus mmio.Bus) *SPI {
	return &SPI{bus: bus, timeout: fifoTimeout}
}

func (s *SPI) reg(off uintptr) mmio.Reg {
	return mmio.At(s.bus, SPI_BASE+off)
}

// spiPhaseLen returns the phase length for freq: each SCLK half period is
// len cycles of the SPI clock.
func spiPhaseLen(spiClk, freq uint32) uint32 {
	if freq == 0 {
		panic(ErrUnreachableFreq)
	}
	n := spiClk / freq / 2
	if !between(n, 1, 256) {
		panic(ErrUnreachableFreq)
	}
	return n
}

// Configure sets up the SPI master from the frozen SPI clock. The pins must
// already be in SPI mode.
func (s *SPI) Configure(clocks Clocks, cfg SPIConfig) {
	n := spiPhaseLen(clocks.SPIClk(), cfg.Frequency)
	l := n - 1

	mmio.At(s.bus, GLB_GLB_PARM).SetBits(GLB_GLB_PARM_SPI_0_MASTER_MODE | GLB_GLB_PARM_SPI_0_SWAP)

	// start, stop, data phase 0 and data phase 1
	s.reg(SPI_PRD_0).Set(l | l<<8 | l<<16 | l<<24)
	// interval
	s.reg(SPI_PRD_1).ReplaceBits(l, 0xFF, 0)

	s.reg(SPI_CONFIG).Modify(func(v uint32) uint32 {
		v &^= SPI_CONFIG_SCLK_POL | SPI_CONFIG_SCLK_PH | SPI_CONFIG_M_CONT_EN |
			SPI_CONFIG_FRAME_Msk<<SPI_CONFIG_FRAME_Pos | SPI_CONFIG_S_EN | SPI_CONFIG_BIT_INV
		if cfg.Mode&2 != 0 {
			v |= SPI_CONFIG_SCLK_POL
		}
		// the phase bit is inverted relative to CPHA
		if cfg.Mode&1 == 0 {
			v |= SPI_CONFIG_SCLK_PH
		}
		if cfg.LSBFirst {
			v |= SPI_CONFIG_BIT_INV
		}
		return v | SPI_CONFIG_M_EN
	})
}

// ClearFIFO drops anything queued in either direction.
func (s *SPI) ClearFIFO() {
	s.reg(SPI_FIFO_CONFIG_0).Set(FIFO_TX_CLR | FIFO_RX_CLR)
}

func (s *SPI) fifoError() error {
	st := s.reg(SPI_FIFO_CONFIG_0).Get()
	switch {
	case st&FIFO_TX_OVERFLOW != 0:
		return ErrTxOverflow
	case st&FIFO_TX_UNDERFLOW != 0:
		return ErrTxUnderflow
	case st&FIFO_RX_OVERFLOW != 0:
		return ErrRxOverflow
	case st&FIFO_RX_UNDERFLOW != 0:
		return ErrRxUnderflow
	}
	return nil
}

// Transfer writes b and returns the byte clocked in at the same time.
func (s *SPI) Transfer(b byte) (byte, error) {
	if err := s.fifoError(); err != nil {
		return 0, err
	}
	fifo := s.reg(SPI_FIFO_CONFIG_1)

	if !waitFIFO(s.timeout, func() bool { return fifo.Get()&SPI_TX_FIFO_CNT_Msk != 0 }) {
		return 0, ErrSPITimeout
	}
	s.reg(SPI_FIFO_WDATA).Set(uint32(b))

	if !waitFIFO(s.timeout, func() bool { return fifo.Field(SPI_RX_FIFO_CNT_Msk, SPI_RX_FIFO_CNT_Pos) != 0 }) {
		return 0, ErrSPITimeout
	}
	return byte(s.reg(SPI_FIFO_RDATA).Get()), nil
}

// Tx writes w and reads into r. If one slice is shorter the missing bytes
// are sent as zero or discarded.
func (s *SPI) Tx(w, r []byte) error {
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	for i := 0; i < n; i++ {
		var out byte
		if i < len(w) {
			out = w[i]
		}
		in, err := s.Transfer(out)
		if err != nil {
			return err
		}
		if i < len(r) {
			r[i] = in
		}
	}
	return nil
}

// fifoTimeout is the number of status polls before a FIFO wait fails.
const fifoTimeout = 255

// waitFIFO polls ready up to timeout+1 times.
func waitFIFO(timeout uint32, ready func() bool) bool {
	for {
		if ready() {
			return true
		}
		if timeout == 0 {
			return false
		}
		timeout--
	}
}
