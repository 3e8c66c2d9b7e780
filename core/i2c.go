package core

import (
	"blhal/mmio"

	"tinygo.org/x/drivers"
)

// I2CConfig holds I2C master settings.
type I2CConfig struct {
	Frequency uint32
}

// I2C is the I2C block in master mode.
type I2C struct {
	bus     mmio.Bus
	timeout uint32
}

var _ drivers.I2C = (*I2C)(nil)

func newI2C(bus mmio.Bus) *I2C {
	return &I2C{bus: bus, timeout: fifoTimeout}
}

func (i *I2C) reg(off uintptr) mmio.Reg {
	return mmio.At(i.bus, I2C_BASE+off)
}

// i2cPhaseLen returns the length of each of the four phases of an SCL
// period, in bus clock cycles. Zero-length phases are not allowed by the
// hardware, so the shortest accepted length is 2.
func i2cPhaseLen(busClk, freq uint32) uint32 {
	if freq == 0 {
		panic(ErrUnreachableFreq)
	}
	n := busClk / freq / 4
	if !between(n, 2, 256) {
		panic(ErrUnreachableFreq)
	}
	return n
}

// Configure sets the SCL frequency from the frozen bus clock. The pins must
// already be in I2C mode.
func (i *I2C) Configure(clocks Clocks, cfg I2CConfig) {
	if cfg.Frequency == 0 {
		cfg.Frequency = 100_000
	}
	l := i2cPhaseLen(clocks.BusClk(), cfg.Frequency) - 1
	phases := l | l<<8 | l<<16 | l<<24
	i.reg(I2C_PRD_START).Set(phases)
	i.reg(I2C_PRD_STOP).Set(phases)
	i.reg(I2C_PRD_DATA).Set(phases)
}

// SetTimeout sets how many FIFO status polls a transfer waits per word.
func (i *I2C) SetTimeout(polls uint32) {
	i.timeout = polls
}

// ClearFIFO drops anything queued in either direction.
func (i *I2C) ClearFIFO() {
	i.reg(I2C_FIFO_CONFIG_0).Set(FIFO_TX_CLR | FIFO_RX_CLR)
}

// Tx writes w to the device at addr and then reads len(r) bytes. Either
// part may be empty. Each part is one packet of at most 256 bytes.
func (i *I2C) Tx(addr uint16, w, r []byte) error {
	if len(w) > 256 || len(r) > 256 {
		return ErrI2CLength
	}
	if len(w) > 0 {
		if err := i.write(uint8(addr), w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := i.read(uint8(addr), r); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegister reads buf from register r of the device at addr.
func (i *I2C) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return i.Tx(uint16(addr), []byte{r}, buf)
}

// WriteRegister writes buf to register r of the device at addr.
func (i *I2C) WriteRegister(addr uint8, r uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, r)
	w = append(w, buf...)
	return i.Tx(uint16(addr), w, nil)
}

func (i *I2C) startPacket(addr uint8, n int, read bool) {
	i.reg(I2C_CONFIG).Modify(func(v uint32) uint32 {
		v &^= I2C_CONFIG_PKT_LEN_Msk<<I2C_CONFIG_PKT_LEN_Pos | I2C_CONFIG_SLV_ADDR_Msk<<I2C_CONFIG_SLV_ADDR_Pos |
			I2C_CONFIG_SUB_ADDR_EN | I2C_CONFIG_PKT_DIR_READ
		v |= uint32(n-1)<<I2C_CONFIG_PKT_LEN_Pos | uint32(addr&I2C_CONFIG_SLV_ADDR_Msk)<<I2C_CONFIG_SLV_ADDR_Pos
		if read {
			v |= I2C_CONFIG_PKT_DIR_READ
		}
		return v | I2C_CONFIG_SCL_SYNC_EN | I2C_CONFIG_M_EN
	})
}

func (i *I2C) stop() {
	i.reg(I2C_CONFIG).ClearBits(I2C_CONFIG_M_EN)
}

func (i *I2C) write(addr uint8, w []byte) error {
	st := i.reg(I2C_FIFO_CONFIG_0).Get()
	switch {
	case st&FIFO_TX_OVERFLOW != 0:
		return ErrTxOverflow
	case st&FIFO_TX_UNDERFLOW != 0:
		return ErrTxUnderflow
	}

	i.startPacket(addr, len(w), false)

	fifo := i.reg(I2C_FIFO_CONFIG_1)
	budget := i.timeout
	for off := 0; off < len(w); off += 4 {
		for fifo.Get()&I2C_TX_FIFO_CNT_Msk == 0 {
			if budget == 0 {
				i.stop()
				return ErrI2CTimeout
			}
			budget--
		}
		i.reg(I2C_FIFO_WDATA).Set(packWord(w[off:]))
	}

	for i.reg(I2C_BUS_BUSY).HasBits(I2C_BUS_BUSY_BIT) {
	}
	i.stop()
	return nil
}

func (i *I2C) read(addr uint8, r []byte) error {
	st := i.reg(I2C_FIFO_CONFIG_0).Get()
	switch {
	case st&FIFO_RX_OVERFLOW != 0:
		return ErrRxOverflow
	case st&FIFO_RX_UNDERFLOW != 0:
		return ErrRxUnderflow
	}

	i.startPacket(addr, len(r), true)

	fifo := i.reg(I2C_FIFO_CONFIG_1)
	budget := i.timeout
	for off := 0; off < len(r); off += 4 {
		for fifo.Field(I2C_RX_FIFO_CNT_Msk, I2C_RX_FIFO_CNT_Pos) == 0 {
			if budget == 0 {
				i.stop()
				return ErrI2CTimeout
			}
			budget--
		}
		unpackWord(r[off:], i.reg(I2C_FIFO_RDATA).Get())
	}

	i.stop()
	return nil
}

// packWord packs up to four bytes little-endian into a FIFO word.
func packWord(b []byte) uint32 {
	var v uint32
	for k := 0; k < 4 && k < len(b); k++ {
		v |= uint32(b[k]) << (8 * k)
	}
	return v
}

// unpackWord stores up to four bytes of a FIFO word into b.
func unpackWord(b []byte, v uint32) {
	for k := 0; k < 4 && k < len(b); k++ {
		b[k] = byte(v >> (8 * k))
	}
}
