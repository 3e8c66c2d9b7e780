package core

import (
	"image/color"
	"testing"

	"blhal/mmio"

	"tinygo.org/x/drivers/adxl345"
	"tinygo.org/x/drivers/apa102"
)

// i2cRegDevice is a register-pointer device on the I2C bus: the first byte
// of a write packet selects the register, later bytes and reads advance it.
type i2cRegDevice struct {
	addr    uint8
	regs    [256]byte
	ptr     uint8
	rx      []uint32
	wbytes  []byte
	pending int
	writing bool
	writes  map[uint8][]byte
}

func newI2CRegDevice(sim *mmio.Sim, addr uint8) *i2cRegDevice {
	d := &i2cRegDevice{addr: addr, writes: map[uint8][]byte{}}
	sim.OnStore(I2C_BASE+I2C_CONFIG, func(v uint32) {
		if v&I2C_CONFIG_M_EN == 0 {
			d.stop()
			return
		}
		if uint8(v>>I2C_CONFIG_SLV_ADDR_Pos&I2C_CONFIG_SLV_ADDR_Msk) != d.addr {
			return
		}
		n := int(v>>I2C_CONFIG_PKT_LEN_Pos&I2C_CONFIG_PKT_LEN_Msk) + 1
		if v&I2C_CONFIG_PKT_DIR_READ != 0 {
			d.load(n)
			return
		}
		d.writing, d.pending, d.wbytes = true, n, nil
	})
	sim.OnStore(I2C_BASE+I2C_FIFO_WDATA, func(v uint32) {
		for k := 0; k < 4 && d.pending > 0; k++ {
			d.wbytes = append(d.wbytes, byte(v>>(8*k)))
			d.pending--
		}
	})
	sim.OnLoad(I2C_BASE+I2C_FIFO_CONFIG_1, func(uint32) uint32 {
		return 2 | uint32(min(len(d.rx), 2))<<I2C_RX_FIFO_CNT_Pos
	})
	sim.OnLoad(I2C_BASE+I2C_FIFO_RDATA, func(uint32) uint32 {
		v := d.rx[0]
		d.rx = d.rx[1:]
		return v
	})
	return d
}

func (d *i2cRegDevice) load(n int) {
	buf := make([]byte, n)
	for k := range buf {
		buf[k] = d.regs[d.ptr]
		d.ptr++
	}
	for off := 0; off < n; off += 4 {
		d.rx = append(d.rx, packWord(buf[off:]))
	}
}

func (d *i2cRegDevice) stop() {
	if !d.writing {
		return
	}
	d.writing = false
	if len(d.wbytes) == 0 {
		return
	}
	d.ptr = d.wbytes[0]
	if data := d.wbytes[1:]; len(data) > 0 {
		d.writes[d.ptr] = append([]byte(nil), data...)
		for _, b := range data {
			d.regs[d.ptr] = b
			d.ptr++
		}
	}
}

func TestADXL345OverI2C(t *testing.T) {
	sim := mmio.NewSim()
	bus := newI2C(sim)
	bus.Configure(testClocks(160_000_000, 80_000_000), I2CConfig{Frequency: 400_000})

	const (
		regBWRate     = 0x2C
		regPowerCtl   = 0x2D
		regDataFormat = 0x31
		regDataX0     = 0x32
	)
	dev := newI2CRegDevice(sim, 0x53)
	copy(dev.regs[regDataX0:], []byte{100, 0, 0x01, 0x02, 0x00, 0x01})

	sensor := adxl345.New(bus)
	sensor.Configure()

	for _, reg := range []uint8{regBWRate, regPowerCtl, regDataFormat} {
		if len(dev.writes[reg]) != 1 {
			t.Errorf("register %#x written with %v, want one byte", reg, dev.writes[reg])
		}
	}
	if dev.regs[regPowerCtl]&0x08 == 0 {
		t.Errorf("power_ctl = %#x, measure bit not set", dev.regs[regPowerCtl])
	}

	x, y, z := sensor.ReadRawAcceleration()
	if x != 100 || y != 513 || z != 256 {
		t.Errorf("raw acceleration = %d, %d, %d; want 100, 513, 256", x, y, z)
	}
	if dev.ptr != regDataX0+6 {
		t.Errorf("register pointer = %#x after the burst read, want %#x", dev.ptr, regDataX0+6)
	}
	if sim.Peek(I2C_BASE+I2C_CONFIG)&I2C_CONFIG_M_EN != 0 {
		t.Error("master left enabled after the transfer")
	}
}

func TestAPA102OverSPI(t *testing.T) {
	sim := mmio.NewSim()
	bus := newSPI(sim)
	bus.Configure(testClocks(160_000_000, 80_000_000), SPIConfig{Frequency: 4_000_000})

	var sent []byte
	var rx int
	sim.OnStore(SPI_BASE+SPI_FIFO_WDATA, func(v uint32) {
		sent = append(sent, byte(v))
		rx++
	})
	sim.OnLoad(SPI_BASE+SPI_FIFO_CONFIG_1, func(uint32) uint32 {
		return 4 | uint32(rx)<<SPI_RX_FIFO_CNT_Pos
	})
	sim.OnLoad(SPI_BASE+SPI_FIFO_RDATA, func(uint32) uint32 {
		rx--
		return 0
	})

	strip := apa102.New(bus)
	if _, err := strip.WriteColors([]color.RGBA{{R: 0x11, G: 0x22, B: 0x33, A: 0xFF}}); err != nil {
		t.Fatalf("WriteColors: %v", err)
	}

	if len(sent) < 8 {
		t.Fatalf("sent %d bytes, want a start frame and one LED frame", len(sent))
	}
	for k, b := range sent[:4] {
		if b != 0 {
			t.Errorf("start frame byte %d = %#x, want 0", k, b)
		}
	}
	if sent[4]&0xE0 != 0xE0 {
		t.Errorf("LED frame header = %#x, want 0b111xxxxx", sent[4])
	}
	if sent[5] != 0x33 || sent[6] != 0x22 || sent[7] != 0x11 {
		t.Errorf("LED colour bytes = % x, want 33 22 11", sent[5:8])
	}
}
